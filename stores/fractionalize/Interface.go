// Package fractionalize defines the read-only record store consumed by the
// fractionalize query and statistics service. Backends live in subpackages and
// are selected by URL scheme through the factory package.
package fractionalize

import (
	"context"
	"time"

	"github.com/bsv-blockchain/fractionalize/model"
)

// DefaultCollection is the table or collection holding the records.
const DefaultCollection = "fractionalizeRecords"

type SortOrder int

const (
	SortDescending SortOrder = iota
	SortAscending
)

func (s SortOrder) String() string {
	if s == SortAscending {
		return "ascending"
	}

	return "descending"
}

// Filter selects records. Zero fields do not constrain. Since and Until are
// both inclusive.
type Filter struct {
	TxID  string
	Since *time.Time
	Until *time.Time
}

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r *model.Record) bool {
	if f == nil {
		return true
	}

	if f.TxID != "" && r.TxID != f.TxID {
		return false
	}

	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}

	if f.Until != nil && r.CreatedAt.After(*f.Until) {
		return false
	}

	return true
}

// FindOptions orders by createdAt in Sort direction, ties broken by
// (txid, outputIndex) in the same direction.
type FindOptions struct {
	Sort  SortOrder
	Skip  int
	Limit int
}

// Metadata describes the backing store. StorageSize is nil when the backend
// cannot report it.
type Metadata struct {
	Collections int    `json:"collections"`
	Indexes     int    `json:"indexes"`
	StorageSize *int64 `json:"storageSize,omitempty"`
}

type Store interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
	Ping(ctx context.Context) error
	Count(ctx context.Context, filter *Filter) (uint64, error)
	Find(ctx context.Context, filter *Filter, opts FindOptions) ([]*model.UTXORef, error)
	Metadata(ctx context.Context) (*Metadata, error)
	Close(ctx context.Context) error
}
