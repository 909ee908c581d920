// Package query turns raw request parameters into a bounded query spec.
// Validation is pure and always runs before any store access.
package query

import (
	"errors"
	"strconv"
	"strings"
	"time"

	fErrors "github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100

	SortAscending  = "ascending"
	SortDescending = "descending"
)

var dateLayouts = []struct {
	layout string
	loc    *time.Location
}{
	{time.RFC3339, nil},
	{"2006-01-02T15:04:05", time.UTC},
	{"2006-01-02T15:04", time.UTC},
	{"2006-01-02 15:04:05", time.UTC},
	{"2006-01-02 15:04", time.UTC},
	{"2006-01-02", time.UTC},
	{"2006-01", time.UTC},
	{"2006", time.UTC},
}

// Params holds the raw query string values. Empty means absent.
type Params struct {
	TxID      string
	Limit     string
	Skip      string
	StartDate string
	EndDate   string
	SortOrder string
}

type Options struct {
	// StrictTxID rejects txids that are not 64 hex characters.
	StrictTxID bool
}

// Spec is the validated form of Params. Limit is in [0, MaxLimit], Skip >= 0.
type Spec struct {
	TxID      string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Skip      int
	SortOrder fractionalize.SortOrder

	// raw date strings, echoed back to the caller unchanged
	RawStartDate string
	RawEndDate   string
}

func Validate(p Params, opts Options) (*Spec, error) {
	spec := &Spec{
		TxID:  p.TxID,
		Limit: parseLimit(p.Limit),
		Skip:  parseSkip(p.Skip),
	}

	switch p.SortOrder {
	case "", SortDescending:
		spec.SortOrder = fractionalize.SortDescending
	case SortAscending:
		spec.SortOrder = fractionalize.SortAscending
	default:
		return nil, fErrors.NewInvalidSortOrderError("sortOrder must be %q or %q", SortAscending, SortDescending)
	}

	if p.StartDate != "" {
		t, err := parseDate(p.StartDate)
		if err != nil {
			return nil, fErrors.NewInvalidDateError("Invalid startDate format")
		}

		spec.StartDate = &t
		spec.RawStartDate = p.StartDate
	}

	if p.EndDate != "" {
		t, err := parseDate(p.EndDate)
		if err != nil {
			return nil, fErrors.NewInvalidDateError("Invalid endDate format")
		}

		spec.EndDate = &t
		spec.RawEndDate = p.EndDate
	}

	if opts.StrictTxID && p.TxID != "" {
		if len(p.TxID) != 2*chainhash.HashSize {
			return nil, fErrors.NewInvalidArgumentError("txid must be %d hex characters", 2*chainhash.HashSize)
		}

		if _, err := chainhash.NewHashFromStr(p.TxID); err != nil {
			return nil, fErrors.NewInvalidArgumentError("txid is not a valid hex hash")
		}
	}

	return spec, nil
}

// parseLimit defaults to DefaultLimit for absent, unparsable or negative values
// and caps at MaxLimit. A positive value too large for an int is capped too.
func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return MaxLimit
		}

		return DefaultLimit
	}

	switch {
	case n < 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

func parseSkip(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}

	return n
}

func parseDate(raw string) (time.Time, error) {
	var err error

	for _, l := range dateLayouts {
		var t time.Time

		if l.loc == nil {
			t, err = time.Parse(l.layout, raw)
		} else {
			t, err = time.ParseInLocation(l.layout, raw, l.loc)
		}

		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}

func (s *Spec) Filter() *fractionalize.Filter {
	return &fractionalize.Filter{
		TxID:  s.TxID,
		Since: s.StartDate,
		Until: s.EndDate,
	}
}

func (s *Spec) FindOptions() fractionalize.FindOptions {
	return fractionalize.FindOptions{
		Sort:  s.SortOrder,
		Skip:  s.Skip,
		Limit: s.Limit,
	}
}
