// Package memory is an in-process record store for development and tests.
package memory

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

const backend = "memory"

type recordKey struct {
	txid        string
	outputIndex uint32
}

type Memory struct {
	logger  ulogger.Logger
	mu      sync.RWMutex
	records map[recordKey]*model.Record
	closed  bool
}

func New(logger ulogger.Logger, records ...*model.Record) *Memory {
	m := &Memory{
		logger:  logger,
		records: make(map[recordKey]*model.Record, len(records)),
	}

	m.Add(records...)

	return m
}

// Add inserts or replaces records by (txid, outputIndex). It stands in for
// the external ingestion process.
func (m *Memory) Add(records ...*model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		rec := *r
		m.records[recordKey{rec.TxID, rec.OutputIndex}] = &rec
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return http.StatusServiceUnavailable, "Memory Store closed", errors.NewStorageUnavailableError("memory store closed")
	}

	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) Ping(ctx context.Context) (err error) {
	defer fractionalize.Observe(backend, "Ping", time.Now(), &err)

	return m.check(ctx)
}

func (m *Memory) Count(ctx context.Context, filter *fractionalize.Filter) (_ uint64, err error) {
	defer fractionalize.Observe(backend, "Count", time.Now(), &err)

	if err = m.check(ctx); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var count uint64

	for _, r := range m.records {
		if filter.Match(r) {
			count++
		}
	}

	return count, nil
}

func (m *Memory) Find(ctx context.Context, filter *fractionalize.Filter, opts fractionalize.FindOptions) (_ []*model.UTXORef, err error) {
	defer fractionalize.Observe(backend, "Find", time.Now(), &err)

	if err = m.check(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()

	matched := make([]*model.Record, 0, len(m.records))

	for _, r := range m.records {
		if filter.Match(r) {
			matched = append(matched, r)
		}
	}

	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if opts.Sort == fractionalize.SortAscending {
			return matched[i].Less(matched[j])
		}

		return matched[j].Less(matched[i])
	})

	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}

	if skip >= len(matched) {
		return []*model.UTXORef{}, nil
	}

	matched = matched[skip:]

	if opts.Limit >= 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	refs := make([]*model.UTXORef, 0, len(matched))
	for _, r := range matched {
		refs = append(refs, r.Ref())
	}

	return refs, nil
}

// Metadata reports one collection with its primary key index. Storage size is
// not tracked.
func (m *Memory) Metadata(ctx context.Context) (_ *fractionalize.Metadata, err error) {
	defer fractionalize.Observe(backend, "Metadata", time.Now(), &err)

	if err = m.check(ctx); err != nil {
		return nil, err
	}

	return &fractionalize.Metadata{
		Collections: 1,
		Indexes:     1,
	}, nil
}

func (m *Memory) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *Memory) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStorageUnavailableError("[memory] context done", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return errors.NewStorageUnavailableError("[memory] store closed")
	}

	return nil
}
