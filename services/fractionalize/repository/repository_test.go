package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/query"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/memory"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func txid(i int) string {
	return fmt.Sprintf("%064x", i)
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		Fractionalize: settings.FractionalizeSettings{
			QueryTimeout:  time.Second,
			RecentRecords: 10,
		},
	}
}

func newTestRepository(t *testing.T, tSettings *settings.Settings, store fractionalize.Store) *Repository {
	t.Helper()

	repo, err := NewRepository(ulogger.NewVerboseTestLogger(t), tSettings, store)
	require.NoError(t, err)

	repo.now = func() time.Time { return now }

	t.Cleanup(repo.Close)

	return repo
}

// fiveRecords has one record in each of the 1h, 24h, 7d and 30d bands and
// one older than 30 days.
func fiveRecords() []*model.Record {
	return []*model.Record{
		{TxID: txid(1), OutputIndex: 0, CreatedAt: now.Add(-30 * time.Minute)},
		{TxID: txid(2), OutputIndex: 0, CreatedAt: now.Add(-2 * time.Hour)},
		{TxID: txid(3), OutputIndex: 1, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{TxID: txid(4), OutputIndex: 2, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{TxID: txid(5), OutputIndex: 0, CreatedAt: now.Add(-40 * 24 * time.Hour)},
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewRepository(ulogger.TestLogger{}, testSettings(), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConfiguration))
	})

	t.Run("recent records default", func(t *testing.T) {
		tSettings := testSettings()
		tSettings.Fractionalize.RecentRecords = 0

		repo := newTestRepository(t, tSettings, memory.New(ulogger.TestLogger{}))
		assert.Equal(t, defaultRecentRecords, repo.recentRecords)
		assert.Nil(t, repo.cache)
	})
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("five record windows", func(t *testing.T) {
		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, fiveRecords()...))

		stats, err := repo.Aggregate(ctx, AdminWindows, now, AggregateOptions{Total: true})
		require.NoError(t, err)

		require.NotNil(t, stats.Total)
		assert.Equal(t, uint64(5), *stats.Total)
		assert.Equal(t, map[string]uint64{
			"last1h":  1,
			"last24h": 2,
			"last7d":  3,
			"last30d": 4,
		}, stats.Windows)
		assert.Nil(t, stats.Metadata)
		assert.Nil(t, stats.Recent)
	})

	t.Run("windows are monotonic", func(t *testing.T) {
		records := make([]*model.Record, 0, 200)
		for i := 0; i < 200; i++ {
			records = append(records, &model.Record{
				TxID:      txid(i),
				CreatedAt: now.Add(-time.Duration(i*i) * time.Minute),
			})
		}

		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, records...))

		stats, err := repo.Aggregate(ctx, AdminWindows, now, AggregateOptions{Total: true})
		require.NoError(t, err)

		var previous uint64

		for _, w := range AdminWindows {
			assert.GreaterOrEqual(t, stats.Windows[w.Name], previous, w.Name)
			previous = stats.Windows[w.Name]
		}

		assert.LessOrEqual(t, previous, *stats.Total)
	})

	t.Run("window lower bound is inclusive", func(t *testing.T) {
		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{},
			&model.Record{TxID: txid(1), CreatedAt: now.Add(-time.Hour)},
		))

		stats, err := repo.Aggregate(ctx, AdminWindows[:1], now, AggregateOptions{})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), stats.Windows["last1h"])
	})

	t.Run("metadata and recent", func(t *testing.T) {
		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, fiveRecords()...))

		stats, err := repo.Aggregate(ctx, nil, now, AggregateOptions{Metadata: true, Recent: 2})
		require.NoError(t, err)

		require.NotNil(t, stats.Metadata)
		assert.Equal(t, 1, stats.Metadata.Collections)
		assert.Nil(t, stats.Metadata.StorageSize)

		require.Len(t, stats.Recent, 2)
		assert.Equal(t, txid(1), stats.Recent[0].TxID)
		assert.Equal(t, txid(2), stats.Recent[1].TxID)
		assert.Empty(t, stats.Windows)
	})

	t.Run("single failing branch fails the call", func(t *testing.T) {
		store := &fractionalize.MockStore{}
		store.On("Count", mock.MatchedBy(func(f *fractionalize.Filter) bool {
			return f != nil && f.Since != nil && f.Since.Equal(now.Add(-time.Hour))
		})).Return(uint64(0), errors.NewStorageError("connection reset"))
		store.On("Count", mock.Anything).Return(uint64(3), nil).Maybe()
		store.On("Metadata").Return(&fractionalize.Metadata{Collections: 1}, nil).Maybe()

		repo := newTestRepository(t, testSettings(), store)

		stats, err := repo.Aggregate(ctx, AdminWindows, now, AggregateOptions{Total: true, Metadata: true})
		require.Error(t, err)
		assert.Nil(t, stats)
		assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
		assert.Contains(t, err.Error(), "last1h")
	})

	t.Run("failure cancels siblings", func(t *testing.T) {
		store := &blockingStore{
			Memory:    memory.New(ulogger.NewVerboseTestLogger(t), fiveRecords()...),
			cancelled: make(chan struct{}),
		}

		tSettings := testSettings()
		tSettings.Fractionalize.QueryTimeout = time.Minute

		repo := newTestRepository(t, tSettings, store)

		start := time.Now()

		_, err := repo.Aggregate(ctx, AdminWindows[:1], now, AggregateOptions{Total: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
		assert.Less(t, time.Since(start), 10*time.Second)

		select {
		case <-store.cancelled:
		default:
			t.Fatal("blocked branch was not cancelled")
		}
	})

	t.Run("branch timeout", func(t *testing.T) {
		store := &blockingStore{
			Memory:    memory.New(ulogger.NewVerboseTestLogger(t)),
			cancelled: make(chan struct{}),
		}

		tSettings := testSettings()
		tSettings.Fractionalize.QueryTimeout = 50 * time.Millisecond

		repo := newTestRepository(t, tSettings, store)

		_, err := repo.Aggregate(ctx, nil, now, AggregateOptions{Total: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestQueryRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("limit above maximum returns 100", func(t *testing.T) {
		records := make([]*model.Record, 0, 150)
		for i := 0; i < 150; i++ {
			records = append(records, &model.Record{TxID: txid(i), CreatedAt: now.Add(-time.Duration(i) * time.Second)})
		}

		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, records...))

		spec, err := query.Validate(query.Params{Limit: "200"}, query.Options{})
		require.NoError(t, err)

		refs, err := repo.QueryRecords(ctx, spec)
		require.NoError(t, err)
		require.Len(t, refs, query.MaxLimit)
		assert.Equal(t, txid(0), refs[0].TxID)
	})

	t.Run("zero limit does not touch the store", func(t *testing.T) {
		store := &fractionalize.MockStore{}
		repo := newTestRepository(t, testSettings(), store)

		spec, err := query.Validate(query.Params{Limit: "0"}, query.Options{})
		require.NoError(t, err)

		refs, err := repo.QueryRecords(ctx, spec)
		require.NoError(t, err)
		assert.NotNil(t, refs)
		assert.Empty(t, refs)

		store.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, fiveRecords()...))

		at := now.Add(-2 * time.Hour).Format(time.RFC3339)

		spec, err := query.Validate(query.Params{StartDate: at, EndDate: at}, query.Options{})
		require.NoError(t, err)

		refs, err := repo.QueryRecords(ctx, spec)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, txid(2), refs[0].TxID)
	})

	t.Run("ascending with skip", func(t *testing.T) {
		repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, fiveRecords()...))

		spec, err := query.Validate(query.Params{SortOrder: "ascending", Skip: "1", Limit: "2"}, query.Options{})
		require.NoError(t, err)

		refs, err := repo.QueryRecords(ctx, spec)
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, txid(4), refs[0].TxID)
		assert.Equal(t, txid(3), refs[1].TxID)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fractionalize.MockStore{}
		store.On("Find", mock.Anything, mock.Anything).Return(nil, errors.NewStorageError("boom"))

		repo := newTestRepository(t, testSettings(), store)

		spec, err := query.Validate(query.Params{}, query.Options{})
		require.NoError(t, err)

		refs, err := repo.QueryRecords(ctx, spec)
		require.Error(t, err)
		assert.Nil(t, refs)
		assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
		store.AssertNumberOfCalls(t, "Find", 1)
	})
}

func TestOverviewAndAdminStats(t *testing.T) {
	ctx := context.Background()

	repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}, fiveRecords()...))

	overview, err := repo.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), *overview.Total)
	assert.Len(t, overview.Windows, len(OverviewWindows))
	assert.Len(t, overview.Recent, 5)
	assert.Nil(t, overview.Metadata)

	admin, err := repo.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), *admin.Total)
	assert.Len(t, admin.Windows, len(AdminWindows))
	assert.Nil(t, admin.Recent)
	require.NotNil(t, admin.Metadata)
}

func TestStatsCache(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled recomputes", func(t *testing.T) {
		store := memory.New(ulogger.TestLogger{}, fiveRecords()...)
		repo := newTestRepository(t, testSettings(), store)

		_, err := repo.AdminStats(ctx)
		require.NoError(t, err)

		store.Add(&model.Record{TxID: txid(99), CreatedAt: now})

		stats, err := repo.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), *stats.Total)
	})

	t.Run("enabled serves cached result", func(t *testing.T) {
		tSettings := testSettings()
		tSettings.Fractionalize.StatsCacheTTL = time.Minute

		store := memory.New(ulogger.TestLogger{}, fiveRecords()...)
		repo := newTestRepository(t, tSettings, store)

		first, err := repo.AdminStats(ctx)
		require.NoError(t, err)

		store.Add(&model.Record{TxID: txid(99), CreatedAt: now})

		second, err := repo.AdminStats(ctx)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, uint64(5), *second.Total)

		// overview has its own key
		overview, err := repo.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), *overview.Total)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		tSettings := testSettings()
		tSettings.Fractionalize.StatsCacheTTL = time.Minute

		store := &fractionalize.MockStore{}
		store.On("Count", mock.Anything).Return(uint64(0), errors.NewStorageError("down")).Once()
		store.On("Count", mock.Anything).Return(uint64(2), nil)
		store.On("Metadata").Return(&fractionalize.Metadata{}, nil)

		repo := newTestRepository(t, tSettings, store)

		_, err := repo.AdminStats(ctx)
		require.Error(t, err)

		stats, err := repo.AdminStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), *stats.Total)
	})

	t.Run("nil cache is safe", func(t *testing.T) {
		var c *statsCache

		assert.Nil(t, c.get("k"))
		c.set("k", &Statistics{})
		c.stop()
	})
}

func TestPing(t *testing.T) {
	store := &fractionalize.MockStore{}
	store.On("Ping").Return(errors.NewStorageError("refused")).Once()
	store.On("Ping").Return(nil)

	repo := newTestRepository(t, testSettings(), store)

	err := repo.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))

	require.NoError(t, repo.Ping(context.Background()))
}

func TestHealth(t *testing.T) {
	repo := newTestRepository(t, testSettings(), memory.New(ulogger.TestLogger{}))

	status, msg, err := repo.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "OK", msg)

	status, msg, err = repo.Health(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, msg, "RecordStore")
}

// blockingStore fails the last1h count, blocks the total count until its
// context is done and delegates everything else.
type blockingStore struct {
	*memory.Memory
	cancelled chan struct{}
}

func (s *blockingStore) Count(ctx context.Context, filter *fractionalize.Filter) (uint64, error) {
	if filter == nil {
		<-ctx.Done()
		close(s.cancelled)

		return 0, ctx.Err()
	}

	if filter.Since != nil && filter.Since.Equal(now.Add(-time.Hour)) {
		return 0, errors.NewStorageError("last1h failed")
	}

	return s.Memory.Count(ctx, filter)
}
