// Package repository provides record queries and windowed statistics on top
// of a fractionalize record store.
package repository

import (
	"context"
	"net/http"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/query"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/bsv-blockchain/fractionalize/util/health"
	"github.com/bsv-blockchain/fractionalize/util/tracing"
)

const defaultRecentRecords = 10

// Interface defines the read operations served to the HTTP layer.
type Interface interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
	Ping(ctx context.Context) error
	QueryRecords(ctx context.Context, spec *query.Spec) ([]*model.UTXORef, error)
	Overview(ctx context.Context) (*Statistics, error)
	AdminStats(ctx context.Context) (*Statistics, error)
}

// Repository implements Interface. It never writes to the store.
type Repository struct {
	logger        ulogger.Logger
	settings      *settings.Settings
	store         fractionalize.Store
	queryTimeout  time.Duration
	recentRecords int
	cache         *statsCache
	now           func() time.Time
}

// NewRepository creates a Repository over store. Statistics caching is
// enabled when fractionalize_statsCacheTTL is positive.
//
// Parameters:
//   - logger: Logger instance for repository operations
//   - tSettings: Service settings, supplying the query timeout, cache TTL and
//     number of recent records on the overview
//   - store: The record store to read from
func NewRepository(logger ulogger.Logger, tSettings *settings.Settings, store fractionalize.Store) (*Repository, error) {
	if store == nil {
		return nil, errors.NewConfigurationError("[Repository] record store is required")
	}

	recent := tSettings.Fractionalize.RecentRecords
	if recent <= 0 {
		recent = defaultRecentRecords
	}

	return &Repository{
		logger:        logger,
		settings:      tSettings,
		store:         store,
		queryTimeout:  tSettings.Fractionalize.QueryTimeout,
		recentRecords: recent,
		cache:         newStatsCache(tSettings.Fractionalize.StatsCacheTTL),
		now:           time.Now,
	}, nil
}

// Health reports OK for liveness. For readiness the record store is checked.
func (repo *Repository) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	checks := []health.Check{
		{Name: "RecordStore", Check: repo.store.Health},
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

// Ping checks store connectivity within the query timeout.
func (repo *Repository) Ping(ctx context.Context) error {
	ctx, cancel := repo.branchContext(ctx)
	defer cancel()

	if err := repo.store.Ping(ctx); err != nil {
		return errors.NewStorageUnavailableError("[Ping] record store unreachable", err)
	}

	return nil
}

// QueryRecords returns the page of record references selected by spec. A
// zero limit yields an empty page without touching the store.
func (repo *Repository) QueryRecords(ctx context.Context, spec *query.Spec) (_ []*model.UTXORef, err error) {
	ctx, _, deferFn := tracing.Start(ctx, "Repository:QueryRecords",
		tracing.WithLogMessage(repo.logger, "[QueryRecords] txid=%q skip=%d limit=%d sort=%s", spec.TxID, spec.Skip, spec.Limit, spec.SortOrder),
	)

	defer func() {
		deferFn(err)
	}()

	if spec.Limit == 0 {
		return []*model.UTXORef{}, nil
	}

	ctx, cancel := repo.branchContext(ctx)
	defer cancel()

	refs, err := repo.store.Find(ctx, spec.Filter(), spec.FindOptions())
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[QueryRecords] find failed", err)
	}

	if refs == nil {
		refs = []*model.UTXORef{}
	}

	return refs, nil
}

// Overview returns the total, the newest records and the overview windows.
func (repo *Repository) Overview(ctx context.Context) (*Statistics, error) {
	return repo.cachedAggregate(ctx, OverviewWindows, AggregateOptions{
		Total:  true,
		Recent: repo.recentRecords,
	})
}

// AdminStats returns the total, store metadata and the admin windows.
func (repo *Repository) AdminStats(ctx context.Context) (*Statistics, error) {
	return repo.cachedAggregate(ctx, AdminWindows, AggregateOptions{
		Total:    true,
		Metadata: true,
	})
}

// Close stops the statistics cache. The store is owned by the caller.
func (repo *Repository) Close() {
	repo.cache.stop()
}

func (repo *Repository) cachedAggregate(ctx context.Context, windows []Window, opts AggregateOptions) (*Statistics, error) {
	key := statsCacheKey(windows, opts)

	if stats := repo.cache.get(key); stats != nil {
		return stats, nil
	}

	stats, err := repo.Aggregate(ctx, windows, repo.now(), opts)
	if err != nil {
		return nil, err
	}

	repo.cache.set(key, stats)

	return stats, nil
}
