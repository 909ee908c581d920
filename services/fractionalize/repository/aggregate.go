package repository

import (
	"context"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/util/tracing"
	"golang.org/x/sync/errgroup"
)

// Window is a trailing time range ending at the aggregation instant.
type Window struct {
	Name     string
	Duration time.Duration
}

var (
	OverviewWindows = []Window{
		{Name: "last24h", Duration: 24 * time.Hour},
		{Name: "last7d", Duration: 7 * 24 * time.Hour},
		{Name: "last30d", Duration: 30 * 24 * time.Hour},
	}

	AdminWindows = []Window{
		{Name: "last1h", Duration: time.Hour},
		{Name: "last24h", Duration: 24 * time.Hour},
		{Name: "last7d", Duration: 7 * 24 * time.Hour},
		{Name: "last30d", Duration: 30 * 24 * time.Hour},
	}
)

// AggregateOptions selects the optional branches of an aggregation.
// Recent > 0 adds a find of the newest Recent records.
type AggregateOptions struct {
	Total    bool
	Metadata bool
	Recent   int
}

// Statistics is the result of one aggregation. Fields for branches that were
// not requested are nil. Windows holds one count per requested window, keyed
// by window name.
type Statistics struct {
	Total    *uint64                 `json:"total,omitempty"`
	Windows  map[string]uint64       `json:"windows"`
	Metadata *fractionalize.Metadata `json:"metadata,omitempty"`
	Recent   []*model.UTXORef        `json:"recent,omitempty"`
}

// Aggregate counts the records in every window relative to now and runs the
// optional branches, all concurrently. Each branch gets its own query timeout.
// The first failing branch cancels the others and the call returns a
// STORAGE_UNAVAILABLE error with no partial result.
func (repo *Repository) Aggregate(ctx context.Context, windows []Window, now time.Time, opts AggregateOptions) (_ *Statistics, err error) {
	ctx, _, deferFn := tracing.Start(ctx, "Repository:Aggregate",
		tracing.WithLogMessage(repo.logger, "[Aggregate] %d windows, total=%t, metadata=%t, recent=%d", len(windows), opts.Total, opts.Metadata, opts.Recent),
	)

	defer func() {
		deferFn(err)
	}()

	g, gCtx := errgroup.WithContext(ctx)

	counts := make([]uint64, len(windows))

	for i, w := range windows {
		since := now.Add(-w.Duration)

		g.Go(func() error {
			bCtx, cancel := repo.branchContext(gCtx)
			defer cancel()

			n, err := repo.store.Count(bCtx, &fractionalize.Filter{Since: &since})
			if err != nil {
				return errors.NewStorageUnavailableError("[Aggregate] counting %s failed", w.Name, err)
			}

			counts[i] = n

			return nil
		})
	}

	stats := &Statistics{}

	if opts.Total {
		g.Go(func() error {
			bCtx, cancel := repo.branchContext(gCtx)
			defer cancel()

			n, err := repo.store.Count(bCtx, nil)
			if err != nil {
				return errors.NewStorageUnavailableError("[Aggregate] counting total failed", err)
			}

			stats.Total = &n

			return nil
		})
	}

	if opts.Metadata {
		g.Go(func() error {
			bCtx, cancel := repo.branchContext(gCtx)
			defer cancel()

			md, err := repo.store.Metadata(bCtx)
			if err != nil {
				return errors.NewStorageUnavailableError("[Aggregate] reading metadata failed", err)
			}

			stats.Metadata = md

			return nil
		})
	}

	if opts.Recent > 0 {
		g.Go(func() error {
			bCtx, cancel := repo.branchContext(gCtx)
			defer cancel()

			refs, err := repo.store.Find(bCtx, nil, fractionalize.FindOptions{
				Sort:  fractionalize.SortDescending,
				Limit: opts.Recent,
			})
			if err != nil {
				return errors.NewStorageUnavailableError("[Aggregate] finding recent records failed", err)
			}

			stats.Recent = refs

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	stats.Windows = make(map[string]uint64, len(windows))
	for i, w := range windows {
		stats.Windows[w.Name] = counts[i]
	}

	return stats, nil
}

func (repo *Repository) branchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, repo.queryTimeout)
}
