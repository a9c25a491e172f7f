package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchOptions configure a full headroom run.
type BatchOptions struct {
	// BAs to analyze; empty means every BA in the dataset.
	BAs []string
	// Rates are the target curtailment fractions. Required: there is no
	// implicit default, since silently picking rates that happen to solve
	// would be misleading.
	Rates []float64
	// Solve carries the per-solve tuning.
	Solve SolveOptions
	// Workers bounds parallelism across BAs. Values below 1 mean
	// sequential, which preserves log ordering.
	Workers int
}

// Run iterates BAs × target rates, solving for headroom and aggregating
// metrics for each combination. Combinations whose target is unachievable
// are logged and skipped; a single failed combination never aborts the
// batch. Results are sorted by (BA, target rate) so output is deterministic
// regardless of worker interleaving.
func (a *Analyzer) Run(ctx context.Context, opts BatchOptions) ([]Metrics, error) {
	if len(opts.Rates) == 0 {
		return nil, ErrRatesRequired
	}

	bas := opts.BAs
	if len(bas) == 0 {
		bas = a.BAs()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		results []Metrics
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, ba := range bas {
		group.Go(func() error {
			rows, err := a.runBA(ctx, ba, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, rows...)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].BA != results[j].BA {
			return results[i].BA < results[j].BA
		}
		return results[i].TargetRate < results[j].TargetRate
	})

	if len(results) == 0 {
		a.logger.Error().Msg("no valid results produced; all solves failed")
	} else {
		a.logger.Info().Int("rows", len(results)).Msg("headroom analysis complete")
	}
	return results, nil
}

func (a *Analyzer) runBA(ctx context.Context, ba string, opts BatchOptions) ([]Metrics, error) {
	if _, ok := a.cache[ba]; !ok {
		a.logger.Warn().Str("ba", ba).Msg("no data for requested BA; skipping")
		return nil, nil
	}
	a.logger.Info().Str("ba", ba).Msg("analyzing curtailment headroom")

	var rows []Metrics
	for _, rate := range opts.Rates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loadMW, err := a.Headroom(ba, rate, opts.Solve)
		if err != nil {
			if errors.Is(err, ErrTargetUnachievable) || errors.Is(err, ErrBoundsNotFound) {
				a.logger.Warn().Str("ba", ba).Float64("target_rate", rate).
					Msg("rate not achievable; skipping combination")
				continue
			}
			return nil, fmt.Errorf("ba %s rate %v: %w", ba, rate, err)
		}
		if loadMW <= 0 {
			a.logger.Warn().Str("ba", ba).Float64("target_rate", rate).
				Msg("solver returned non-positive load addition; skipping combination")
			continue
		}

		metrics, err := a.Metrics(ba, loadMW)
		if err != nil {
			return nil, err
		}
		metrics.TargetRate = rate
		rows = append(rows, metrics)
	}
	return rows, nil
}
