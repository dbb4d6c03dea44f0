// Package montecarlo estimates expected auction outcomes by repeating
// independent seeded runs of the auction engine and averaging the results.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/cloudx-io/auctionsim/core"
)

// DefaultRuns is the number of repetitions used when Config.Runs is unset.
const DefaultRuns = 1000

// ErrInvalidRuns is returned when the repetition count is not positive.
var ErrInvalidRuns = errors.New("monte carlo runs must be at least 1")

// Config controls repetition count, parallelism and seeding of an estimate.
type Config struct {
	// Runs is the number of independent repetitions
	Runs int

	// Workers bounds concurrent runs (0 means GOMAXPROCS)
	Workers int

	// Seed is the base seed; run i uses stream i under this seed
	Seed uint64

	// MaxTicks is the per-run safety bound (core.DefaultMaxTicks when <= 0)
	MaxTicks int

	// Logger receives debug output; nil discards it
	Logger *slog.Logger
}

// DefaultConfig returns a Config with DefaultRuns and automatic parallelism.
func DefaultConfig() Config {
	return Config{Runs: DefaultRuns}
}

// WorkerLimit resolves the effective concurrency bound.
func (c Config) WorkerLimit() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// RunOnce executes run i of an estimate: the engine seeded with stream i under cfg.Seed.
func RunOnce(params core.ModelParameters, cfg Config, i int) (*core.RunOutcome, error) {
	return core.RunAuction(params, core.NewRandSource(cfg.Seed, uint64(i)), core.RunOptions{MaxTicks: cfg.MaxTicks})
}

// Estimate runs the auction cfg.Runs times under params and returns the mean
// final price, final tick and auction house profit.
//
// Runs execute concurrently, each on its own random stream, and are reduced
// in run order once all have completed, so the result depends only on params
// and cfg.Seed. The first failing run cancels the remaining ones.
func Estimate(ctx context.Context, params core.ModelParameters, cfg Config) (core.AggregateResult, error) {
	if err := params.Validate(); err != nil {
		return core.AggregateResult{}, err
	}
	if cfg.Runs < 1 {
		return core.AggregateResult{}, fmt.Errorf("%w: got %d", ErrInvalidRuns, cfg.Runs)
	}

	prices := make([]float64, cfg.Runs)
	ticks := make([]float64, cfg.Runs)
	profits := make([]float64, cfg.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerLimit())

	for i := 0; i < cfg.Runs; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := RunOnce(params, cfg, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			prices[i] = float64(outcome.FinalPrice)
			ticks[i] = float64(outcome.FinalTick)
			profits[i] = outcome.AuctionHouseProfit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return core.AggregateResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.AggregateResult{}, err
	}

	result := core.AggregateResult{
		MeanPrice:  stat.Mean(prices, nil),
		MeanTick:   stat.Mean(ticks, nil),
		MeanProfit: stat.Mean(profits, nil),
	}

	cfg.logger().Debug("monte carlo estimate complete",
		"k", params.K,
		"runs", cfg.Runs,
		"seed", cfg.Seed,
		"mean_price", result.MeanPrice,
		"mean_tick", result.MeanTick,
		"mean_profit", result.MeanProfit,
	)

	return result, nil
}
