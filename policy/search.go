// Package policy searches countdown policies for the one that maximizes the
// expected final price or the expected auction house profit.
package policy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/montecarlo"
)

// The standard scan covers countdown policies 1 through 19.
const (
	MinK = 1
	MaxK = 19
)

// Search scans k over [MinK, MaxK]. params.K is ignored.
func Search(ctx context.Context, params core.ModelParameters, cfg montecarlo.Config) (*core.PolicySearchResult, error) {
	return SearchRange(ctx, params, MinK, MaxK, cfg)
}

// SearchRange estimates every countdown policy in [lo, hi] and returns the
// best policy by mean price and, independently, by mean profit.
//
// Every candidate is estimated with the same base seed, so candidates are
// compared on common random numbers and any returned outcome can be
// reproduced with montecarlo.Estimate at the returned k.
//
// Selection walks candidates in ascending k with a strict greater-than, so
// the smallest k keeps priority on ties.
func SearchRange(ctx context.Context, params core.ModelParameters, lo, hi int, cfg montecarlo.Config) (*core.PolicySearchResult, error) {
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("%w: invalid k range [%d, %d]", core.ErrInvalidParameters, lo, hi)
	}
	if err := params.WithK(lo).Validate(); err != nil {
		return nil, err
	}

	candidates := make([]core.PolicyEvaluation, hi-lo+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerLimit())

	for i := range candidates {
		k := lo + i
		g.Go(func() error {
			outcome, err := montecarlo.Estimate(gctx, params.WithK(k), cfg)
			if err != nil {
				return fmt.Errorf("estimating k=%d: %w", k, err)
			}
			candidates[i] = core.PolicyEvaluation{K: k, Outcome: outcome}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := Select(candidates)
	if cfg.Logger != nil {
		cfg.Logger.Debug("policy search complete",
			"k_range", fmt.Sprintf("[%d, %d]", lo, hi),
			"best_k_by_price", result.BestKByPrice,
			"best_k_by_profit", result.BestKByProfit,
		)
	}
	return result, nil
}

// Select picks the best candidates by price and by profit. Candidates must be
// in ascending k order and non-empty; the first candidate seeds both bests.
func Select(candidates []core.PolicyEvaluation) *core.PolicySearchResult {
	best := candidates[0]
	result := &core.PolicySearchResult{
		BestKByPrice:           best.K,
		OutcomeAtBestKByPrice:  best.Outcome,
		BestKByProfit:          best.K,
		OutcomeAtBestKByProfit: best.Outcome,
		Candidates:             candidates,
	}

	for _, c := range candidates[1:] {
		if c.Outcome.MeanPrice > result.OutcomeAtBestKByPrice.MeanPrice {
			result.BestKByPrice = c.K
			result.OutcomeAtBestKByPrice = c.Outcome
		}
		if c.Outcome.MeanProfit > result.OutcomeAtBestKByProfit.MeanProfit {
			result.BestKByProfit = c.K
			result.OutcomeAtBestKByProfit = c.Outcome
		}
	}

	return result
}
