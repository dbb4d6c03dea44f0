// Package sweep generates tabular data over parameter grids: policy curves,
// valuation-pair surfaces of the optimal policy, and learning-probability
// surfaces of expected profit. Rendering is left to the caller.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/montecarlo"
	"github.com/cloudx-io/auctionsim/policy"
)

// ErrInvalidRange is returned for empty or malformed sweep ranges.
var ErrInvalidRange = errors.New("invalid sweep range")

// Default grids.
var (
	DefaultCurveRange         = IntRange{Lo: 1, Hi: 30}
	DefaultValuationRange     = FloatRange{Lo: 2, Hi: 30, Step: 2}
	DefaultLearningKRange     = IntRange{Lo: 1, Hi: 15}
	DefaultLearningGridPoints = 20
)

// IntRange is an inclusive integer range.
type IntRange struct {
	Lo int `json:"lo" yaml:"lo"`
	Hi int `json:"hi" yaml:"hi"`
}

// Validate rejects empty ranges.
func (r IntRange) Validate() error {
	if r.Hi < r.Lo {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, r.Lo, r.Hi)
	}
	return nil
}

// Values lists the range in ascending order.
func (r IntRange) Values() []int {
	values := make([]int, 0, r.Hi-r.Lo+1)
	for v := r.Lo; v <= r.Hi; v++ {
		values = append(values, v)
	}
	return values
}

// FloatRange is an inclusive range sampled every Step.
type FloatRange struct {
	Lo   float64 `json:"lo" yaml:"lo"`
	Hi   float64 `json:"hi" yaml:"hi"`
	Step float64 `json:"step" yaml:"step"`
}

// Validate rejects empty ranges and non-positive steps.
func (r FloatRange) Validate() error {
	if r.Step <= 0 || math.IsNaN(r.Step) || math.IsInf(r.Step, 0) {
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidRange, r.Step)
	}
	if r.Hi < r.Lo || math.IsNaN(r.Lo) || math.IsNaN(r.Hi) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, r.Lo, r.Hi)
	}
	return nil
}

// Values lists Lo, Lo+Step, ... up to and including Hi.
func (r FloatRange) Values() []float64 {
	n := int(math.Floor((r.Hi-r.Lo)/r.Step+1e-9)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = r.Lo + float64(i)*r.Step
	}
	return values
}

// Linspace returns n evenly spaced values over [0, 1], both ends included.
func Linspace(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i) / float64(n-1)
	}
	return values
}

// Options configures a sweep.
type Options struct {
	Estimator montecarlo.Config

	// Progress, when non-nil, is called after each completed cell. Calls are serialized.
	Progress func(done, total int)
}

// progressTracker serializes progress callbacks from concurrent cells.
type progressTracker struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(done, total int)
}

func newProgressTracker(total int, fn func(done, total int)) *progressTracker {
	return &progressTracker{total: total, fn: fn}
}

func (p *progressTracker) step() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.fn(p.done, p.total)
}

// ValuationGrid records the optimal policy at each (ev1_i, ev2_i) grid point.
type ValuationGrid struct {
	EV1 []float64 `json:"ev1_i"`
	EV2 []float64 `json:"ev2_i"`

	// OptimalKByProfit[i][j] is the profit-maximizing k at (EV1[i], EV2[j])
	OptimalKByProfit [][]int `json:"optimal_k_by_profit"`

	// OptimalKByPrice[i][j] is the price-maximizing k at (EV1[i], EV2[j])
	OptimalKByPrice [][]int `json:"optimal_k_by_price"`
}

// LearningGrid records mean auction house profit over (k, p_learn).
type LearningGrid struct {
	K      []int     `json:"k"`
	PLearn []float64 `json:"p_learn"`

	// MeanProfit[j][i] is the mean profit at (K[i], PLearn[j])
	MeanProfit [][]float64 `json:"mean_profit"`
}

// PolicyCurve estimates mean price, tick and profit for every k in kRange.
func PolicyCurve(ctx context.Context, params core.ModelParameters, kRange IntRange, opts Options) ([]core.PolicyEvaluation, error) {
	if err := kRange.Validate(); err != nil {
		return nil, err
	}
	if err := params.WithK(kRange.Lo).Validate(); err != nil {
		return nil, err
	}

	ks := kRange.Values()
	points := make([]core.PolicyEvaluation, len(ks))
	progress := newProgressTracker(len(ks), opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Estimator.WorkerLimit())

	for i, k := range ks {
		g.Go(func() error {
			outcome, err := montecarlo.Estimate(gctx, params.WithK(k), opts.Estimator)
			if err != nil {
				return fmt.Errorf("policy curve at k=%d: %w", k, err)
			}
			points[i] = core.PolicyEvaluation{K: k, Outcome: outcome}
			progress.step()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// ValuationSurface runs a policy search at every (ev1_i, ev2_i) grid point.
// This is the most expensive sweep: |grid| * 19 * runs engine runs.
func ValuationSurface(ctx context.Context, params core.ModelParameters, ev1Range, ev2Range FloatRange, opts Options) (*ValuationGrid, error) {
	if err := ev1Range.Validate(); err != nil {
		return nil, err
	}
	if err := ev2Range.Validate(); err != nil {
		return nil, err
	}
	if err := params.WithValuations(ev1Range.Lo, ev2Range.Lo).WithK(policy.MinK).Validate(); err != nil {
		return nil, err
	}

	surface := &ValuationGrid{
		EV1: ev1Range.Values(),
		EV2: ev2Range.Values(),
	}
	surface.OptimalKByProfit = make([][]int, len(surface.EV1))
	surface.OptimalKByPrice = make([][]int, len(surface.EV1))
	for i := range surface.EV1 {
		surface.OptimalKByProfit[i] = make([]int, len(surface.EV2))
		surface.OptimalKByPrice[i] = make([]int, len(surface.EV2))
	}

	progress := newProgressTracker(len(surface.EV1)*len(surface.EV2), opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Estimator.WorkerLimit())

	for i, ev1 := range surface.EV1 {
		for j, ev2 := range surface.EV2 {
			g.Go(func() error {
				result, err := policy.Search(gctx, params.WithValuations(ev1, ev2), opts.Estimator)
				if err != nil {
					return fmt.Errorf("valuation surface at (%.2f, %.2f): %w", ev1, ev2, err)
				}
				surface.OptimalKByProfit[i][j] = result.BestKByProfit
				surface.OptimalKByPrice[i][j] = result.BestKByPrice
				progress.step()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return surface, nil
}

// LearningSurface estimates mean profit on a (k, p_learn) grid at the
// valuations in params. p_learn takes gridPoints evenly spaced values in [0, 1].
func LearningSurface(ctx context.Context, params core.ModelParameters, kRange IntRange, gridPoints int, opts Options) (*LearningGrid, error) {
	if err := kRange.Validate(); err != nil {
		return nil, err
	}
	if gridPoints < 2 {
		return nil, fmt.Errorf("%w: need at least 2 p_learn points, got %d", ErrInvalidRange, gridPoints)
	}
	if err := params.WithK(kRange.Lo).Validate(); err != nil {
		return nil, err
	}

	surface := &LearningGrid{
		K:      kRange.Values(),
		PLearn: Linspace(gridPoints),
	}
	surface.MeanProfit = make([][]float64, len(surface.PLearn))
	for j := range surface.PLearn {
		surface.MeanProfit[j] = make([]float64, len(surface.K))
	}

	progress := newProgressTracker(len(surface.K)*len(surface.PLearn), opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Estimator.WorkerLimit())

	for j, pLearn := range surface.PLearn {
		for i, k := range surface.K {
			g.Go(func() error {
				outcome, err := montecarlo.Estimate(gctx, params.WithK(k).WithPLearn(pLearn), opts.Estimator)
				if err != nil {
					return fmt.Errorf("learning surface at (k=%d, p_learn=%.3f): %w", k, pLearn, err)
				}
				surface.MeanProfit[j][i] = outcome.MeanProfit
				progress.step()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return surface, nil
}
