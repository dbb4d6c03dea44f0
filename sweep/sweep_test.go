package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/montecarlo"
	"github.com/cloudx-io/auctionsim/policy"
)

func TestIntRange(t *testing.T) {
	check.Equal(t, []int{3, 4, 5}, IntRange{Lo: 3, Hi: 5}.Values())
	check.Equal(t, []int{7}, IntRange{Lo: 7, Hi: 7}.Values())
	check.Nil(t, IntRange{Lo: 1, Hi: 1}.Validate())
	check.True(t, errors.Is(IntRange{Lo: 2, Hi: 1}.Validate(), ErrInvalidRange))
	check.Equal(t, 30, len(DefaultCurveRange.Values()))
}

func TestFloatRange(t *testing.T) {
	tests := []struct {
		name     string
		r        FloatRange
		expected []float64
	}{
		{
			name:     "Default valuation grid",
			r:        DefaultValuationRange,
			expected: []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30},
		},
		{
			name:     "Hi not on a step",
			r:        FloatRange{Lo: 1, Hi: 6, Step: 2},
			expected: []float64{1, 3, 5},
		},
		{
			name:     "Single point",
			r:        FloatRange{Lo: 4, Hi: 4, Step: 1},
			expected: []float64{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.r.Validate())
			check.Equal(t, tt.expected, tt.r.Values())
		})
	}
}

func TestFloatRange_Invalid(t *testing.T) {
	for _, r := range []FloatRange{
		{Lo: 2, Hi: 1, Step: 1},
		{Lo: 1, Hi: 2, Step: 0},
		{Lo: 1, Hi: 2, Step: -1},
	} {
		check.True(t, errors.Is(r.Validate(), ErrInvalidRange))
	}
}

func TestLinspace(t *testing.T) {
	check.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(5))
	check.Equal(t, []float64{0, 1}, Linspace(2))

	values := Linspace(DefaultLearningGridPoints)
	check.Equal(t, DefaultLearningGridPoints, len(values))
	check.Equal(t, 0.0, values[0])
	check.Equal(t, 1.0, values[len(values)-1])
}

func TestPolicyCurve(t *testing.T) {
	params := core.DefaultParameters()
	opts := Options{Estimator: montecarlo.Config{Runs: 50, Seed: 11}}

	var calls, lastDone, lastTotal int
	opts.Progress = func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}

	points, err := PolicyCurve(context.Background(), params, IntRange{Lo: 2, Hi: 6}, opts)
	assert.NoError(t, err)
	assert.Equal(t, 5, len(points))

	for i, p := range points {
		check.Equal(t, 2+i, p.K)

		expected, err := montecarlo.Estimate(context.Background(), params.WithK(p.K), opts.Estimator)
		assert.NoError(t, err)
		check.Equal(t, expected, p.Outcome)
	}

	check.Equal(t, 5, calls)
	check.Equal(t, 5, lastDone)
	check.Equal(t, 5, lastTotal)
}

func TestPolicyCurve_InvalidInput(t *testing.T) {
	opts := Options{Estimator: montecarlo.Config{Runs: 10}}

	_, err := PolicyCurve(context.Background(), core.DefaultParameters(), IntRange{Lo: 5, Hi: 1}, opts)
	check.True(t, errors.Is(err, ErrInvalidRange))

	_, err = PolicyCurve(context.Background(), core.DefaultParameters(), IntRange{Lo: 0, Hi: 3}, opts)
	check.True(t, errors.Is(err, core.ErrInvalidParameters))
}

func TestValuationSurface(t *testing.T) {
	params := core.DefaultParameters()
	opts := Options{Estimator: montecarlo.Config{Runs: 20, Seed: 4}}
	ev1 := FloatRange{Lo: 4, Hi: 8, Step: 4}
	ev2 := FloatRange{Lo: 6, Hi: 6, Step: 2}

	var calls int
	opts.Progress = func(done, total int) {
		calls++
		check.Equal(t, 2, total)
	}

	surface, err := ValuationSurface(context.Background(), params, ev1, ev2, opts)
	assert.NoError(t, err)
	assert.NotNil(t, surface)

	check.Equal(t, []float64{4, 8}, surface.EV1)
	check.Equal(t, []float64{6}, surface.EV2)
	check.Equal(t, 2, calls)

	for i := range surface.EV1 {
		assert.Equal(t, len(surface.EV2), len(surface.OptimalKByProfit[i]))
		for j := range surface.EV2 {
			k := surface.OptimalKByProfit[i][j]
			check.True(t, k >= policy.MinK && k <= policy.MaxK)

			expected, err := policy.Search(context.Background(), params.WithValuations(surface.EV1[i], surface.EV2[j]), opts.Estimator)
			assert.NoError(t, err)
			check.Equal(t, expected.BestKByProfit, k)
			check.Equal(t, expected.BestKByPrice, surface.OptimalKByPrice[i][j])
		}
	}
}

func TestValuationSurface_InvalidInput(t *testing.T) {
	opts := Options{Estimator: montecarlo.Config{Runs: 10}}
	ok := FloatRange{Lo: 2, Hi: 4, Step: 2}

	_, err := ValuationSurface(context.Background(), core.DefaultParameters(), FloatRange{Lo: 2, Hi: 4, Step: 0}, ok, opts)
	check.True(t, errors.Is(err, ErrInvalidRange))

	_, err = ValuationSurface(context.Background(), core.DefaultParameters(), ok, FloatRange{Lo: 4, Hi: 2, Step: 1}, opts)
	check.True(t, errors.Is(err, ErrInvalidRange))

	_, err = ValuationSurface(context.Background(), core.DefaultParameters(), FloatRange{Lo: 0, Hi: 2, Step: 2}, ok, opts)
	check.True(t, errors.Is(err, core.ErrInvalidParameters))
}

func TestLearningSurface(t *testing.T) {
	params := core.DefaultParameters()
	opts := Options{Estimator: montecarlo.Config{Runs: 30, Seed: 8}}
	kRange := IntRange{Lo: 1, Hi: 3}

	surface, err := LearningSurface(context.Background(), params, kRange, 4, opts)
	assert.NoError(t, err)
	assert.NotNil(t, surface)

	check.Equal(t, []int{1, 2, 3}, surface.K)
	check.Equal(t, 4, len(surface.PLearn))
	assert.Equal(t, 4, len(surface.MeanProfit))

	for j, pLearn := range surface.PLearn {
		assert.Equal(t, 3, len(surface.MeanProfit[j]))
		for i, k := range surface.K {
			expected, err := montecarlo.Estimate(context.Background(), params.WithK(k).WithPLearn(pLearn), opts.Estimator)
			assert.NoError(t, err)
			check.Equal(t, expected.MeanProfit, surface.MeanProfit[j][i])
		}
	}
}

func TestLearningSurface_InvalidInput(t *testing.T) {
	opts := Options{Estimator: montecarlo.Config{Runs: 10}}

	_, err := LearningSurface(context.Background(), core.DefaultParameters(), IntRange{Lo: 1, Hi: 3}, 1, opts)
	check.True(t, errors.Is(err, ErrInvalidRange))

	_, err = LearningSurface(context.Background(), core.DefaultParameters(), IntRange{Lo: 3, Hi: 1}, 5, opts)
	check.True(t, errors.Is(err, ErrInvalidRange))
}

func TestSweeps_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := Options{Estimator: montecarlo.Config{Runs: 100}}

	_, err := PolicyCurve(ctx, core.DefaultParameters(), IntRange{Lo: 1, Hi: 3}, opts)
	check.True(t, errors.Is(err, context.Canceled))

	_, err = LearningSurface(ctx, core.DefaultParameters(), IntRange{Lo: 1, Hi: 2}, 2, opts)
	check.True(t, errors.Is(err, context.Canceled))
}
