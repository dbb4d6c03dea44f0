package montecarlo

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionsim/core"
)

func TestEstimate_SingleRunMatchesDirectRun(t *testing.T) {
	params := core.DefaultParameters()

	for seed := uint64(0); seed < 20; seed++ {
		cfg := Config{Runs: 1, Seed: seed}

		result, err := Estimate(context.Background(), params, cfg)
		assert.NoError(t, err)

		outcome, err := core.RunAuction(params, core.NewRandSource(seed, 0), core.RunOptions{})
		assert.NoError(t, err)

		check.Equal(t, float64(outcome.FinalPrice), result.MeanPrice)
		check.Equal(t, float64(outcome.FinalTick), result.MeanTick)
		check.Equal(t, outcome.AuctionHouseProfit, result.MeanProfit)
	}
}

func TestEstimate_MatchesSequentialMean(t *testing.T) {
	params := core.DefaultParameters()
	cfg := Config{Runs: 200, Seed: 5, Workers: 4}

	result, err := Estimate(context.Background(), params, cfg)
	assert.NoError(t, err)

	var sumPrice, sumTick, sumProfit float64
	for i := 0; i < cfg.Runs; i++ {
		outcome, err := RunOnce(params, cfg, i)
		assert.NoError(t, err)
		sumPrice += float64(outcome.FinalPrice)
		sumTick += float64(outcome.FinalTick)
		sumProfit += outcome.AuctionHouseProfit
	}

	n := float64(cfg.Runs)
	check.Equal(t, sumPrice/n, result.MeanPrice)
	check.Equal(t, sumTick/n, result.MeanTick)
	check.True(t, abs(sumProfit/n-result.MeanProfit) < 1e-9)
}

func TestEstimate_IndependentOfWorkerCount(t *testing.T) {
	params := core.DefaultParameters()

	sequential, err := Estimate(context.Background(), params, Config{Runs: 300, Seed: 9, Workers: 1})
	assert.NoError(t, err)
	parallel, err := Estimate(context.Background(), params, Config{Runs: 300, Seed: 9, Workers: 8})
	assert.NoError(t, err)

	check.Equal(t, sequential, parallel)
}

func TestEstimate_SeedChangesSample(t *testing.T) {
	params := core.DefaultParameters()

	a, err := Estimate(context.Background(), params, Config{Runs: 100, Seed: 1})
	assert.NoError(t, err)
	b, err := Estimate(context.Background(), params, Config{Runs: 100, Seed: 2})
	assert.NoError(t, err)

	check.NotEqual(t, a, b)
}

func TestEstimate_NoTimeCostsProfitIsMarkupOnMeanPrice(t *testing.T) {
	params := core.DefaultParameters()
	params.GammaBidder = 0
	params.GammaAH = 0

	result, err := Estimate(context.Background(), params, Config{Runs: 500, Seed: 3})
	assert.NoError(t, err)

	check.True(t, abs(params.MarkupAH*result.MeanPrice-result.MeanProfit) < 1e-9)
}

func TestEstimate_InvalidRuns(t *testing.T) {
	for _, runs := range []int{0, -1} {
		_, err := Estimate(context.Background(), core.DefaultParameters(), Config{Runs: runs})
		check.True(t, errors.Is(err, ErrInvalidRuns))
	}
}

func TestEstimate_InvalidParameters(t *testing.T) {
	params := core.DefaultParameters()
	params.K = 0

	_, err := Estimate(context.Background(), params, DefaultConfig())
	check.True(t, errors.Is(err, core.ErrInvalidParameters))
}

func TestEstimate_TickLimitFailsEstimate(t *testing.T) {
	_, err := Estimate(context.Background(), core.DefaultParameters(), Config{Runs: 10, MaxTicks: 1})

	check.True(t, errors.Is(err, core.ErrTickLimit))

	var limitErr *core.TickLimitError
	check.True(t, errors.As(err, &limitErr))
}

func TestEstimate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Estimate(ctx, core.DefaultParameters(), DefaultConfig())
	check.True(t, errors.Is(err, context.Canceled))
}

func TestConfig_WorkerLimit(t *testing.T) {
	check.Equal(t, 3, Config{Workers: 3}.WorkerLimit())
	check.True(t, Config{}.WorkerLimit() >= 1)
	check.Equal(t, DefaultRuns, DefaultConfig().Runs)
}

func BenchmarkEstimate(b *testing.B) {
	params := core.DefaultParameters()
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Estimate(context.Background(), params, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
