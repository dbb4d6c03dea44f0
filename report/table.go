// Package report turns simulation results into tables that can be rendered,
// sealed and stored for the plotting layer.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/montecarlo"
	"github.com/cloudx-io/auctionsim/sweep"
)

// Table kinds.
const (
	KindRun              = "run"
	KindEstimate         = "estimate"
	KindSearch           = "search"
	KindCurve            = "curve"
	KindValuationSurface = "valuation_surface"
	KindLearningSurface  = "learning_surface"
)

// Table is a rectangular result with provenance.
type Table struct {
	ID         uuid.UUID            `json:"id"`
	Kind       string               `json:"kind"`
	Columns    []string             `json:"columns"`
	Rows       [][]float64          `json:"rows"`
	Summary    map[string]float64   `json:"summary,omitempty"`
	ParamsHash string               `json:"params_hash"`
	Params     core.ModelParameters `json:"params"`
	Seed       uint64               `json:"seed"`
	Runs       int                  `json:"runs"`
	CreatedAt  time.Time            `json:"created_at"`
}

func newTable(kind string, params core.ModelParameters, seed uint64, runs int, columns ...string) *Table {
	return &Table{
		ID:         uuid.New(),
		Kind:       kind,
		Columns:    columns,
		Rows:       [][]float64{},
		ParamsHash: core.ComputeParamsHash(params, seed),
		Params:     params,
		Seed:       seed,
		Runs:       runs,
		CreatedAt:  time.Now().UTC(),
	}
}

// FromRun tabulates the bid record of a single run. The final outcome goes
// into the summary.
func FromRun(params core.ModelParameters, seed uint64, outcome *core.RunOutcome) *Table {
	t := newTable(KindRun, params, seed, 1, "price", "tick", "bidder")
	for _, r := range outcome.Record {
		t.Rows = append(t.Rows, []float64{float64(r.Price), float64(r.Tick), float64(r.Bidder)})
	}
	t.Summary = map[string]float64{
		"final_price": float64(outcome.FinalPrice),
		"final_tick":  float64(outcome.FinalTick),
		"last_bidder": float64(outcome.LastBidder),
		"profit":      outcome.AuctionHouseProfit,
	}
	return t
}

// FromEstimate tabulates a single Monte Carlo estimate at params.K.
func FromEstimate(params core.ModelParameters, cfg montecarlo.Config, result core.AggregateResult) *Table {
	t := newTable(KindEstimate, params, cfg.Seed, cfg.Runs, "k", "mean_price", "mean_tick", "mean_profit")
	t.Rows = append(t.Rows, evaluationRow(core.PolicyEvaluation{K: params.K, Outcome: result}))
	return t
}

// FromSearch tabulates every candidate of a policy search and marks the winners.
func FromSearch(params core.ModelParameters, cfg montecarlo.Config, result *core.PolicySearchResult) *Table {
	t := newTable(KindSearch, params, cfg.Seed, cfg.Runs,
		"k", "mean_price", "mean_tick", "mean_profit", "best_by_price", "best_by_profit")
	for _, c := range result.Candidates {
		row := evaluationRow(c)
		row = append(row, indicator(c.K == result.BestKByPrice), indicator(c.K == result.BestKByProfit))
		t.Rows = append(t.Rows, row)
	}
	t.Summary = map[string]float64{
		"best_k_by_price":  float64(result.BestKByPrice),
		"best_k_by_profit": float64(result.BestKByProfit),
	}
	return t
}

// FromCurve tabulates a policy curve, one row per k.
func FromCurve(params core.ModelParameters, cfg montecarlo.Config, points []core.PolicyEvaluation) *Table {
	t := newTable(KindCurve, params, cfg.Seed, cfg.Runs, "k", "mean_price", "mean_tick", "mean_profit")
	for _, p := range points {
		t.Rows = append(t.Rows, evaluationRow(p))
	}
	return t
}

// FromValuationGrid flattens a valuation surface into one row per grid point.
func FromValuationGrid(params core.ModelParameters, cfg montecarlo.Config, grid *sweep.ValuationGrid) *Table {
	t := newTable(KindValuationSurface, params, cfg.Seed, cfg.Runs,
		"ev1_i", "ev2_i", "optimal_k_by_profit", "optimal_k_by_price")
	for i, ev1 := range grid.EV1 {
		for j, ev2 := range grid.EV2 {
			t.Rows = append(t.Rows, []float64{
				ev1,
				ev2,
				float64(grid.OptimalKByProfit[i][j]),
				float64(grid.OptimalKByPrice[i][j]),
			})
		}
	}
	return t
}

// FromLearningGrid flattens a learning surface into one row per (k, p_learn).
func FromLearningGrid(params core.ModelParameters, cfg montecarlo.Config, grid *sweep.LearningGrid) *Table {
	t := newTable(KindLearningSurface, params, cfg.Seed, cfg.Runs, "k", "p_learn", "mean_profit")
	for j, pLearn := range grid.PLearn {
		for i, k := range grid.K {
			t.Rows = append(t.Rows, []float64{float64(k), pLearn, grid.MeanProfit[j][i]})
		}
	}
	return t
}

func evaluationRow(e core.PolicyEvaluation) []float64 {
	return []float64{float64(e.K), e.Outcome.MeanPrice, e.Outcome.MeanTick, e.Outcome.MeanProfit}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
