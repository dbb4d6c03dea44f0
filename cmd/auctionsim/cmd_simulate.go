package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/logging"
	"github.com/cloudx-io/auctionsim/montecarlo"
	"github.com/cloudx-io/auctionsim/policy"
	"github.com/cloudx-io/auctionsim/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a single auction and print its bid record",
		Long: `Simulate one auction under the model parameters and print the bid record.

The run uses stream --stream under --seed, so "run --stream i" reproduces
run i of an estimate with the same seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			stream, _ := cmd.Flags().GetUint64("stream")
			trace, _ := cmd.Flags().GetBool("trace")

			opts := core.RunOptions{MaxTicks: s.cfg.Simulation.MaxTicks}
			if trace {
				logger := logging.NewLogger("trace", cmd.ErrOrStderr())
				opts.Observer = func(tr core.TickTrace) {
					logger.Log(cmd.Context(), logging.LevelTrace, "tick",
						"t", tr.Tick,
						"price", tr.Price,
						"k_remain", tr.KRemain,
						"last", tr.LastBidder,
						"ev1", tr.Bidder1.State.EV,
						"ev2", tr.Bidder2.State.EV,
						"pi1", tr.Bidder1.Pi,
						"pi2", tr.Bidder2.Pi,
						"s1", tr.Bidder1.S,
						"s2", tr.Bidder2.S,
						"b1", tr.Bid1,
						"b2", tr.Bid2,
					)
				}
			}

			outcome, err := core.RunAuction(s.cfg.Model, core.NewRandSource(s.cfg.Simulation.Seed, stream), opts)
			if err != nil {
				return err
			}

			s.logger.Info("auction finished",
				"final_price", outcome.FinalPrice,
				"final_tick", outcome.FinalTick,
				"last_bidder", outcome.LastBidder,
				"profit", outcome.AuctionHouseProfit,
			)
			return s.emit(cmd.Context(), cmd, report.FromRun(s.cfg.Model, s.cfg.Simulation.Seed, outcome))
		},
	}

	cmd.Flags().Uint64("stream", 0, "Random stream under the base seed")
	cmd.Flags().Bool("trace", false, "Log the dynamics of every tick")

	return cmd
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Estimate mean price, duration and profit at the configured k",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			cfg := s.estimator()
			result, err := montecarlo.Estimate(cmd.Context(), s.cfg.Model, cfg)
			if err != nil {
				return err
			}

			return s.emit(cmd.Context(), cmd, report.FromEstimate(s.cfg.Model, cfg, result))
		},
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the countdown policy that maximizes mean price and mean profit",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			lo, _ := cmd.Flags().GetInt("k-min")
			hi, _ := cmd.Flags().GetInt("k-max")

			cfg := s.estimator()
			result, err := policy.SearchRange(cmd.Context(), s.cfg.Model, lo, hi, cfg)
			if err != nil {
				return err
			}

			s.logger.Info("policy search finished",
				"best_k_by_price", result.BestKByPrice,
				"mean_price", result.OutcomeAtBestKByPrice.MeanPrice,
				"best_k_by_profit", result.BestKByProfit,
				"mean_profit", result.OutcomeAtBestKByProfit.MeanProfit,
			)
			return s.emit(cmd.Context(), cmd, report.FromSearch(s.cfg.Model, cfg, result))
		},
	}

	cmd.Flags().Int("k-min", policy.MinK, "Smallest k to evaluate")
	cmd.Flags().Int("k-max", policy.MaxK, "Largest k to evaluate")

	return cmd
}
