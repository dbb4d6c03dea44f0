package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudx-io/auctionsim/report"
	"github.com/cloudx-io/auctionsim/sweep"
)

func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Tabulate mean price, duration and profit for each k",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			var kRange sweep.IntRange
			kRange.Lo, _ = cmd.Flags().GetInt("k-min")
			kRange.Hi, _ = cmd.Flags().GetInt("k-max")

			progress, finish := s.progressBar(cmd.ErrOrStderr())
			opts := sweep.Options{Estimator: s.estimator(), Progress: progress}

			points, err := sweep.PolicyCurve(cmd.Context(), s.cfg.Model, kRange, opts)
			finish()
			if err != nil {
				return err
			}

			return s.emit(cmd.Context(), cmd, report.FromCurve(s.cfg.Model, opts.Estimator, points))
		},
	}

	cmd.Flags().Int("k-min", sweep.DefaultCurveRange.Lo, "Smallest k")
	cmd.Flags().Int("k-max", sweep.DefaultCurveRange.Hi, "Largest k")

	return cmd
}

func newSurfaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Tabulate the optimal k over a grid of bidder valuations",
		Long: `Run a policy search at every (ev1, ev2) point of a square valuation grid and
tabulate the profit-maximizing and price-maximizing k.

This is the most expensive sweep: grid points x 19 x runs auctions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			var evRange sweep.FloatRange
			evRange.Lo, _ = cmd.Flags().GetFloat64("ev-min")
			evRange.Hi, _ = cmd.Flags().GetFloat64("ev-max")
			evRange.Step, _ = cmd.Flags().GetFloat64("ev-step")

			progress, finish := s.progressBar(cmd.ErrOrStderr())
			opts := sweep.Options{Estimator: s.estimator(), Progress: progress}

			grid, err := sweep.ValuationSurface(cmd.Context(), s.cfg.Model, evRange, evRange, opts)
			finish()
			if err != nil {
				return err
			}

			return s.emit(cmd.Context(), cmd, report.FromValuationGrid(s.cfg.Model, opts.Estimator, grid))
		},
	}

	cmd.Flags().Float64("ev-min", sweep.DefaultValuationRange.Lo, "Smallest valuation on both axes")
	cmd.Flags().Float64("ev-max", sweep.DefaultValuationRange.Hi, "Largest valuation on both axes")
	cmd.Flags().Float64("ev-step", sweep.DefaultValuationRange.Step, "Valuation grid step")

	return cmd
}

func newLearningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Tabulate mean profit over k and the learning probability",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			var kRange sweep.IntRange
			kRange.Lo, _ = cmd.Flags().GetInt("k-min")
			kRange.Hi, _ = cmd.Flags().GetInt("k-max")
			points, _ := cmd.Flags().GetInt("points")

			progress, finish := s.progressBar(cmd.ErrOrStderr())
			opts := sweep.Options{Estimator: s.estimator(), Progress: progress}

			grid, err := sweep.LearningSurface(cmd.Context(), s.cfg.Model, kRange, points, opts)
			finish()
			if err != nil {
				return err
			}

			return s.emit(cmd.Context(), cmd, report.FromLearningGrid(s.cfg.Model, opts.Estimator, grid))
		},
	}

	cmd.Flags().Int("k-min", sweep.DefaultLearningKRange.Lo, "Smallest k")
	cmd.Flags().Int("k-max", sweep.DefaultLearningKRange.Hi, "Largest k")
	cmd.Flags().Int("points", sweep.DefaultLearningGridPoints, "Evenly spaced learning probabilities in [0, 1]")

	return cmd
}
