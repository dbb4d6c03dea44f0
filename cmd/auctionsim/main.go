package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "auctionsim",
		Short: "Overtime auction simulator",
		Long: `auctionsim simulates a two-bidder ascending auction that closes after k
consecutive ticks without a bid.

It estimates expected price and auction house profit by Monte Carlo,
searches for the countdown policy k that maximizes either, and produces
tabular sweeps over k, bidder valuations and learning probability.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEstimateCmd(),
		newSearchCmd(),
		newCurveCmd(),
		newSurfaceCmd(),
		newLearningCmd(),
		newKeygenCmd(),
		newVerifyCmd(),
		newTablesCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "auctionsim version %s\n", version)
			return err
		},
	}
}
