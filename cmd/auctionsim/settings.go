package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cheggaaa/pb"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/auctionsim/config"
	"github.com/cloudx-io/auctionsim/logging"
	"github.com/cloudx-io/auctionsim/montecarlo"
	"github.com/cloudx-io/auctionsim/report"
)

func addGlobalFlags(cmd *cobra.Command) {
	defaults := config.Default()
	flags := cmd.PersistentFlags()

	flags.String("config", "", "Path to a YAML config file")
	flags.String("format", string(report.FormatText), "Output format: text, csv, json, cbor")
	flags.StringP("output", "o", "", "Write output to this file instead of stdout")
	flags.String("log-level", defaults.Logging.Level, "Log level: info, debug, trace")
	flags.String("seal-key", "", "Seal the output table with this PEM private key")
	flags.String("db", "", "Also store the output table in this SQLite database")
	flags.Bool("no-progress", false, "Disable the progress bar")

	flags.Int("runs", defaults.Simulation.Runs, "Monte Carlo runs per estimate")
	flags.Int("workers", defaults.Simulation.Workers, "Concurrent workers per level (0 = GOMAXPROCS)")
	flags.Uint64("seed", defaults.Simulation.Seed, "Base random seed")
	flags.Int("max-ticks", defaults.Simulation.MaxTicks, "Per-run tick limit")

	model := defaults.Model
	flags.Float64("ev1", model.EV1Initial, "Bidder 1 initial valuation")
	flags.Float64("ev2", model.EV2Initial, "Bidder 2 initial valuation")
	flags.Int("k", model.K, "Countdown policy: idle ticks before the auction closes")
	flags.Float64("p-learn", model.PLearn, "Probability of a valuation update when priced out")
	flags.Float64("e-jump", model.EJump, "Poisson mean of the valuation jump")
	flags.Float64("gamma-i", model.GammaBidder, "Bidder time-cost coefficient")
	flags.Float64("theta", model.Theta, "Bidder certainty threshold fraction")
	flags.Float64("p-hold", model.PHold, "Probability of holding back a bid")
	flags.Float64("markup-ah", model.MarkupAH, "Auction house fee fraction")
	flags.Float64("gamma-ah", model.GammaAH, "Auction house time-cost coefficient")
}

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg      *config.Config
	logger   *slog.Logger
	format   report.Format
	output   string
	sealKey  *ecdsa.PrivateKey
	dbPath   string
	progress bool
}

// loadSettings resolves defaults, the config file, environment overrides and
// explicitly set flags, in that order.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("runs") {
		cfg.Simulation.Runs, _ = flags.GetInt("runs")
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("max-ticks") {
		cfg.Simulation.MaxTicks, _ = flags.GetInt("max-ticks")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	floatFlags := map[string]*float64{
		"ev1":       &cfg.Model.EV1Initial,
		"ev2":       &cfg.Model.EV2Initial,
		"p-learn":   &cfg.Model.PLearn,
		"e-jump":    &cfg.Model.EJump,
		"gamma-i":   &cfg.Model.GammaBidder,
		"theta":     &cfg.Model.Theta,
		"p-hold":    &cfg.Model.PHold,
		"markup-ah": &cfg.Model.MarkupAH,
		"gamma-ah":  &cfg.Model.GammaAH,
	}
	for name, field := range floatFlags {
		if flags.Changed(name) {
			*field, _ = flags.GetFloat64(name)
		}
	}
	if flags.Changed("k") {
		cfg.Model.K, _ = flags.GetInt("k")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	formatName, _ := flags.GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	s := &settings{
		cfg:    cfg,
		logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		format: format,
	}
	s.output, _ = flags.GetString("output")
	s.dbPath, _ = flags.GetString("db")
	noProgress, _ := flags.GetBool("no-progress")
	s.progress = !noProgress

	if keyPath, _ := flags.GetString("seal-key"); keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("reading seal key: %w", err)
		}
		s.sealKey, err = report.ParsePrivateKeyPEM(data)
		if err != nil {
			return nil, fmt.Errorf("loading seal key: %w", err)
		}
	}

	return s, nil
}

func (s *settings) estimator() montecarlo.Config {
	return s.cfg.EstimatorConfig(s.logger)
}

// progressBar returns a progress callback drawing to w, and a function that
// finishes the bar. Both are no-ops when progress is disabled.
func (s *settings) progressBar(w io.Writer) (func(done, total int), func()) {
	if !s.progress {
		return nil, func() {}
	}

	var bar *pb.ProgressBar
	update := func(done, total int) {
		if bar == nil {
			bar = pb.New(total)
			bar.Output = w
			bar.Start()
		}
		bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return update, finish
}

// emit writes t to the configured output, sealing it when a key is set, and
// stores it when a database is set.
func (s *settings) emit(ctx context.Context, cmd *cobra.Command, t *report.Table) error {
	w := cmd.OutOrStdout()
	if s.output != "" {
		f, err := os.Create(s.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if s.sealKey != nil {
		sealed, err := report.Seal(t, s.sealKey)
		if err != nil {
			return err
		}
		if _, err := w.Write(sealed); err != nil {
			return fmt.Errorf("writing sealed table: %w", err)
		}
	} else if err := report.Encode(w, t, s.format); err != nil {
		return err
	}

	if s.dbPath != "" {
		store, err := report.OpenStore(ctx, s.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(ctx, t); err != nil {
			return err
		}
		s.logger.Info("table stored", "id", t.ID, "kind", t.Kind, "db", s.dbPath)
	}

	if s.output != "" {
		s.logger.Info("table written", "id", t.ID, "kind", t.Kind, "path", s.output)
	}
	return nil
}
