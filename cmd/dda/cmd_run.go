package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dda-sim/dda/internal/config"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/logging"
	"github.com/dda-sim/dda/internal/model"
	"github.com/dda-sim/dda/internal/recorder"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a corridor simulation",
		Long: `Build a model from config and flags, run it to completion and print a
summary of the run.

Flags override the config file, which overrides defaults. The memory
recorder keeps only what the summary needs; --recorder sqlite stores every
tick's observations and --dsn names the database file.

Examples:
  dda run                                     # Config defaults
  dda run --agents 600 --iterations 1440      # One simulated day
  dda run --bleedout-rate 0.2 --seed 7 --json # Reproducible, machine readable
  dda run --recorder sqlite --dsn runs.db     # Keep observations for analysis`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			report, err := runSimulation(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(report)
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().Int("agents", 0, "Population size")
	cmd.Flags().Int("iterations", 0, "Number of ticks to run (60 per simulated hour)")
	cmd.Flags().Float64("bleedout-rate", 0, "Midpoint exit probability in [0,1] (default drawn from N(0.5, 0.1))")
	cmd.Flags().Uint64("seed", 0, "Random seed (default random)")
	cmd.Flags().String("origin-policy", "", "Endpoint choice for activated agents: alternate or random")
	cmd.Flags().String("recorder", "", "Observation recorder: memory or sqlite")
	cmd.Flags().String("dsn", "", "SQLite database path for --recorder sqlite (default in-memory)")
	cmd.Flags().String("events", "", "Append a JSONL event trace to this file")
	cmd.Flags().String("log-level", "", "Log level: warn, info, debug, trace")
	cmd.Flags().String("log-format", "", "Log format: text or json")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.DDAConfig) {
	flags := cmd.Flags()
	if flags.Changed("agents") {
		cfg.Simulation.Agents, _ = flags.GetInt("agents")
	}
	if flags.Changed("iterations") {
		cfg.Simulation.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("bleedout-rate") {
		r, _ := flags.GetFloat64("bleedout-rate")
		cfg.Simulation.BleedoutRate = &r
	}
	if flags.Changed("seed") {
		s, _ := flags.GetUint64("seed")
		cfg.Simulation.Seed = &s
	}
	if flags.Changed("origin-policy") {
		p, _ := flags.GetString("origin-policy")
		cfg.Simulation.OriginPolicy = constants.OriginPolicy(p)
	}
	if flags.Changed("recorder") {
		cfg.Recorder.Backend, _ = flags.GetString("recorder")
	}
	if flags.Changed("dsn") {
		cfg.Recorder.DSN, _ = flags.GetString("dsn")
	}
	if flags.Changed("events") {
		cfg.Logging.EventsPath, _ = flags.GetString("events")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
}

// runReport is what dda run prints.
type runReport struct {
	model.Summary
	Recorder string `json:"recorder"`
	DSN      string `json:"dsn,omitempty"`
}

// openRecorder returns the recorder for a CLI run and a func that releases
// it. Nothing reads a memory history after the run, so the memory backend
// keeps none.
func openRecorder(cfg config.RecorderConfig, runID string) (recorder.Recorder, func() error, error) {
	if cfg.Backend != config.RecorderSQLite {
		return recorder.Discard, func() error { return nil }, nil
	}
	store, err := recorder.OpenSQLite(cfg.DSN, runID)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// runSimulation builds the model described by cfg and drives it to the end.
// Operational logs go to logOut.
func runSimulation(ctx context.Context, cfg *config.DDAConfig, logOut io.Writer) (runReport, error) {
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logOut)

	events, err := logging.OpenEventLog(cfg.Logging.EventsPath)
	if err != nil {
		return runReport{}, err
	}
	defer events.Close()

	runID := uuid.NewString()
	report := runReport{Recorder: config.RecorderMemory}

	rec, closeRec, err := openRecorder(cfg.Recorder, runID)
	if err != nil {
		return runReport{}, err
	}
	defer closeRec()
	if cfg.Recorder.Backend == config.RecorderSQLite {
		report.Recorder = config.RecorderSQLite
		report.DSN = cfg.Recorder.DSN
	}

	m, err := model.New(model.Config{
		Agents:       cfg.Simulation.Agents,
		Iterations:   cfg.Simulation.Iterations,
		BleedoutRate: cfg.Simulation.BleedoutRate,
		Seed:         cfg.Simulation.Seed,
		Origins:      cfg.Simulation.OriginPolicy,
		Recorder:     rec,
		Logger:       logger,
		Events:       events,
		RunID:        runID,
	})
	if err != nil {
		return runReport{}, fmt.Errorf("failed to build model: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := m.RunContext(ctx); err != nil {
		return runReport{}, fmt.Errorf("run failed: %w", err)
	}

	report.Summary = m.Summary()
	return report, nil
}

func printReport(out io.Writer, r runReport) {
	fmt.Fprintf(out, "Run %s\n", r.RunID)
	fmt.Fprintf(out, "  seed:           %d\n", r.Seed)
	fmt.Fprintf(out, "  agents:         %d\n", r.Agents)
	fmt.Fprintf(out, "  ticks:          %d/%d\n", r.Steps, r.Iterations)
	fmt.Fprintf(out, "  bleedout rate:  %.4f\n", r.BleedoutRate)
	fmt.Fprintf(out, "  recorder:       %s", r.Recorder)
	if r.DSN != "" {
		fmt.Fprintf(out, " (%s)", r.DSN)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Lifecycle:")
	fmt.Fprintf(out, "  activations:    %d\n", r.Stats.Activations)
	fmt.Fprintf(out, "  completions:    %d\n", r.Stats.Completions)
	fmt.Fprintf(out, "  bleedouts:      %d\n", r.Stats.Bleedouts)
	if r.Stats.CappedActivations > 0 {
		fmt.Fprintf(out, "  capped hours:   %d\n", r.Stats.CappedActivations)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Final state: %d retired, %d traveling\n", r.Final.Retired, r.Final.Traveling)
	fmt.Fprintln(out, "Occupancy:")
	for pos, n := range r.Occupancy {
		if n == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-9s %4d\n", cellName(pos), n)
	}
}

func cellName(pos int) string {
	switch pos {
	case constants.Graveyard:
		return "graveyard"
	case constants.LocA:
		return "loc_a"
	case constants.LocMid:
		return "loc_mid"
	case constants.LocB:
		return "loc_b"
	}
	return fmt.Sprintf("cell %d", pos)
}
