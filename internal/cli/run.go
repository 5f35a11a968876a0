package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/surge/internal/config"
	"github.com/wesleyorama2/surge/internal/engine"
	"github.com/wesleyorama2/surge/internal/history"
	"github.com/wesleyorama2/surge/internal/output"
	"github.com/wesleyorama2/surge/internal/scheduler"
)

// errCancelled marks a run abandoned by a second interrupt.
var errCancelled = errors.New("run cancelled")

var runCmd = &cobra.Command{
	Use:   "run <config-file>",
	Short: "Run a load test",
	Long: `Run executes the load test described by a configuration file.

While the test runs, a live display shows progress, the current and
target rates, and latency. The first interrupt (Ctrl+C) stops admission
and drains in-flight work gracefully; a second interrupt abandons the
queue and ends the run immediately. The final report renders when the
run reaches a terminal state, even after an early stop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions{configPath: args[0]}
		opts.duration, _ = cmd.Flags().GetString("duration")
		opts.format, _ = cmd.Flags().GetString("format")
		opts.output, _ = cmd.Flags().GetString("output")
		opts.quiet, _ = cmd.Flags().GetBool("quiet")
		opts.save, _ = cmd.Flags().GetBool("save")
		opts.noColor, _ = cmd.Flags().GetBool("no-color")

		err := executeRun(opts)
		if errors.Is(err, errCancelled) {
			fmt.Fprintln(os.Stderr, "run cancelled")
			os.Exit(130)
		}
		return err
	},
}

func init() {
	runCmd.Flags().StringP("duration", "d", "", "override the configured duration (e.g. 90s, 5m)")
	runCmd.Flags().StringP("format", "f", "", "report format: console, json, or html")
	runCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	runCmd.Flags().BoolP("quiet", "q", false, "suppress the live display")
	runCmd.Flags().Bool("save", false, "save the run to history")
}

// runOptions carries everything executeRun needs, so tests can drive
// a full run without cobra or real standard streams.
type runOptions struct {
	configPath string
	duration   string
	format     string
	output     string
	quiet      bool
	save       bool
	noColor    bool
	stdout     io.Writer
	stderr     io.Writer
}

func executeRun(opts runOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}
	if opts.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, &opts); err != nil {
		return err
	}

	rc, pattern, scenarios, err := config.Build(cfg)
	if err != nil {
		return err
	}

	eng := engine.New(rc.Name).Configure(rc).SetPattern(pattern)
	for _, s := range scenarios {
		eng.AddScenario(s.Workload, s.Weight)
	}
	if err := eng.Err(); err != nil {
		return err
	}

	display := output.New(output.Config{
		Name:          rc.Name,
		Pattern:       pattern.Name(),
		TotalDuration: rc.Warmup + rc.Duration,
		Writer:        opts.stdout,
		Quiet:         opts.quiet || !rc.ConsoleOutput,
		NoColors:      opts.noColor,
	})
	display.PrintHeader()

	// First interrupt drains, second abandons.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(opts.stderr, "stopping, draining in-flight work (interrupt again to abandon)")
		eng.Stop()
		<-sigCh
		fmt.Fprintln(opts.stderr, "abandoning queued work")
		eng.Cancel()
	}()

	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		_, runErr = eng.Run(context.Background())
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
updateLoop:
	for {
		select {
		case <-done:
			break updateLoop
		case <-ticker.C:
			display.Update(eng.Live(), eng.Progress())
		}
	}
	display.Finish()

	if runErr != nil {
		// A mid-run failure can still leave partial results; render
		// them before surfacing the error.
		if eng.Result() == nil {
			return runErr
		}
		fmt.Fprintf(opts.stderr, "run ended early: %v\n", runErr)
	}

	if err := writeReport(eng, cfg, opts.stdout); err != nil {
		return err
	}

	if cfg.History.Enabled {
		if err := saveHistory(eng, cfg, opts.stdout); err != nil {
			fmt.Fprintf(opts.stderr, "saving run to history failed: %v\n", err)
		}
	}

	if eng.State() == scheduler.StateCancelled {
		return errCancelled
	}
	return nil
}

// applyOverrides folds command line flags into the loaded config.
// Flags win over file values.
func applyOverrides(cfg *config.Config, opts *runOptions) error {
	if opts.duration != "" {
		d, err := time.ParseDuration(opts.duration)
		if err != nil {
			return fmt.Errorf("invalid --duration %q: %w", opts.duration, err)
		}
		cfg.Duration = config.Duration(d)
	}
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if opts.output != "" {
		cfg.Report.Output = opts.output
	}
	if opts.save {
		cfg.History.Enabled = true
	}
	return nil
}

// writeReport renders the final report to the configured destination.
func writeReport(eng *engine.Engine, cfg *config.Config, stdout io.Writer) error {
	format := cfg.Report.Format
	if format == "" {
		format = "console"
	}

	if cfg.Report.Output == "" {
		return eng.Report(format, stdout)
	}

	f, err := os.Create(cfg.Report.Output)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := eng.Report(format, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "report written to %s\n", cfg.Report.Output)
	return nil
}

// saveHistory archives the final snapshot in the local run store.
func saveHistory(eng *engine.Engine, cfg *config.Config, stdout io.Writer) error {
	snap := eng.Result()
	if snap == nil {
		return fmt.Errorf("no result to save")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(snap); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved to history as %s\n", shortID(snap.RunID))
	return nil
}
