package testctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	"github.com/muditbhargava66/jtag-testctl/exitcodes"
	"github.com/muditbhargava66/jtag-testctl/logging"
	"github.com/muditbhargava66/jtag-testctl/metrics"
	"github.com/muditbhargava66/jtag-testctl/plan"
	"github.com/muditbhargava66/jtag-testctl/registry"
	"github.com/muditbhargava66/jtag-testctl/results"
	"github.com/muditbhargava66/jtag-testctl/runner"
)

// controller implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &controller{}

// controller drives one verification run end to end: it builds the plan for
// the selected mode, supervises its execution, echoes the build-tool output,
// and renders/exports the resulting artifact summary.
type controller struct {
	ctx       context.Context
	config    *Config
	version   string
	registry  *registry.Registry
	planner   *plan.Builder
	procs     runner.ProcessRunner
	scanner   runner.ArtifactScanner
	formatter ResultFormatter

	status  runner.Status
	summary *results.Summary

	running atomic.Bool
	done    chan struct{}

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*controller, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating controller with config",
		"mode", config.Mode,
		"testbench", config.Testbench,
		"autoReport", config.AutoReport,
		"projectRoot", config.ProjectRoot,
		"resultsDir", config.ResultsDir)

	reg, err := registry.NewRegistry(registry.Config{
		Log:           config.Log,
		TestbenchFile: config.TestbenchConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return &controller{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		planner:          plan.NewBuilder(config.BuildTool, reg),
		procs:            runner.NewExecRunner(config.ProjectRoot, config.Log),
		scanner:          results.NewScanner(config.Log),
		formatter:        NewConsoleResultFormatter(config.Log),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the selected plan to its terminal state, then renders and
// optionally exports the summary.
// Start implements the cliapp.Lifecycle interface.
func (c *controller) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			c.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	c.ctx = ctx
	c.done = make(chan struct{})
	c.running.Store(true)

	c.config.Log.Info("Starting testctl", "version", c.version, "mode", c.config.Mode)

	runPlan, err := c.planner.Build(c.config.Mode, c.config.Testbench, c.config.AutoReport)
	if err != nil {
		// Bad mode/testbench combinations are configuration problems, not
		// test failures.
		return NewRuntimeError(fmt.Errorf("failed to build run plan: %w", err))
	}

	runID := uuid.New().String()
	fileLogger, err := logging.NewFileLogger(c.config.LogDir, runID)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create run log: %w", err))
	}
	defer func() { _ = fileLogger.Close() }()
	c.config.Log.Info("Logging run output", "dir", fileLogger.Directory())

	type runOutcome struct {
		status  runner.Status
		summary *results.Summary
	}
	outcomeCh := make(chan runOutcome, 1)

	sup, err := runner.NewSupervisor(runner.Config{
		Runner:      c.procs,
		Scanner:     c.scanner,
		ResultsRoot: c.config.ResultsDir,
		Log:         c.config.Log,
		OnLine: func(line runner.LogLine) {
			fmt.Println(line.Text)
			if err := fileLogger.Append(line.Text); err != nil {
				c.config.Log.Warn("Failed to append to run log", "err", err)
			}
		},
		OnComplete: func(st runner.Status, summary *results.Summary) {
			outcomeCh <- runOutcome{status: st, summary: summary}
		},
	})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create supervisor: %w", err))
	}

	if err := sup.Start(ctx, runPlan, runID); err != nil {
		return NewRuntimeError(fmt.Errorf("failed to start run: %w", err))
	}

	var out runOutcome
	select {
	case <-ctx.Done():
		c.config.Log.Info("Interrupt received, cancelling run", "run_id", runID)
		sup.RequestCancel()
		out = <-outcomeCh
	case out = <-outcomeCh:
	}
	c.status = out.status
	c.summary = out.summary

	if err := c.formatter.FormatResults(out.status, out.summary); err != nil {
		c.config.Log.Error("Failed to render results", "err", err)
	}

	if c.config.ExportFile != "" {
		meta := results.Metadata{
			Timestamp:   out.summary.Timestamp,
			ProjectRoot: c.config.ProjectRoot,
		}
		if err := results.Export(out.summary, meta, c.config.ExportFile); err != nil {
			metrics.RecordErrorDetails("export failed", err)
			return NewRuntimeError(err)
		}
		c.config.Log.Info("Exported results", "path", c.config.ExportFile)
	}

	switch {
	case out.status.State == runner.StateFailed && out.status.Err != nil:
		return NewRuntimeError(out.status.Err)
	case out.status.State == runner.StateFailed:
		return NewTestFailureError(fmt.Sprintf("command %d exited with code %d",
			out.status.CommandIndex, out.status.ExitCode))
	case out.status.Cancelled:
		c.config.Log.Warn("Run cancelled by user", "run_id", runID)
	default:
		c.config.Log.Info("Run completed", "run_id", runID, "duration", out.status.Duration)
	}

	go func() {
		c.shutdownCallback(nil)
	}()
	return nil
}

// Stop stops the testctl service.
// Stop implements the cliapp.Lifecycle interface.
func (c *controller) Stop(ctx context.Context) error {
	c.config.Log.Info("Stopping testctl")

	if !c.running.Load() {
		c.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	c.running.Store(false)
	close(c.done)

	c.config.Log.Info("testctl stopped successfully")
	return nil
}

// Stopped returns true if the testctl service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (c *controller) Stopped() bool {
	return !c.running.Load()
}

// Status returns the terminal status of the last run.
func (c *controller) Status() runner.Status {
	return c.status
}

// Summary returns the artifact summary of the last run.
func (c *controller) Summary() *results.Summary {
	return c.summary
}
