package testctl

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/muditbhargava66/jtag-testctl/flags"
	"github.com/muditbhargava66/jtag-testctl/plan"
)

// Config holds the application configuration
type Config struct {
	Mode            plan.Mode
	Testbench       string // Testbench name for mode=testbench
	AutoReport      bool   // Append the report command to every run plan
	BuildTool       string // Build tool invoked with the run targets
	ProjectRoot     string // Where the build tool runs
	ResultsDir      string // Directory scanned for result artifacts
	LogDir          string // Directory for per-run console logs
	TestbenchConfig string // Optional YAML testbench registry override
	ExportFile      string // If set, write the run summary here as JSON
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, modeStr string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	mode := plan.Mode(modeStr)
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid mode %q, must be one of %v", modeStr, plan.ValidModes())
	}

	projectRoot, err := filepath.Abs(ctx.String(flags.ProjectRoot.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for project root: %w", err)
	}

	resultsDir := ctx.String(flags.ResultsDir.Name)
	if resultsDir == "" {
		resultsDir = filepath.Join(projectRoot, "results")
	}
	resultsDir, err = filepath.Abs(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for results directory: %w", err)
	}

	logDir, err := filepath.Abs(ctx.String(flags.LogDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory: %w", err)
	}

	return &Config{
		Mode:            mode,
		Testbench:       ctx.String(flags.Testbench.Name),
		AutoReport:      ctx.Bool(flags.AutoReport.Name),
		BuildTool:       ctx.String(flags.BuildTool.Name),
		ProjectRoot:     projectRoot,
		ResultsDir:      resultsDir,
		LogDir:          logDir,
		TestbenchConfig: ctx.String(flags.TestbenchConfig.Name),
		ExportFile:      ctx.String(flags.Export.Name),
		Log:             log,
	}, nil
}
