package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "TESTCTL"

var (
	Mode = &cli.StringFlag{
		Name:     "mode",
		Value:    "",
		Required: true,
		EnvVars:  opservice.PrefixEnvVar(EnvVarPrefix, "MODE"),
		Usage:    "Test mode to run (all|sim|syn|cov|parallel|fast|testbench)",
	}
	Testbench = &cli.StringFlag{
		Name:    "testbench",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TESTBENCH"),
		Usage:   "Testbench name for mode=testbench (eg. 'tb_jtag_controller')",
	}
	AutoReport = &cli.BoolFlag{
		Name:    "auto-report",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "AUTO_REPORT"),
		Usage:   "Generate the HTML report automatically after the run",
	}
	BuildTool = &cli.StringFlag{
		Name:    "build-tool",
		Value:   "make",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BUILD_TOOL"),
		Usage:   "Build tool invoked with the run targets",
	}
	ProjectRoot = &cli.StringFlag{
		Name:    "project-root",
		Value:   ".",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PROJECT_ROOT"),
		Usage:   "Root of the verification project (where the build tool runs)",
	}
	ResultsDir = &cli.StringFlag{
		Name:    "results-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RESULTS_DIR"),
		Usage:   "Results directory to scan (default: <project-root>/results)",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
		Usage:   "Directory to store per-run console logs",
	}
	TestbenchConfig = &cli.StringFlag{
		Name:    "testbench-config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TESTBENCH_CONFIG"),
		Usage:   "YAML file overriding the built-in testbench registry",
	}
	Export = &cli.StringFlag{
		Name:    "export",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "EXPORT"),
		Usage:   "Write the run summary as JSON to this path after the run",
	}
)

var requiredFlags = []cli.Flag{
	Mode,
}

var optionalFlags = []cli.Flag{
	Testbench,
	AutoReport,
	BuildTool,
	ProjectRoot,
	ResultsDir,
	LogDir,
	TestbenchConfig,
	Export,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
