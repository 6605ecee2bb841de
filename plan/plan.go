// Package plan maps a selected test mode to the ordered list of build-tool
// invocations that realize it.
package plan

import (
	"fmt"
	"strings"
)

// Mode identifies what subset of the verification suite a run covers.
type Mode string

const (
	ModeAll       Mode = "all"       // simulation + synthesis + coverage
	ModeSim       Mode = "sim"       // simulation only
	ModeSyn       Mode = "syn"       // synthesis only
	ModeCov       Mode = "cov"       // coverage only
	ModeParallel  Mode = "parallel"  // parallel build of the full suite
	ModeFast      Mode = "fast"      // fast incremental build
	ModeTestbench Mode = "testbench" // a single named testbench
)

// targets maps each mode to its build-tool target. ModeTestbench is absent
// because its target is derived from the testbench name.
var targets = map[Mode]string{
	ModeAll:      "all",
	ModeSim:      "sim",
	ModeSyn:      "syn",
	ModeCov:      "cov",
	ModeParallel: "parallel-all",
	ModeFast:     "fast-build",
}

const (
	reportTarget     = "html-report"
	reportOpenTarget = "html-report-open"
	cleanTarget      = "clean"
	checkEnvTarget   = "check-env"
)

// DefaultTool is the build tool invoked when none is configured.
const DefaultTool = "make"

// IsValid returns true if the mode is one of the supported run modes.
func (m Mode) IsValid() bool {
	if m == ModeTestbench {
		return true
	}
	_, ok := targets[m]
	return ok
}

func (m Mode) String() string {
	return string(m)
}

// ValidModes returns all supported modes, for help text and validation messages.
func ValidModes() []Mode {
	return []Mode{ModeAll, ModeSim, ModeSyn, ModeCov, ModeParallel, ModeFast, ModeTestbench}
}

// CommandSpec is one external invocation: the tool followed by its arguments.
// It is a value; callers must not mutate it after a plan is built.
type CommandSpec []string

func (c CommandSpec) String() string {
	return strings.Join(c, " ")
}

// RunPlan is the ordered command list for one run. Commands execute strictly
// in slice order.
type RunPlan struct {
	Mode     Mode
	Commands []CommandSpec
}

// InvalidModeError reports a mode/testbench combination that cannot produce a plan.
type InvalidModeError struct {
	Mode      Mode
	Testbench string
	Reason    string
}

func (e *InvalidModeError) Error() string {
	if e.Testbench != "" {
		return fmt.Sprintf("invalid mode %q (testbench %q): %s", e.Mode, e.Testbench, e.Reason)
	}
	return fmt.Sprintf("invalid mode %q: %s", e.Mode, e.Reason)
}

// TestbenchSet reports whether a testbench name is part of the known suite.
type TestbenchSet interface {
	IsKnown(name string) bool
}

// Builder derives run plans for a specific build tool.
type Builder struct {
	tool        string
	testbenches TestbenchSet
}

// NewBuilder creates a Builder. An empty tool selects DefaultTool. The
// testbench set may be nil when testbench mode is never used (maintenance
// subcommands); Build then rejects ModeTestbench.
func NewBuilder(tool string, testbenches TestbenchSet) *Builder {
	if tool == "" {
		tool = DefaultTool
	}
	return &Builder{tool: tool, testbenches: testbenches}
}

// Build maps a mode (plus optional testbench) to its run plan. When autoReport
// is set, a report-generation command is appended regardless of mode. Build is
// pure: no side effects, deterministic for a given input.
func (b *Builder) Build(mode Mode, testbench string, autoReport bool) (RunPlan, error) {
	var cmds []CommandSpec

	switch {
	case mode == ModeTestbench:
		if testbench == "" {
			return RunPlan{}, &InvalidModeError{Mode: mode, Reason: "testbench name is required"}
		}
		if b.testbenches == nil || !b.testbenches.IsKnown(testbench) {
			return RunPlan{}, &InvalidModeError{Mode: mode, Testbench: testbench, Reason: "unknown testbench"}
		}
		cmds = append(cmds, CommandSpec{b.tool, "sim-" + testbench})
	case mode.IsValid():
		cmds = append(cmds, CommandSpec{b.tool, targets[mode]})
	default:
		return RunPlan{}, &InvalidModeError{Mode: mode, Reason: fmt.Sprintf("must be one of %v", ValidModes())}
	}

	if autoReport {
		cmds = append(cmds, CommandSpec{b.tool, reportTarget})
	}

	return RunPlan{Mode: mode, Commands: cmds}, nil
}

// Report is the standalone report-generation command (generates and opens the
// HTML report). Not part of any run plan.
func (b *Builder) Report() CommandSpec {
	return CommandSpec{b.tool, reportOpenTarget}
}

// Clean removes all generated results.
func (b *Builder) Clean() CommandSpec {
	return CommandSpec{b.tool, cleanTarget}
}

// CheckEnv verifies the tool environment.
func (b *Builder) CheckEnv() CommandSpec {
	return CommandSpec{b.tool, checkEnvTarget}
}
