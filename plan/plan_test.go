package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTestbenchSet map[string]bool

func (s fakeTestbenchSet) IsKnown(name string) bool { return s[name] }

var knownTestbenches = fakeTestbenchSet{
	"tb_jtag_controller": true,
	"tb_top_module":      true,
}

func TestBuildModeTable(t *testing.T) {
	builder := NewBuilder("make", knownTestbenches)

	tests := []struct {
		mode   Mode
		target string
	}{
		{ModeAll, "all"},
		{ModeSim, "sim"},
		{ModeSyn, "syn"},
		{ModeCov, "cov"},
		{ModeParallel, "parallel-all"},
		{ModeFast, "fast-build"},
	}

	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			p, err := builder.Build(tc.mode, "", false)
			require.NoError(t, err)
			require.Len(t, p.Commands, 1)
			assert.Equal(t, CommandSpec{"make", tc.target}, p.Commands[0])
			assert.Equal(t, tc.mode, p.Mode)
		})
	}
}

func TestBuildIndividualTestbench(t *testing.T) {
	builder := NewBuilder("make", knownTestbenches)

	p, err := builder.Build(ModeTestbench, "tb_jtag_controller", false)
	require.NoError(t, err)
	require.Len(t, p.Commands, 1)
	assert.Equal(t, CommandSpec{"make", "sim-tb_jtag_controller"}, p.Commands[0])
}

func TestBuildAutoReportAppendsReportCommand(t *testing.T) {
	builder := NewBuilder("make", knownTestbenches)

	for _, mode := range []Mode{ModeAll, ModeSim, ModeSyn, ModeCov, ModeParallel, ModeFast} {
		for _, autoReport := range []bool{true, false} {
			p, err := builder.Build(mode, "", autoReport)
			require.NoError(t, err)

			last := p.Commands[len(p.Commands)-1]
			if autoReport {
				assert.Equal(t, CommandSpec{"make", "html-report"}, last,
					"mode %s with auto-report must end with the report command", mode)
			} else {
				assert.NotEqual(t, CommandSpec{"make", "html-report"}, last,
					"mode %s without auto-report must not end with the report command", mode)
			}
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := NewBuilder("make", knownTestbenches)

	first, err := builder.Build(ModeTestbench, "tb_top_module", true)
	require.NoError(t, err)
	second, err := builder.Build(ModeTestbench, "tb_top_module", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildInvalidCombinations(t *testing.T) {
	builder := NewBuilder("make", knownTestbenches)

	tests := []struct {
		name      string
		mode      Mode
		testbench string
	}{
		{"unknown mode", Mode("bogus"), ""},
		{"empty mode", Mode(""), ""},
		{"testbench mode without name", ModeTestbench, ""},
		{"testbench mode with unknown name", ModeTestbench, "tb_nonexistent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.Build(tc.mode, tc.testbench, false)
			require.Error(t, err)

			var invalidErr *InvalidModeError
			require.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, tc.mode, invalidErr.Mode)
		})
	}
}

func TestBuildTestbenchWithoutSet(t *testing.T) {
	builder := NewBuilder("make", nil)

	_, err := builder.Build(ModeTestbench, "tb_top_module", false)
	var invalidErr *InvalidModeError
	require.True(t, errors.As(err, &invalidErr))
}

func TestBuildDefaultTool(t *testing.T) {
	builder := NewBuilder("", nil)

	p, err := builder.Build(ModeSim, "", false)
	require.NoError(t, err)
	assert.Equal(t, CommandSpec{DefaultTool, "sim"}, p.Commands[0])
}

func TestMaintenanceCommands(t *testing.T) {
	builder := NewBuilder("make", nil)

	assert.Equal(t, CommandSpec{"make", "html-report-open"}, builder.Report())
	assert.Equal(t, CommandSpec{"make", "clean"}, builder.Clean())
	assert.Equal(t, CommandSpec{"make", "check-env"}, builder.CheckEnv())
}

func TestModeValidation(t *testing.T) {
	for _, mode := range ValidModes() {
		assert.True(t, mode.IsValid(), "mode %s should be valid", mode)
	}
	assert.False(t, Mode("invalid").IsValid())
	assert.False(t, Mode("").IsValid())
}
