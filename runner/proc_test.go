package runner

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muditbhargava66/jtag-testctl/plan"
)

func collectLines(p Process) []string {
	var lines []string
	for line := range p.Lines() {
		lines = append(lines, line.Text)
	}
	return lines
}

func TestExecRunnerStreamsMergedOutputInOrder(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	p, err := r.Start(plan.CommandSpec{"sh", "-c", "echo one; echo two >&2; echo three"})
	require.NoError(t, err)

	var lines []LogLine
	for line := range p.Lines() {
		lines = append(lines, line)
	}
	outcome := p.Wait()

	assert.Equal(t, 0, outcome.Code)
	assert.False(t, outcome.Terminated)

	require.Len(t, lines, 3)
	// stdout and stderr share one pipe, so the interleaving the tool
	// produced is what observers see.
	assert.Equal(t, []string{"one", "two", "three"}, []string{lines[0].Text, lines[1].Text, lines[2].Text})
	for i, line := range lines {
		assert.Equal(t, uint64(i), line.Seq)
	}
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	p, err := r.Start(plan.CommandSpec{"sh", "-c", "echo failing; exit 3"})
	require.NoError(t, err)

	lines := collectLines(p)
	outcome := p.Wait()

	assert.Equal(t, []string{"failing"}, lines)
	assert.Equal(t, 3, outcome.Code)
	assert.False(t, outcome.Terminated)
}

func TestExecRunnerLaunchError(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	_, err := r.Start(plan.CommandSpec{"definitely-not-a-real-binary-xyz"})
	require.Error(t, err)

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, plan.CommandSpec{"definitely-not-a-real-binary-xyz"}, launchErr.Spec)
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	_, err := r.Start(plan.CommandSpec{})
	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
}

func TestExecRunnerCancelTerminatesProcess(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	p, err := r.Start(plan.CommandSpec{"sh", "-c", "echo started; exec sleep 30"})
	require.NoError(t, err)

	// Wait for the first line so we know the process is up.
	first, ok := <-p.Lines()
	require.True(t, ok)
	assert.Equal(t, "started", first.Text)

	start := time.Now()
	p.Cancel()
	// The line stream must end once the process dies.
	for range p.Lines() {
	}
	outcome := p.Wait()

	assert.True(t, outcome.Terminated)
	assert.NotEqual(t, 0, outcome.Code)
	assert.Less(t, time.Since(start), 10*time.Second, "cancel must not wait for the sleep to finish")
}

func TestExecRunnerCancelIsIdempotent(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	p, err := r.Start(plan.CommandSpec{"sh", "-c", "exec sleep 30"})
	require.NoError(t, err)

	p.Cancel()
	p.Cancel()
	for range p.Lines() {
	}
	outcome := p.Wait()
	assert.True(t, outcome.Terminated)

	// Cancel after exit is a no-op.
	p.Cancel()
}

func TestExecRunnerWaitIsIdempotent(t *testing.T) {
	r := NewExecRunner(t.TempDir(), log.New())

	p, err := r.Start(plan.CommandSpec{"sh", "-c", "exit 7"})
	require.NoError(t, err)

	for range p.Lines() {
	}
	first := p.Wait()
	second := p.Wait()
	assert.Equal(t, first, second)
	assert.Equal(t, 7, first.Code)
}

func TestExecRunnerRunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner(dir, log.New())

	p, err := r.Start(plan.CommandSpec{"pwd"})
	require.NoError(t, err)

	lines := collectLines(p)
	outcome := p.Wait()

	require.Equal(t, 0, outcome.Code)
	require.Len(t, lines, 1)
	// TempDir may sit behind a symlink, so compare resolved paths.
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, lines[0])
}
