// Package runner executes build-tool commands and supervises run plans.
package runner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/muditbhargava66/jtag-testctl/plan"
)

const (
	// DefaultGracePeriod is how long Cancel waits after SIGTERM before
	// escalating to SIGKILL.
	DefaultGracePeriod = 5 * time.Second

	// lineChanBuffer decouples the child's output bursts from observer
	// delivery without reordering anything.
	lineChanBuffer = 256

	maxLineBytes = 1024 * 1024
)

// LogLine is one line of merged stdout+stderr output, tagged with a monotonic
// per-process sequence index.
type LogLine struct {
	Seq  uint64
	Text string
}

// ExitOutcome is the terminal result of one external command. A nonzero Code
// is not an error; interpreting it is the supervisor's job. Terminated is set
// when the process ended after a cancellation request.
type ExitOutcome struct {
	Code       int
	Terminated bool
}

// LaunchError reports a command that could not be spawned at all.
type LaunchError struct {
	Spec plan.CommandSpec
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Spec.String(), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Process is the handle to one live external command. Lines yields output in
// production order and is closed once the child's streams are drained. Wait
// blocks until exit and reaps the process exactly once; it is safe to call
// from a different goroutine than the one consuming Lines. Cancel is
// idempotent and a no-op after natural exit.
type Process interface {
	Lines() <-chan LogLine
	Cancel()
	Wait() ExitOutcome
}

// ProcessRunner launches external commands.
type ProcessRunner interface {
	Start(spec plan.CommandSpec) (Process, error)
}

// ExecRunner runs commands via os/exec with merged stdout/stderr streaming.
type ExecRunner struct {
	workDir string
	log     log.Logger
	grace   time.Duration
}

var _ ProcessRunner = &ExecRunner{}

// NewExecRunner creates an ExecRunner that launches commands in workDir.
func NewExecRunner(workDir string, logger log.Logger) *ExecRunner {
	if logger == nil {
		logger = log.New()
	}
	return &ExecRunner{
		workDir: workDir,
		log:     logger,
		grace:   DefaultGracePeriod,
	}
}

// Start spawns the command. Both stdout and stderr are merged into a single
// pipe so observers see the same interleaving the tool produced. Returns a
// LaunchError if the executable cannot be found or spawned.
func (r *ExecRunner) Start(spec plan.CommandSpec) (Process, error) {
	if len(spec) == 0 {
		return nil, &LaunchError{Spec: spec, Err: errors.New("empty command")}
	}

	cmd := exec.Command(spec[0], spec[1:]...)
	cmd.Dir = r.workDir

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Spec: spec, Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, &LaunchError{Spec: spec, Err: err}
	}
	// The child holds its own copy of the write end; closing ours makes the
	// read side hit EOF when the child exits.
	_ = pw.Close()

	r.log.Debug("Started command", "cmd", spec.String(), "pid", cmd.Process.Pid)

	p := &process{
		cmd:    cmd,
		lines:  make(chan LogLine, lineChanBuffer),
		exited: make(chan struct{}),
		grace:  r.grace,
		log:    r.log,
	}
	go p.scan(pr)
	return p, nil
}

type process struct {
	cmd    *exec.Cmd
	lines  chan LogLine
	exited chan struct{}
	grace  time.Duration
	log    log.Logger

	cancelled  atomic.Bool
	cancelOnce sync.Once
	waitOnce   sync.Once
	outcome    ExitOutcome
}

// scan produces the line sequence. It runs until the pipe hits EOF, which
// happens once the child has exited and all buffered output is drained.
func (p *process) scan(r *os.File) {
	defer close(p.lines)
	defer func() { _ = r.Close() }()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var seq uint64
	for sc.Scan() {
		p.lines <- LogLine{Seq: seq, Text: sc.Text()}
		seq++
	}
	if err := sc.Err(); err != nil {
		p.log.Warn("Output stream ended abnormally", "pid", p.cmd.Process.Pid, "err", err)
	}
}

func (p *process) Lines() <-chan LogLine {
	return p.lines
}

// Cancel requests termination: SIGTERM first, SIGKILL after the grace period
// if the process is still alive. Safe to call repeatedly and after exit.
func (p *process) Cancel() {
	p.cancelled.Store(true)
	p.cancelOnce.Do(func() {
		if p.cmd.Process == nil {
			return
		}
		// Signaling an already-reaped process just returns an error.
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
		go func() {
			select {
			case <-p.exited:
			case <-time.After(p.grace):
				_ = p.cmd.Process.Kill()
			}
		}()
	})
}

// Wait blocks until the process exits and reaps it exactly once. Subsequent
// calls return the recorded outcome.
func (p *process) Wait() ExitOutcome {
	p.waitOnce.Do(func() {
		defer close(p.exited)

		err := p.cmd.Wait()
		code := 0
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else {
				code = -1
			}
		}
		p.outcome = ExitOutcome{
			Code:       code,
			Terminated: p.cancelled.Load(),
		}
	})
	return p.outcome
}
