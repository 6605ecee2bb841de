package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/muditbhargava66/jtag-testctl/metrics"
	"github.com/muditbhargava66/jtag-testctl/plan"
	"github.com/muditbhargava66/jtag-testctl/results"
)

// ErrAlreadyRunning is returned by Start while a previous run is still active.
var ErrAlreadyRunning = errors.New("a test run is already in progress")

// State is the lifecycle state of the supervisor.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelling
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Status is a snapshot of the supervisor state. CommandIndex is the plan index
// currently (or last) executed; ExitCode and Err are set for StateFailed;
// Cancelled marks a run that ended on user request.
type Status struct {
	State        State
	RunID        string
	CommandIndex int
	ExitCode     int
	Cancelled    bool
	Duration     time.Duration
	Err          error
}

// ArtifactScanner refreshes the result summary once a run reaches a terminal
// state. Satisfied by *results.Scanner.
type ArtifactScanner interface {
	Scan(resultsRoot string) *results.Summary
}

// LineObserver receives every output line, synchronously and in production
// order, while a command runs.
type LineObserver func(LogLine)

// CompletionObserver is notified once per run, after the terminal state is
// reached and the artifact summary has been refreshed.
type CompletionObserver func(Status, *results.Summary)

// Config holds the collaborators of a Supervisor.
type Config struct {
	Runner      ProcessRunner
	Scanner     ArtifactScanner
	ResultsRoot string
	Log         log.Logger
	OnLine      LineObserver
	OnComplete  CompletionObserver
}

// Supervisor owns the run state machine. It drives a plan's commands strictly
// sequentially on a background goroutine, forwards output lines to the
// observer, aborts the remaining plan on first failure or cancellation, and
// rescans artifacts on every terminal state. One run at a time.
type Supervisor struct {
	cfg    Config
	tracer trace.Tracer

	mu      sync.Mutex
	status  Status
	current Process
	cancel  bool
	done    chan struct{}
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(cfg Config) (*Supervisor, error) {
	if cfg.Runner == nil {
		return nil, errors.New("process runner is required")
	}
	if cfg.Scanner == nil {
		return nil, errors.New("artifact scanner is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Supervisor{
		cfg:    cfg,
		tracer: otel.Tracer("testctl/runner"),
		status: Status{State: StateIdle},
	}, nil
}

// Start begins executing the plan on a background goroutine. It fails with
// ErrAlreadyRunning while a run is active. An empty runID gets a fresh UUID.
func (s *Supervisor) Start(ctx context.Context, p plan.RunPlan, runID string) error {
	if len(p.Commands) == 0 {
		return errors.New("run plan is empty")
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	s.mu.Lock()
	if s.status.State == StateRunning || s.status.State == StateCancelling {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.status = Status{State: StateRunning, RunID: runID}
	s.cancel = false
	s.current = nil
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.cfg.Log.Info("Starting test run", "run_id", runID, "mode", p.Mode, "commands", len(p.Commands))

	go func() {
		defer close(done)
		s.run(ctx, p, runID)
	}()
	return nil
}

// run is the driving goroutine for one plan.
func (s *Supervisor) run(ctx context.Context, p plan.RunPlan, runID string) {
	start := time.Now()
	final := Status{State: StateCompleted, RunID: runID}

	for i, spec := range p.Commands {
		s.mu.Lock()
		cancelled := s.cancel
		s.status.CommandIndex = i
		s.mu.Unlock()
		if cancelled {
			final.State = StateCompleted
			final.Cancelled = true
			final.CommandIndex = i
			break
		}

		outcome, err := s.runCommand(ctx, spec, runID, i)
		if err != nil {
			s.cfg.Log.Error("Command failed to launch", "run_id", runID, "index", i, "err", err)
			metrics.RecordErrorDetails("command launch failed", err)
			final = Status{State: StateFailed, RunID: runID, CommandIndex: i, Err: err}
			break
		}

		s.mu.Lock()
		cancelled = s.cancel
		s.mu.Unlock()

		if cancelled || outcome.Terminated {
			s.cfg.Log.Info("Run cancelled", "run_id", runID, "index", i)
			final = Status{State: StateCompleted, RunID: runID, CommandIndex: i, Cancelled: true}
			break
		}
		if outcome.Code != 0 {
			s.cfg.Log.Warn("Command failed", "run_id", runID, "index", i, "cmd", spec.String(), "exit_code", outcome.Code)
			final = Status{State: StateFailed, RunID: runID, CommandIndex: i, ExitCode: outcome.Code}
			break
		}

		final.CommandIndex = i
	}

	final.Duration = time.Since(start)

	s.mu.Lock()
	s.status = final
	s.current = nil
	s.mu.Unlock()

	// Terminal state: reconcile on-disk artifacts exactly once, then notify.
	summary := s.cfg.Scanner.Scan(s.cfg.ResultsRoot)

	metrics.RecordRun(runID, p.Mode.String(), resultLabel(final), final.Duration, summary)
	s.cfg.Log.Info("Test run finished", "run_id", runID, "state", final.State, "cancelled", final.Cancelled)

	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete(final, summary)
	}
}

// runCommand executes a single plan entry: launch, stream lines to the
// observer, then resolve the exit outcome.
func (s *Supervisor) runCommand(ctx context.Context, spec plan.CommandSpec, runID string, index int) (ExitOutcome, error) {
	_, span := s.tracer.Start(ctx, "testctl.command",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("plan.index", index),
			attribute.String("command", spec.String()),
		))
	defer span.End()

	proc, err := s.cfg.Runner.Start(spec)
	if err != nil {
		span.RecordError(err)
		return ExitOutcome{}, err
	}

	s.mu.Lock()
	s.current = proc
	// A cancel request may have arrived between launch and registration.
	if s.cancel {
		proc.Cancel()
	}
	s.mu.Unlock()

	for line := range proc.Lines() {
		if s.cfg.OnLine != nil {
			s.cfg.OnLine(line)
		}
		metrics.RecordLine()
	}

	outcome := proc.Wait()
	span.SetAttributes(attribute.Int("exit_code", outcome.Code))

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	metrics.RecordCommand(spec.String(), outcome.Code)
	return outcome, nil
}

// RequestCancel asks the active run to stop. The signal is forwarded to the
// live process and consulted again before the next command starts. Idempotent;
// a no-op when no run is active.
func (s *Supervisor) RequestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State != StateRunning && s.status.State != StateCancelling {
		return
	}
	s.cancel = true
	s.status.State = StateCancelling
	if s.current != nil {
		s.current.Cancel()
	}
}

// Status returns a snapshot of the current state. Snapshots only ever reflect
// fully-applied transitions.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done returns a channel closed when the current (or last) run reaches its
// terminal state. Before any run it returns an already-closed channel.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

func resultLabel(st Status) string {
	switch {
	case st.Cancelled:
		return "cancelled"
	case st.State == StateFailed:
		return "fail"
	default:
		return "pass"
	}
}
