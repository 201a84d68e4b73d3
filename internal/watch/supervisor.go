// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
)

// ErrInvalidSupervisor is returned by New when a required field is missing.
var ErrInvalidSupervisor = errors.New("invalid watch supervisor")

// Supervisor states, reported through Config.OnState.
const (
	StateIdle State = iota
	StateRunning
	StateQueued
	StateCancelling
	StateCatching
)

type (
	// State is a step of the supervision loop.
	State int

	// ExecuteFunc runs the watched command tree. capture is nil when there is no
	// catch step.
	ExecuteFunc func(ctx context.Context, overlay map[string]string, capture *output.Capture) error

	// CatchFunc runs the recovery step of a failed run.
	CatchFunc func(ctx context.Context, overlay map[string]string) error

	// Config configures a Supervisor.
	Config struct {
		// Name is the watched command, used in logs.
		Name    string
		Poller  Poller
		Execute ExecuteFunc
		// Catch is optional.
		Catch CatchFunc
		// Cancel kills the run in flight when a new change arrives.
		Cancel bool
		// Dedupe drops a change whose non-empty ID equals the previous one.
		Dedupe bool
		// InitialRun runs the command once before the first change.
		InitialRun bool
		Logger     *log.Logger
		// OnState, when set, observes every transition. StateCatching is reported
		// from the run's goroutine; OnState must not block.
		OnState func(State, Change)
	}

	// Supervisor loops trigger, run and catch until its context ends.
	Supervisor struct {
		cfg    Config
		logger *log.Logger
	}

	inflight struct {
		change Change
		cancel context.CancelFunc
		done   chan struct{}
	}
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateQueued:
		return "queued"
	case StateCancelling:
		return "cancelling"
	case StateCatching:
		return "catching"
	default:
		return "unknown"
	}
}

// New validates cfg.
func New(cfg Config) (*Supervisor, error) {
	if cfg.Poller == nil || cfg.Execute == nil {
		return nil, ErrInvalidSupervisor
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Supervisor{cfg: cfg, logger: logger}, nil
}

// Run supervises until ctx is cancelled, which returns nil. A poller failure stops
// the current run and is returned.
func (s *Supervisor) Run(ctx context.Context) error {
	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	changes := make(chan Change, 1)
	pollErr := make(chan error, 1)
	go s.poll(pollCtx, changes, pollErr)

	var (
		current  *inflight
		pending  *Change
		last     Change
		haveLast bool
	)
	stop := func() {
		if current != nil {
			s.state(StateCancelling, current.change)
			current.cancel()
			<-current.done
			current = nil
		}
	}
	defer stop()

	if s.cfg.InitialRun {
		current = s.start(ctx, Change{})
	}

	for {
		var done chan struct{}
		if current != nil {
			done = current.done
		}

		select {
		case <-ctx.Done():
			return nil

		case err := <-pollErr:
			return err

		case change := <-changes:
			if s.cfg.Dedupe && change.ID != "" && haveLast && change.ID == last.ID {
				s.logger.Debug("dropping unchanged trigger", "command", s.cfg.Name, "changed", change.ID)
				continue
			}
			last, haveLast = change, true
			s.logger.Debug("trigger fired", "command", s.cfg.Name, "changed", change.ID)

			switch {
			case current == nil:
				current = s.start(ctx, change)
			case s.cfg.Cancel:
				s.logger.Debug("cancelling run in flight", "command", s.cfg.Name)
				stop()
				current = s.start(ctx, change)
			default:
				pending = &change
				s.state(StateQueued, change)
			}

		case <-done:
			current = nil
			if pending != nil {
				current = s.start(ctx, *pending)
				pending = nil
			} else {
				s.state(StateIdle, Change{})
			}
		}
	}
}

func (s *Supervisor) poll(ctx context.Context, changes chan Change, pollErr chan<- error) {
	for {
		change, err := s.cfg.Poller.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil {
				pollErr <- err
			}
			return
		}
		offer(changes, change)
	}
}

func (s *Supervisor) start(ctx context.Context, change Change) *inflight {
	runCtx, cancel := context.WithCancel(ctx)
	f := &inflight{change: change, cancel: cancel, done: make(chan struct{})}
	s.state(StateRunning, change)
	go func() {
		defer close(f.done)
		defer cancel()
		s.runOnce(runCtx, change)
	}()
	return f
}

// runOnce executes the watched tree and, when it fails, the catch step.
func (s *Supervisor) runOnce(ctx context.Context, change Change) {
	overlay := map[string]string{runtime.EnvChanged: change.ID}
	var capture *output.Capture
	if s.cfg.Catch != nil {
		capture = &output.Capture{}
	}

	err := s.cfg.Execute(ctx, overlay, capture)
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		s.logger.Debug("run succeeded", "command", s.cfg.Name)
		return
	}
	s.logger.Error("run failed", "command", s.cfg.Name, "err", err)
	if s.cfg.Catch == nil {
		return
	}

	s.state(StateCatching, change)
	catchOverlay := map[string]string{
		runtime.EnvChanged:    change.ID,
		runtime.EnvError:      capture.Stripped(),
		runtime.EnvErrorColor: capture.Raw(),
	}
	if err := s.cfg.Catch(ctx, catchOverlay); err != nil && ctx.Err() == nil {
		s.logger.Error("catch failed", "command", s.cfg.Name, "err", err)
	}
}

func (s *Supervisor) state(st State, change Change) {
	if s.cfg.OnState != nil {
		s.cfg.OnState(st, change)
	}
}
