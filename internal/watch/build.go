// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfilerunner/rfile/internal/engine"
	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

// Trigger modes for command and script triggers.
const (
	// ModePoll treats every completion of the trigger as a change.
	ModePoll Mode = "poll"
	// ModeNotify runs the trigger once for a path list and watches those paths.
	ModeNotify Mode = "notify"
)

// ErrNotWatched is returned by ForCommand for a command without `watch:`.
var ErrNotWatched = errors.New("command has no watch directive")

type (
	// Mode selects how command and script triggers produce changes.
	Mode string

	// Options tune a supervisor built by ForCommand.
	Options struct {
		Mode Mode
		// PollInterval paces command and script probes in poll mode.
		PollInterval time.Duration
		// Debounce and Ignore apply in notify mode.
		Debounce   time.Duration
		Ignore     []string
		Dedupe     bool
		InitialRun bool
		Logger     *log.Logger
		Clock      Clock
	}
)

// ForCommand builds the supervisor of req.Spec. Runs go through ex; trigger commands
// run through a second executor on the same runner whose output is only captured.
func ForCommand(ex *engine.Executor, runner engine.Runner, req engine.Request, opts Options) (*Supervisor, error) {
	spec := req.Spec
	if spec.Watch == nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrNotWatched)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	poller, err := newPoller(ex, runner, spec, opts, logger)
	if err != nil {
		return nil, err
	}

	execute := func(ctx context.Context, overlay map[string]string, capture *output.Capture) error {
		run := req
		run.Overlay = merge(req.Overlay, overlay)
		run.Capture = capture
		return ex.Execute(ctx, run)
	}

	var catch CatchFunc
	if spec.Catch != "" {
		catch = NewCatch(ex, spec, req.Overlay)
	}

	return New(Config{
		Name:       spec.Name,
		Poller:     poller,
		Execute:    execute,
		Catch:      catch,
		Cancel:     spec.Cancel,
		Dedupe:     opts.Dedupe,
		InitialRun: opts.InitialRun,
		Logger:     logger,
		OnState: func(st State, change Change) {
			logger.Debug("watch state", "command", spec.Name, "state", st, "changed", change.ID)
		},
	})
}

func newPoller(ex *engine.Executor, runner engine.Runner, spec *rfile.CommandSpec, opts Options, logger *log.Logger) (Poller, error) {
	trigger := spec.Watch.Trigger
	var probe ProbeFunc
	switch trigger.Kind {
	case rfile.TriggerInterval:
		return &IntervalPoller{Interval: trigger.Interval, Clock: opts.Clock}, nil
	case rfile.TriggerCommand:
		target, ok := ex.Manifest().Lookup(trigger.Command)
		if !ok {
			return nil, &engine.MissingDependencyError{Command: spec.Name, Dependency: trigger.Command}
		}
		quiet := engine.New(ex.Manifest(), runner, output.NewSink(io.Discard),
			engine.WithDir(ex.Dir()), engine.WithLogger(logger))
		probe = CommandProbe(quiet, target)
	case rfile.TriggerScript:
		probe = ScriptProbe(runner, spec, trigger.Script, ex.Dir())
	default:
		return nil, fmt.Errorf("%s: unknown watch trigger %q", spec.Name, spec.Watch.Raw)
	}

	if opts.Mode == ModeNotify {
		return &NotifyPoller{
			Probe:    probe,
			BaseDir:  ex.Dir(),
			Ignore:   opts.Ignore,
			Debounce: opts.Debounce,
			Logger:   logger,
		}, nil
	}
	return &ProbePoller{Probe: probe, Pace: opts.PollInterval, Clock: opts.Clock, Logger: logger}, nil
}

// CommandProbe runs target and its dependencies through ex and returns what they
// printed.
func CommandProbe(ex *engine.Executor, target *rfile.CommandSpec) ProbeFunc {
	return func(ctx context.Context) (string, error) {
		args, err := rfile.Bind(target, nil)
		if err != nil {
			return "", err
		}
		capture := &output.Capture{}
		if err := ex.Execute(ctx, engine.Request{Spec: target, Args: args, Capture: capture}); err != nil {
			return "", err
		}
		return capture.Stripped(), nil
	}
}

// ScriptProbe runs script under the interpreter of the watched command.
func ScriptProbe(runner engine.Runner, watched *rfile.CommandSpec, script, dir string) ProbeFunc {
	return func(ctx context.Context) (string, error) {
		capture := &output.Capture{}
		result := runner.Run(ctx, &runtime.Request{
			Name:        watched.Name + "-watch",
			Body:        script,
			Interpreter: watched.Interpreter,
			Dir:         dir,
			Output:      capture,
		})
		switch {
		case result.Cancelled:
			return "", context.Canceled
		case result.Error != nil:
			return "", result.Error
		case !result.Success():
			return "", fmt.Errorf("watch script exited with code %d", result.ExitCode)
		}
		return capture.Stripped(), nil
	}
}

// NewCatch returns the recovery step of spec: the command named by `catch:` when
// the manifest has one, otherwise the text run as a script under spec's interpreter.
func NewCatch(ex *engine.Executor, spec *rfile.CommandSpec, base map[string]string) CatchFunc {
	target, named := ex.Manifest().Lookup(spec.Catch)
	if !named {
		target = &rfile.CommandSpec{
			Name:        spec.Name + "-catch",
			Body:        spec.Catch,
			Interpreter: spec.Interpreter,
		}
	}
	return func(ctx context.Context, overlay map[string]string) error {
		args, err := rfile.Bind(target, nil)
		if err != nil {
			return err
		}
		return ex.Execute(ctx, engine.Request{Spec: target, Args: args, Overlay: merge(base, overlay)})
	}
}

func merge(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}
