// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

type (
	// Runner runs a single body. *runtime.Runner implements it.
	Runner interface {
		Run(ctx context.Context, req *runtime.Request) *runtime.Result
	}

	// Request is one command to execute together with its dependencies.
	Request struct {
		Spec *rfile.CommandSpec
		// Args are bound for Spec only. Dependencies are bound with nothing supplied.
		Args rfile.BoundArgs
		// Overlay is applied to every process of the tree.
		Overlay map[string]string
		// Capture, when set, records the combined output of every process of the tree.
		Capture *output.Capture
		// Lane prefixes the output. The zero Lane runs unprefixed.
		Lane output.Lane
	}

	// Executor walks dependency trees of one manifest. It is safe for concurrent use.
	Executor struct {
		manifest *rfile.Manifest
		runner   Runner
		sink     *output.Sink
		logger   *log.Logger
		dir      string
	}

	// Option configures an Executor.
	Option func(*Executor)

	// executionStackKey carries the names of the commands currently executing on the
	// path from the root request.
	executionStackKey struct{}
)

// WithLogger sets the logger used for dependency progress.
func WithLogger(logger *log.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithDir sets the working directory of every process. It defaults to the
// manifest's directory.
func WithDir(dir string) Option {
	return func(e *Executor) { e.dir = dir }
}

// New creates an Executor for manifest.
func New(manifest *rfile.Manifest, runner Runner, sink *output.Sink, opts ...Option) *Executor {
	e := &Executor{
		manifest: manifest,
		runner:   runner,
		sink:     sink,
		logger:   log.New(io.Discard),
		dir:      manifest.Dir(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Manifest returns the manifest the executor runs commands from.
func (e *Executor) Manifest() *rfile.Manifest { return e.manifest }

// Dir returns the working directory of every process.
func (e *Executor) Dir() string { return e.dir }

// Execute runs req.Spec after its dependencies. It returns nil on success, a
// *CommandFailedError for the first failing process, a *MissingDependencyError for a
// dangling `dep:` and the context error when ctx was cancelled.
func (e *Executor) Execute(ctx context.Context, req Request) error {
	spec := req.Spec
	stack, _ := ctx.Value(executionStackKey{}).([]string)
	if slices.Contains(stack, spec.Name) {
		return &RecursionError{Path: append(slices.Clone(stack), spec.Name)}
	}
	ctx = context.WithValue(ctx, executionStackKey{}, append(slices.Clone(stack), spec.Name))

	if len(spec.Deps) > 0 {
		var err error
		if spec.Parallel {
			err = e.runParallel(ctx, spec, req)
		} else {
			err = e.runSequential(ctx, spec, req)
		}
		if err != nil {
			return err
		}
	}

	if spec.IsEmpty() {
		return nil
	}
	return e.runBody(ctx, req)
}

func (e *Executor) runSequential(ctx context.Context, spec *rfile.CommandSpec, req Request) error {
	for _, name := range spec.Deps {
		if err := ctx.Err(); err != nil {
			return err
		}
		dep, err := e.depRequest(spec, name, req, req.Lane)
		if err != nil {
			return err
		}
		e.logger.Debug("running dependency", "command", spec.Name, "dep", name)
		if err := e.Execute(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

// runParallel starts every dependency and waits for all of them, whatever the
// outcome. The group has no shared context so one failure does not cancel siblings.
func (e *Executor) runParallel(ctx context.Context, spec *rfile.CommandSpec, req Request) error {
	lanes := output.Lanes(spec.Deps)
	var g errgroup.Group
	for i, name := range spec.Deps {
		g.Go(func() error {
			dep, err := e.depRequest(spec, name, req, lanes[i])
			if err != nil {
				return err
			}
			e.logger.Debug("running parallel dependency", "command", spec.Name, "dep", name)
			return e.Execute(ctx, dep)
		})
	}
	err := g.Wait()
	if err != nil {
		e.logger.Debug("parallel dependencies failed", "command", spec.Name, "err", err)
	}
	return err
}

func (e *Executor) depRequest(parent *rfile.CommandSpec, name string, req Request, lane output.Lane) (Request, error) {
	spec, ok := e.manifest.Lookup(name)
	if !ok {
		return Request{}, &MissingDependencyError{Command: parent.Name, Dependency: name}
	}
	args, err := rfile.Bind(spec, nil)
	if err != nil {
		return Request{}, fmt.Errorf("binding arguments of '%s': %w", name, err)
	}
	return Request{
		Spec:    spec,
		Args:    args,
		Overlay: req.Overlay,
		Capture: req.Capture,
		Lane:    lane,
	}, nil
}

func (e *Executor) runBody(ctx context.Context, req Request) error {
	spec := req.Spec
	w := e.sink.WriterFor(req.Lane)
	var out io.Writer = w
	var captured *output.LineWriter
	if req.Capture != nil {
		captured = req.Capture.Lines()
		out = io.MultiWriter(w, captured)
	}

	result := e.runner.Run(ctx, &runtime.Request{
		Name:        spec.Name,
		Body:        spec.Body,
		Interpreter: spec.Interpreter,
		Args:        req.Args,
		Overlay:     req.Overlay,
		Dir:         e.dir,
		Output:      out,
	})
	if err := w.Flush(); err != nil {
		e.logger.Debug("flushing output failed", "command", spec.Name, "err", err)
	}
	if captured != nil {
		_ = captured.Flush()
	}

	switch {
	case result.Cancelled:
		e.logger.Debug("command cancelled", "command", spec.Name)
		if err := ctx.Err(); err != nil {
			return err
		}
		return context.Canceled
	case result.Success():
		return nil
	default:
		return &CommandFailedError{Command: spec.Name, Code: result.FailureCode(), Err: result.Error}
	}
}
