// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

// defaultWaitDelay bounds how long Wait keeps draining output after the process
// group was killed.
const defaultWaitDelay = 2 * time.Second

type (
	// Request describes one body to run.
	Request struct {
		// Name labels the run in logs and temp script names.
		Name        string
		Body        string
		Interpreter rfile.Interpreter
		Args        rfile.BoundArgs
		// Overlay is applied last to the environment.
		Overlay map[string]string
		// Dir is the working directory; empty means the current directory.
		Dir string
		// Output receives stdout and stderr combined. Nil discards output.
		Output io.Writer
	}

	// Runner executes Requests. It is safe for concurrent use.
	Runner struct {
		defaultShell string
		python       string
		verbose      bool
		pty          bool
		stdin        io.Reader
		tempDir      string
		logger       *log.Logger
		env          *EnvBuilder
		lookPath     func(string) (string, error)
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithDefaultShell sets the interpreter used when a command has no `shell:`
// directive. "virtual" selects the embedded interpreter.
func WithDefaultShell(shell string) Option {
	return func(r *Runner) { r.defaultShell = shell }
}

// WithPython sets the executable used for python-like interpreters.
func WithPython(python string) Option {
	return func(r *Runner) { r.python = python }
}

// WithVerbose makes shell scripts trace their commands (`set -ex`).
func WithVerbose(verbose bool) Option {
	return func(r *Runner) { r.verbose = verbose }
}

// WithPTY runs external children on a pseudo-terminal so they keep colour output.
// It falls back to pipes where pseudo-terminals are unavailable.
func WithPTY(enabled bool) Option {
	return func(r *Runner) { r.pty = enabled }
}

// WithStdin sets the stdin of children started without a pseudo-terminal.
func WithStdin(stdin io.Reader) Option {
	return func(r *Runner) { r.stdin = stdin }
}

// WithTempDir sets where temp scripts are written.
func WithTempDir(dir string) Option {
	return func(r *Runner) { r.tempDir = dir }
}

// WithLogger sets the logger for spawn and exit details.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithEnvBuilder replaces the environment builder.
func WithEnvBuilder(b *EnvBuilder) Option {
	return func(r *Runner) { r.env = b }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:   log.New(io.Discard),
		env:      NewEnvBuilder(),
		lookPath: lookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Verbose reports whether tracing is on.
func (r *Runner) Verbose() bool { return r.verbose }

// Run executes req and blocks until it finishes or ctx is cancelled. Cancellation
// kills the whole process group and yields a Result with Cancelled set.
func (r *Runner) Run(ctx context.Context, req *Request) *Result {
	if err := ctx.Err(); err != nil {
		return NewCancelledResult()
	}
	if req.Output == nil {
		req.Output = io.Discard
	}

	interp := req.Interpreter
	if interp.IsDefault() {
		resolved, err := r.resolveDefaultShell()
		if err != nil {
			return NewErrorResult(1, err)
		}
		interp = resolved
	}

	var result *Result
	if interp.Kind == rfile.InterpreterVirtual {
		result = r.runVirtual(ctx, req)
	} else {
		result = r.runNative(ctx, req, interp)
	}
	if ctx.Err() != nil && !result.Success() {
		r.logger.Debug("run cancelled", "command", req.Name)
		return NewCancelledResult()
	}
	return result
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
