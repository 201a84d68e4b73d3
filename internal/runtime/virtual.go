// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runVirtual parses the body and runs it in-process with mvdan/sh. External programs
// the script calls are still spawned, through the interpreter's exec handler.
func (r *Runner) runVirtual(ctx context.Context, req *Request) *Result {
	script := ShellPreamble(r.verbose) + req.Body
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), req.Name)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse script: %w", err))
	}

	env := r.env.Build(req.Args, req.Overlay)
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(env)...)),
		interp.StdIO(r.stdin, req.Output, req.Output),
		interp.ExecHandlers(r.logExec(req.Name)),
	}
	if req.Dir != "" {
		opts = append(opts, interp.Dir(req.Dir))
	}
	// "--" ends option parsing, so values such as "-v" stay positional parameters.
	if pos := req.Args.Positional(); len(pos) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, pos...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	r.logger.Debug("spawn", "command", req.Name, "interpreter", "virtual", "dir", req.Dir)
	err = runner.Run(ctx, prog)
	if err == nil {
		return NewSuccessResult()
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return NewExitCodeResult(ExitCode(status))
	}
	if isCancellation(err) {
		return NewCancelledResult()
	}
	return NewErrorResult(1, err)
}

// logExec logs every external program the virtual interpreter starts.
func (r *Runner) logExec(name string) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			r.logger.Debug("exec", "command", name, "argv", args)
			return next(ctx, args)
		}
	}
}
