// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"os"
	"os/exec"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

// runNative runs the body under an external interpreter.
func (r *Runner) runNative(ctx context.Context, req *Request, interp rfile.Interpreter) *Result {
	path, err := r.resolvePath(interp)
	if err != nil {
		return NewErrorResult(1, err)
	}

	script, err := r.writeScript(req.Name, r.preamble(interp.Kind, req.Args), req.Body)
	if err != nil {
		return NewErrorResult(1, err)
	}
	defer func() { _ = os.Remove(script) }()

	args := []string{script}
	if interp.ReceivesPositionalArgs() {
		args = append(args, req.Args.Positional()...)
	}

	env := EnvToSlice(r.env.Build(req.Args, req.Overlay))
	newCmd := func() *exec.Cmd {
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Dir = req.Dir
		cmd.Env = env
		cmd.Cancel = func() error { return killProcessGroup(cmd) }
		cmd.WaitDelay = defaultWaitDelay
		return cmd
	}
	r.logger.Debug("spawn", "command", req.Name, "argv", append([]string{path}, args...), "dir", req.Dir)

	if r.pty {
		if result, ok := r.runPTY(newCmd(), req); ok {
			return result
		}
	}

	cmd := newCmd()
	setProcessGroup(cmd)
	// One writer for both streams: exec shares a single pipe and keeps their order.
	cmd.Stdout = req.Output
	cmd.Stderr = req.Output
	cmd.Stdin = r.stdin

	return r.finish(req, cmd.Run())
}

func (r *Runner) finish(req *Request, err error) *Result {
	result := extractExitCode(err)
	r.logger.Debug("exit", "command", req.Name, "code", result.ExitCode, "error", result.Error)
	return result
}
