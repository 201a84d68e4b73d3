// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"
)

// runPTY runs cmd attached to a pseudo-terminal and copies everything it prints to
// req.Output. It reports false when the pseudo-terminal could not be started; the
// caller then retries with pipes on a fresh command.
func (r *Runner) runPTY(cmd *exec.Cmd, req *Request) (*Result, bool) {
	// pty.Start puts the child in a new session, which also makes it a process group
	// leader. Setpgid must stay unset or setsid fails with EPERM.
	tty, err := pty.Start(cmd)
	if err != nil {
		r.logger.Debug("pty unavailable, using pipes", "command", req.Name, "error", err)
		return nil, false
	}
	defer func() { _ = tty.Close() }()

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// Reading the master after the child exits ends with EIO on Linux.
		_, _ = io.Copy(req.Output, tty)
	}()

	waitErr := cmd.Wait()
	select {
	case <-copied:
	case <-time.After(defaultWaitDelay):
		// A background grandchild still holds the terminal open.
		_ = tty.Close()
		<-copied
	}
	return r.finish(req, waitErr), true
}
