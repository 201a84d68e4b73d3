// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import "os/exec"

// runPTY is unavailable on Windows; output always goes through pipes.
func (r *Runner) runPTY(_ *exec.Cmd, _ *Request) (*Result, bool) {
	return nil, false
}
