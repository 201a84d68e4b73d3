// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"
)

// extractExitCode turns the error of exec.Cmd.Run into a Result.
func extractExitCode(err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// A child killed by a signal reports -1; surface it as a generic failure.
		code := ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			return NewErrorResult(1, fmt.Errorf("%s: %w", exitErr, validateErr))
		}
		return NewExitCodeResult(code)
	}

	// The child never ran: missing binary, permission denied, bad directory.
	return NewErrorResult(1, fmt.Errorf("failed to execute command: %w", err))
}
