// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/rfilerunner/rfile/internal/runtime"
)

// Exit codes owned by the CLI. Execution failures exit with the child's code.
const (
	// ExitCodeError covers load, configuration and internal errors.
	ExitCodeError runtime.ExitCode = 1
	// ExitCodeUsage covers resolution and argument errors.
	ExitCodeUsage runtime.ExitCode = 2
	// ExitCodeInterrupted is returned when a single run is interrupted.
	ExitCodeInterrupted runtime.ExitCode = 130
)

// ErrUsage is the sentinel wrapped by UsageError.
var ErrUsage = errors.New("usage error")

type (
	// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
	// A nil Err exits silently.
	ExitError struct {
		Code runtime.ExitCode
		Err  error
	}

	// UsageError reports a command line that could not be parsed.
	UsageError struct {
		Err error
	}
)

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns ErrUsage and the parse error.
func (e *UsageError) Unwrap() []error { return []error{ErrUsage, e.Err} }

// exitCodeOf maps an error returned by the root command to the process exit code.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	if errors.Is(err, ErrUsage) {
		return int(ExitCodeUsage)
	}
	return int(ExitCodeError)
}
