// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rfilerunner/rfile/internal/runtime"
)

// Exit codes for failures that did not come from a child process.
const (
	ExitCodeInternal   runtime.ExitCode = 1
	ExitCodeResolution runtime.ExitCode = 2
)

var (
	// ErrMissingDependency is the sentinel wrapped by MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrCommandFailed is the sentinel wrapped by CommandFailedError.
	ErrCommandFailed = errors.New("command failed")
	// ErrRecursion is the sentinel wrapped by RecursionError.
	ErrRecursion = errors.New("command re-entered while running")
)

type (
	// MissingDependencyError reports a `dep:` naming no command.
	MissingDependencyError struct {
		Command    string
		Dependency string
	}

	// CommandFailedError reports a body that exited non-zero or could not run.
	CommandFailedError struct {
		Command string
		Code    runtime.ExitCode
		// Err is the underlying problem when the body never ran normally.
		Err error
	}

	// RecursionError reports a command reached again through its own dependencies.
	RecursionError struct {
		Path []string
	}
)

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("'%s' command not found in rfile but was specified as a dependency of '%s'", e.Dependency, e.Command)
}

// Unwrap returns ErrMissingDependency for errors.Is.
func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command '%s' failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command '%s' exited with code %d", e.Command, e.Code)
}

// Unwrap returns ErrCommandFailed and the underlying error.
func (e *CommandFailedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}

// Error implements the error interface.
func (e *RecursionError) Error() string {
	return fmt.Sprintf("dependency cycle detected at runtime: %s", strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrRecursion for errors.Is.
func (e *RecursionError) Unwrap() error { return ErrRecursion }

// ExitCodeOf maps an Execute error to a process exit code: 0 for nil, the child's
// code for failures, 2 for missing dependencies and 1 otherwise.
func ExitCodeOf(err error) runtime.ExitCode {
	if err == nil {
		return 0
	}
	var failed *CommandFailedError
	if errors.As(err, &failed) {
		return failed.Code.Or(ExitCodeInternal)
	}
	if errors.Is(err, ErrMissingDependency) {
		return ExitCodeResolution
	}
	return ExitCodeInternal
}

// IsCancelled reports whether err only records that the run was cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
