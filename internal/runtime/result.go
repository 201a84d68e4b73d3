// SPDX-License-Identifier: MPL-2.0

package runtime

type (
	// Result is the outcome of one Run.
	Result struct {
		ExitCode ExitCode
		// Error is set for failures that are not a plain non-zero exit, such as a
		// missing interpreter or a script that could not be written.
		Error error
		// Cancelled is set when the request context ended the run. The exit status of
		// a cancelled run carries no meaning.
		Cancelled bool
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result for a child that terminated normally with code.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewCancelledResult creates a Result for a run ended by cancellation.
func NewCancelledResult() *Result {
	return &Result{Cancelled: true}
}

// Success reports whether the run completed with exit code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil && !r.Cancelled
}

// FailureCode is the exit code to surface for a failed run: the child's code, or 1
// when the failure carried no usable code.
func (r *Result) FailureCode() ExitCode {
	if r.Success() {
		return 0
	}
	return r.ExitCode.Or(1)
}
