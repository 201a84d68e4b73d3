// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

// ErrInterpreterNotFound is the sentinel wrapped by InterpreterNotFoundError.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// defaultShells are tried in order when no default shell is configured.
var defaultShells = []string{"bash", "zsh", "sh"}

// lookPath is exec.LookPath; a Runner holds it as a field for tests.
var lookPath = exec.LookPath

// InterpreterNotFoundError reports interpreters that are not on PATH.
type InterpreterNotFoundError struct {
	Tried []string
}

// Error implements the error interface.
func (e *InterpreterNotFoundError) Error() string {
	if len(e.Tried) == 1 {
		return fmt.Sprintf("Shell %s could not be found in PATH", e.Tried[0])
	}
	return fmt.Sprintf("No shell found, tried: %s", strings.Join(e.Tried, ", "))
}

// Unwrap returns ErrInterpreterNotFound for errors.Is.
func (e *InterpreterNotFoundError) Unwrap() error { return ErrInterpreterNotFound }

// resolveDefaultShell returns the interpreter for commands without `shell:`.
func (r *Runner) resolveDefaultShell() (rfile.Interpreter, error) {
	if r.defaultShell != "" {
		return rfile.ClassifyInterpreter(r.defaultShell), nil
	}
	for _, name := range defaultShells {
		if path, err := r.lookPath(name); err == nil {
			return rfile.Interpreter{Kind: rfile.InterpreterShell, Path: path}, nil
		}
	}
	return rfile.Interpreter{}, &InterpreterNotFoundError{Tried: defaultShells}
}

// resolvePath finds the executable of an external interpreter. A configured python
// replaces the word of every python-like `shell:`.
func (r *Runner) resolvePath(interp rfile.Interpreter) (string, error) {
	word := interp.Path
	if interp.Kind == rfile.InterpreterPython && r.python != "" {
		word = r.python
	}
	path, err := r.lookPath(word)
	if err != nil {
		return "", &InterpreterNotFoundError{Tried: []string{word}}
	}
	return path, nil
}

// CheckInterpreter reports whether interp can be found.
func (r *Runner) CheckInterpreter(interp rfile.Interpreter) error {
	switch {
	case interp.IsDefault():
		_, err := r.resolveDefaultShell()
		return err
	case interp.Kind == rfile.InterpreterVirtual:
		return nil
	default:
		_, err := r.resolvePath(interp)
		return err
	}
}
