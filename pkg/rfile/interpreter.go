// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"path/filepath"
	"strings"
)

// Interpreter kinds. The set is closed; dispatch code switches over it exhaustively.
const (
	// InterpreterShell is a POSIX-like shell (bash, zsh, sh, fish, dash, ksh).
	InterpreterShell InterpreterKind = iota
	// InterpreterPython is a Python interpreter receiving an `args` object.
	InterpreterPython
	// InterpreterOther is any other executable, invoked as `<path> <script> <args...>`.
	InterpreterOther
	// InterpreterVirtual runs the body in-process with the built-in POSIX shell.
	InterpreterVirtual
)

// VirtualShell is the `shell:` word selecting the in-process interpreter.
const VirtualShell = "virtual"

type (
	// InterpreterKind selects how a command body is executed.
	InterpreterKind int

	// Interpreter is the interpreter a command body runs under. Path is the word given
	// in the `shell:` directive; it is empty for the default shell, which the runner
	// resolves from configuration or PATH.
	Interpreter struct {
		Kind InterpreterKind
		Path string
	}
)

var (
	shellNames  = map[string]bool{"bash": true, "zsh": true, "sh": true, "fish": true, "dash": true, "ksh": true}
	pythonNames = map[string]bool{"python": true, "python3": true}
)

// String returns the kind name.
func (k InterpreterKind) String() string {
	switch k {
	case InterpreterShell:
		return "shell"
	case InterpreterPython:
		return "python"
	case InterpreterOther:
		return "other"
	case InterpreterVirtual:
		return "virtual"
	default:
		return "unknown"
	}
}

// ClassifyInterpreter maps a `shell:` word to an Interpreter by its base name.
func ClassifyInterpreter(word string) Interpreter {
	if word == VirtualShell {
		return Interpreter{Kind: InterpreterVirtual, Path: word}
	}
	base := strings.TrimSuffix(filepath.Base(word), ".exe")
	switch {
	case shellNames[base]:
		return Interpreter{Kind: InterpreterShell, Path: word}
	case pythonNames[base]:
		return Interpreter{Kind: InterpreterPython, Path: word}
	default:
		return Interpreter{Kind: InterpreterOther, Path: word}
	}
}

// IsDefault reports whether no `shell:` directive was given.
func (i Interpreter) IsDefault() bool { return i.Kind == InterpreterShell && i.Path == "" }

// ReceivesEnvArgs reports whether bound arguments are exported as environment variables.
// Every kind receives them; for Other interpreters this is best effort.
func (i Interpreter) ReceivesEnvArgs() bool { return true }

// ReceivesPositionalArgs reports whether bound arguments are passed as positional
// parameters after the script path.
func (i Interpreter) ReceivesPositionalArgs() bool { return i.Kind != InterpreterPython }

// ReceivesStructuredArgs reports whether bound arguments are injected as a structured
// `args` object into the script namespace.
func (i Interpreter) ReceivesStructuredArgs() bool { return i.Kind == InterpreterPython }

// String returns the interpreter word, or "default shell".
func (i Interpreter) String() string {
	if i.IsDefault() {
		return "default shell"
	}
	return i.Path
}
