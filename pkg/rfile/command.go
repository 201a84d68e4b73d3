// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"strings"
	"time"
)

// Trigger kinds for a watch directive.
const (
	// TriggerInterval fires every Interval.
	TriggerInterval TriggerKind = iota + 1
	// TriggerCommand runs the named command; its completion is a change.
	TriggerCommand
	// TriggerScript runs an inline script under the watched command's interpreter.
	TriggerScript
)

const snippetWidth = 30

type (
	// TriggerKind classifies how a watched command detects change.
	TriggerKind int

	// ArgSpec declares a named argument accepted by a command.
	ArgSpec struct {
		Name        string
		Description string
	}

	// Trigger is a classified watch trigger. Only the field matching Kind is set.
	Trigger struct {
		Kind     TriggerKind
		Interval time.Duration
		Command  string
		Script   string
	}

	// WatchSpec is a `watch:` directive. Raw is the text as written; Trigger is filled
	// in by NewManifest once every command name is known.
	WatchSpec struct {
		Raw     string
		Trigger Trigger
	}

	// CommandSpec is one parsed manifest entry. It is not modified after the Manifest
	// holding it has been built.
	CommandSpec struct {
		Name string
		// Body is the script text following the directive header, verbatim.
		Body        string
		Help        string
		Interpreter Interpreter
		Args        []ArgSpec
		Parallel    bool
		Deps        []string
		Watch       *WatchSpec
		// Cancel only has an effect together with Watch.
		Cancel bool
		// Catch is a command name or an inline script; empty when unset.
		Catch string
	}
)

// String returns the kind name.
func (k TriggerKind) String() string {
	switch k {
	case TriggerInterval:
		return "interval"
	case TriggerCommand:
		return "command"
	case TriggerScript:
		return "script"
	default:
		return "unclassified"
	}
}

// IsEmpty reports whether the body contains nothing to run.
func (c *CommandSpec) IsEmpty() bool { return strings.TrimSpace(c.Body) == "" }

// Arg returns the ArgSpec with the given name.
func (c *CommandSpec) Arg(name string) (ArgSpec, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}

// Summary returns the one-line help for command listings: the explicit help text,
// or for a command without help but with dependencies "run a, b, and c".
// It returns "" when neither applies; callers then fall back to Snippet.
func (c *CommandSpec) Summary() string {
	if c.Help != "" {
		return c.Help
	}
	switch len(c.Deps) {
	case 0:
		return ""
	case 1:
		return "run " + c.Deps[0]
	case 2:
		return "run " + c.Deps[0] + " and " + c.Deps[1]
	default:
		return "run " + strings.Join(c.Deps[:len(c.Deps)-1], ", ") + ", and " + c.Deps[len(c.Deps)-1]
	}
}

// Snippet returns the start of the body on one line, at most 30 characters wide,
// ending in "..." when truncated.
func (c *CommandSpec) Snippet() string {
	var parts []string
	for line := range strings.SplitSeq(c.Body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	flat := strings.Join(parts, "; ")
	runes := []rune(flat)
	if len(runes) <= snippetWidth {
		return flat
	}
	return string(runes[:snippetWidth-3]) + "..."
}
