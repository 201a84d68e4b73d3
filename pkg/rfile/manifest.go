// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/rfilerunner/rfile/internal/dag"
)

var (
	// ErrDuplicateCommand is the sentinel wrapped by DuplicateCommandError.
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrEmptyManifest is returned when a manifest declares no commands.
	ErrEmptyManifest = errors.New("manifest declares no commands")
)

// Lint severities.
const (
	SeverityWarning Severity = iota
	SeverityError
)

type (
	// Entry is one raw manifest item before directive parsing.
	Entry struct {
		Name   string
		Script string
		// Line is the 1-based line of the entry in its source file, 0 when unknown.
		Line int
	}

	// Manifest is the validated, ordered table of commands for one invocation.
	// The first declared command is the default.
	Manifest struct {
		// Path is the file the manifest was loaded from, empty when built in memory.
		Path     string
		commands []*CommandSpec
		index    map[string]*CommandSpec
	}

	// DuplicateCommandError reports a command name declared more than once.
	DuplicateCommandError struct {
		Name string
		Line int
	}

	// Severity ranks a Diagnostic.
	Severity int

	// Diagnostic is a problem found by Manifest.Lint.
	Diagnostic struct {
		Severity Severity
		Command  string
		Message  string
	}
)

// Error implements the error interface.
func (e *DuplicateCommandError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("command %q declared more than once (line %d)", e.Name, e.Line)
	}
	return fmt.Sprintf("command %q declared more than once", e.Name)
}

// Unwrap returns ErrDuplicateCommand for errors.Is.
func (e *DuplicateCommandError) Unwrap() error { return ErrDuplicateCommand }

// String returns the severity label.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// String formats the diagnostic as `severity: command: message`.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Command, d.Message)
}

// NewManifest parses every entry and validates the table: names must be unique and
// `dep:` chains must not form a cycle. Deps naming unknown commands are allowed here
// and fail when executed; Lint reports them.
func NewManifest(entries []Entry) (*Manifest, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyManifest
	}

	m := &Manifest{
		commands: make([]*CommandSpec, 0, len(entries)),
		index:    make(map[string]*CommandSpec, len(entries)),
	}
	for _, e := range entries {
		if _, dup := m.index[e.Name]; dup {
			return nil, &DuplicateCommandError{Name: e.Name, Line: e.Line}
		}
		spec, err := Parse(e.Name, e.Script)
		if err != nil {
			return nil, err
		}
		m.commands = append(m.commands, spec)
		m.index[e.Name] = spec
	}

	for _, spec := range m.commands {
		if spec.Watch != nil {
			spec.Watch.Trigger = m.classifyTrigger(spec.Watch.Raw)
		}
	}

	if _, err := m.dependencyGraph().TopologicalSort(); err != nil {
		return nil, err
	}
	return m, nil
}

// classifyTrigger reads a watch spec as an interval, a command name or a script,
// in that order.
func (m *Manifest) classifyTrigger(raw string) Trigger {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 && !math.IsInf(secs, 0) {
		return Trigger{Kind: TriggerInterval, Interval: time.Duration(secs * float64(time.Second))}
	}
	if _, ok := m.index[raw]; ok {
		return Trigger{Kind: TriggerCommand, Command: raw}
	}
	return Trigger{Kind: TriggerScript, Script: raw}
}

func (m *Manifest) dependencyGraph() *dag.Graph {
	g := dag.New()
	for _, spec := range m.commands {
		g.AddNode(spec.Name)
		for _, dep := range spec.Deps {
			if _, ok := m.index[dep]; ok {
				g.AddEdge(dep, spec.Name)
			}
		}
	}
	return g
}

// Len returns the number of commands.
func (m *Manifest) Len() int { return len(m.commands) }

// Commands returns the commands in declaration order. The slice is a copy.
func (m *Manifest) Commands() []*CommandSpec { return slices.Clone(m.commands) }

// Names returns the command names in declaration order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.commands))
	for i, c := range m.commands {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the command with exactly this name.
func (m *Manifest) Lookup(name string) (*CommandSpec, bool) {
	spec, ok := m.index[name]
	return spec, ok
}

// Default returns the first declared command.
func (m *Manifest) Default() *CommandSpec { return m.commands[0] }

// IsDefault reports whether spec is the default command.
func (m *Manifest) IsDefault(spec *CommandSpec) bool { return m.commands[0] == spec }

// ExecutionOrder returns the dependency-first order of every command.
func (m *Manifest) ExecutionOrder() []string {
	order, err := m.dependencyGraph().TopologicalSort()
	if err != nil {
		// NewManifest rejected cycles.
		return m.Names()
	}
	return order
}

// Lint reports problems that are legal to load but will misbehave at run time:
// unknown deps, catch or cancel without watch, and a command watching itself.
func (m *Manifest) Lint() []Diagnostic {
	var diags []Diagnostic
	for _, spec := range m.commands {
		for _, dep := range spec.Deps {
			if _, ok := m.index[dep]; !ok {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Command:  spec.Name,
					Message:  fmt.Sprintf("dependency %q is not a command in this rfile", dep),
				})
			}
		}
		if spec.Watch == nil {
			if spec.Catch != "" {
				diags = append(diags, Diagnostic{
					Severity: SeverityWarning,
					Command:  spec.Name,
					Message:  "'# catch' cannot be used without '# watch'",
				})
			}
			if spec.Cancel {
				diags = append(diags, Diagnostic{
					Severity: SeverityWarning,
					Command:  spec.Name,
					Message:  "'# cancel' has no effect without '# watch'",
				})
			}
		}
		if spec.Watch != nil && spec.Watch.Trigger.Kind == TriggerCommand && spec.Watch.Trigger.Command == spec.Name {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Command:  spec.Name,
				Message:  "a command cannot be its own watch trigger",
			})
		}
	}
	return diags
}
