// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Directive keywords recognised in a command header.
const (
	directiveShell    = "shell"
	directiveHelp     = "help"
	directiveArg      = "arg"
	directiveDep      = "dep"
	directiveWatch    = "watch"
	directiveCatch    = "catch"
	directiveParallel = "parallel"
	directiveCancel   = "cancel"
)

// ErrMalformedDirective is the sentinel wrapped by ParseError.
var ErrMalformedDirective = errors.New("malformed directive")

// directiveKeyPattern matches comments shaped like a directive (`key: value`). Such
// comments with an unknown key are ignored rather than taken as help text.
var directiveKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// help sources in increasing precedence.
const (
	helpNone = iota
	helpComment
	helpShell
	helpDirective
)

type (
	// ParseError reports a malformed directive in a command header.
	ParseError struct {
		Command string
		// Line is 1-based within the command's script text.
		Line      int
		Directive string
		Reason    string
	}

	headerParser struct {
		spec       *CommandSpec
		helpSource int
		seen       map[string]bool
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("command %q, line %d: %s: %s", e.Command, e.Line, e.Directive, e.Reason)
}

// Unwrap returns ErrMalformedDirective for errors.Is.
func (e *ParseError) Unwrap() error { return ErrMalformedDirective }

// Parse splits a command's script text into its directive header and body.
//
// The header is the run of leading lines that are comments (`#`) or blank. A `#!`
// line is skipped. The body starts at the first other line and is kept verbatim.
// Watch triggers are left unclassified; NewManifest classifies them.
func Parse(name, text string) (*CommandSpec, error) {
	p := &headerParser{
		spec: &CommandSpec{Name: name},
		seen: make(map[string]bool),
	}

	lines := strings.Split(text, "\n")
	bodyStart := len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			bodyStart = i
			break
		}
		if strings.HasPrefix(trimmed, "#!") {
			continue
		}
		if err := p.directive(i+1, strings.TrimSpace(trimmed[1:])); err != nil {
			return nil, err
		}
	}

	if bodyStart < len(lines) {
		p.spec.Body = strings.Join(lines[bodyStart:], "\n")
	}
	return p.spec, nil
}

func (p *headerParser) directive(line int, text string) error {
	switch text {
	case "":
		return nil
	case directiveParallel:
		p.spec.Parallel = true
		return nil
	case directiveCancel:
		p.spec.Cancel = true
		return nil
	}

	key, value, hasValue := strings.Cut(text, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !hasValue || !directiveKeyPattern.MatchString(key) {
		p.setHelp(helpComment, text)
		return nil
	}

	fail := func(reason string) error {
		return &ParseError{Command: p.spec.Name, Line: line, Directive: key, Reason: reason}
	}

	switch key {
	case directiveShell, directiveArg, directiveDep, directiveWatch, directiveCatch, directiveHelp:
		if value == "" {
			return fail("missing value")
		}
	default:
		// Unknown `key: value` comments are neither directives nor help.
		return nil
	}

	switch key {
	case directiveShell:
		if p.seen[key] {
			return fail("interpreter declared more than once")
		}
		word, help := splitNameAndHelp(value)
		p.spec.Interpreter = ClassifyInterpreter(word)
		if help != "" {
			p.setHelp(helpShell, help)
		}
	case directiveHelp:
		p.setHelp(helpDirective, value)
	case directiveArg:
		argName, desc := splitNameAndHelp(value)
		if _, dup := p.spec.Arg(argName); dup {
			return fail(fmt.Sprintf("argument %q declared more than once", argName))
		}
		p.spec.Args = append(p.spec.Args, ArgSpec{Name: argName, Description: desc})
	case directiveDep:
		p.spec.Deps = append(p.spec.Deps, value)
	case directiveWatch:
		if p.seen[key] {
			return fail("watch trigger declared more than once")
		}
		p.spec.Watch = &WatchSpec{Raw: value}
	case directiveCatch:
		if p.seen[key] {
			return fail("catch target declared more than once")
		}
		p.spec.Catch = value
	}
	p.seen[key] = true
	return nil
}

// setHelp applies help text from a source unless a stronger or earlier source of the
// same strength already set it.
func (p *headerParser) setHelp(source int, text string) {
	if p.helpSource != helpNone && source <= p.helpSource {
		return
	}
	p.spec.Help = text
	p.helpSource = source
}

// splitNameAndHelp splits `word (trailing text)` into the word and the text without
// its surrounding parentheses.
func splitNameAndHelp(s string) (name, help string) {
	name, rest, _ := strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, "(")
	rest = strings.TrimSuffix(rest, ")")
	return name, strings.TrimSpace(rest)
}
