// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxSuggestions = 3
	// maxTypoDistance bounds the edit distance for suggestions that are not
	// subsequence matches.
	maxTypoDistance = 2
)

var (
	// ErrCommandNotFound is the sentinel wrapped by CommandNotFoundError.
	ErrCommandNotFound = errors.New("command not found")
	// ErrAmbiguousCommand is the sentinel wrapped by AmbiguousCommandError.
	ErrAmbiguousCommand = errors.New("ambiguous command")
)

type (
	// Resolution is the outcome of resolving a user token against a Manifest.
	Resolution struct {
		Command *CommandSpec
		// Token is what the user typed; empty when the default command was chosen.
		Token string
		// Assumed is set when Token was a unique prefix rather than an exact name.
		Assumed bool
		// Default is set when no token was given.
		Default bool
	}

	// CommandNotFoundError reports a token that neither names nor prefixes a command.
	CommandNotFoundError struct {
		Token       string
		Suggestions []string
	}

	// AmbiguousCommandError reports a token prefixing several commands. Candidates are
	// in declaration order.
	AmbiguousCommandError struct {
		Token      string
		Candidates []string
	}
)

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("No possible matches found for command '%s'", e.Token)
}

// Unwrap returns ErrCommandNotFound for errors.Is.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// Error implements the error interface.
func (e *AmbiguousCommandError) Error() string {
	return fmt.Sprintf("Ambiguous short command '%s', could be any of: %s", e.Token, strings.Join(e.Candidates, ", "))
}

// Unwrap returns ErrAmbiguousCommand for errors.Is.
func (e *AmbiguousCommandError) Unwrap() error { return ErrAmbiguousCommand }

// Notice returns the message shown when a prefix was expanded, or "".
func (r Resolution) Notice() string {
	if !r.Assumed {
		return ""
	}
	return fmt.Sprintf("Assuming '%s' is short for '%s'", r.Token, r.Command.Name)
}

// Resolve maps a token to a command. An exact name always wins; otherwise the token
// must prefix exactly one command. An empty token selects the default command.
func (m *Manifest) Resolve(token string) (Resolution, error) {
	if token == "" {
		return Resolution{Command: m.Default(), Default: true}, nil
	}
	if spec, ok := m.index[token]; ok {
		return Resolution{Command: spec, Token: token}, nil
	}

	var candidates []string
	for _, spec := range m.commands {
		if strings.HasPrefix(spec.Name, token) {
			candidates = append(candidates, spec.Name)
		}
	}

	switch len(candidates) {
	case 0:
		return Resolution{}, &CommandNotFoundError{Token: token, Suggestions: m.suggest(token)}
	case 1:
		return Resolution{Command: m.index[candidates[0]], Token: token, Assumed: true}, nil
	default:
		return Resolution{}, &AmbiguousCommandError{Token: token, Candidates: candidates}
	}
}

// suggest returns close command names: fuzzy subsequence matches first, ranked by
// distance, then small-edit-distance typos.
func (m *Manifest) suggest(token string) []string {
	names := m.Names()
	ranks := fuzzy.RankFindFold(token, names)
	sort.Sort(ranks)

	var out []string
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	for _, name := range names {
		if slices.Contains(out, name) {
			continue
		}
		if fuzzy.LevenshteinDistance(strings.ToLower(token), strings.ToLower(name)) <= maxTypoDistance {
			out = append(out, name)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
