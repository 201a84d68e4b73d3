// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownArgument is the sentinel wrapped by UnknownArgumentError.
var ErrUnknownArgument = errors.New("unknown argument")

// Unset is the value of an argument that was declared but not supplied. It is
// distinct from an explicitly supplied empty string.
var Unset Value

type (
	// Value is a bound argument value. The zero value is Unset.
	Value struct {
		value string
		set   bool
	}

	// Binding pairs a declared argument with its value.
	Binding struct {
		Name  string
		Value Value
	}

	// BoundArgs holds one Binding per declared ArgSpec, in declaration order.
	BoundArgs struct {
		bindings []Binding
	}

	// UnknownArgumentError reports supplied arguments the command does not declare.
	UnknownArgumentError struct {
		Command string
		Names   []string
	}
)

// Error implements the error interface.
func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("command %q does not accept argument(s): --%s", e.Command, strings.Join(e.Names, ", --"))
}

// Unwrap returns ErrUnknownArgument for errors.Is.
func (e *UnknownArgumentError) Unwrap() error { return ErrUnknownArgument }

// Set returns a supplied Value.
func Set(v string) Value { return Value{value: v, set: true} }

// IsSet reports whether the value was supplied.
func (v Value) IsSet() bool { return v.set }

// Get returns the value and whether it was supplied.
func (v Value) Get() (string, bool) { return v.value, v.set }

// String returns the value, or "" when unset.
func (v Value) String() string { return v.value }

// Bind binds every ArgSpec of spec to a supplied value or to Unset. Supplied names
// that spec does not declare are rejected with *UnknownArgumentError, sorted by name.
func Bind(spec *CommandSpec, supplied map[string]string) (BoundArgs, error) {
	var unknown []string
	for name := range supplied {
		if _, ok := spec.Arg(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return BoundArgs{}, &UnknownArgumentError{Command: spec.Name, Names: unknown}
	}

	bound := BoundArgs{bindings: make([]Binding, 0, len(spec.Args))}
	for _, a := range spec.Args {
		v := Unset
		if s, ok := supplied[a.Name]; ok {
			v = Set(s)
		}
		bound.bindings = append(bound.bindings, Binding{Name: a.Name, Value: v})
	}
	return bound, nil
}

// Bindings returns the bindings in declaration order.
func (b BoundArgs) Bindings() []Binding { return append([]Binding(nil), b.bindings...) }

// Len returns the number of bindings.
func (b BoundArgs) Len() int { return len(b.bindings) }

// Lookup returns the value bound to name; Unset when not declared.
func (b BoundArgs) Lookup(name string) Value {
	for _, bd := range b.bindings {
		if bd.Name == name {
			return bd.Value
		}
	}
	return Unset
}

// Positional returns the values in declaration order. Unset values become empty
// strings so ordinals stay stable.
func (b BoundArgs) Positional() []string {
	out := make([]string, len(b.bindings))
	for i, bd := range b.bindings {
		out[i] = bd.Value.String()
	}
	return out
}

// EnvName is the environment variable name for an argument: upper case with dashes
// turned into underscores.
func EnvName(arg string) string {
	return strings.ToUpper(strings.ReplaceAll(arg, "-", "_"))
}

// Env returns the variables to export for set arguments and the names to remove
// from the child environment for unset ones. Each argument is exported under EnvName
// and under its declared name.
func (b BoundArgs) Env() (set map[string]string, unset []string) {
	set = make(map[string]string, 2*len(b.bindings))
	for _, bd := range b.bindings {
		names := []string{EnvName(bd.Name)}
		if bd.Name != names[0] {
			names = append(names, bd.Name)
		}
		for _, n := range names {
			if v, ok := bd.Value.Get(); ok {
				set[n] = v
			} else {
				unset = append(unset, n)
			}
		}
	}
	return set, unset
}

// PythonLiteral renders the bindings as a Python dict literal with unset values as
// None, e.g. {"name": "x", "count": None}.
func (b BoundArgs) PythonLiteral() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, bd := range b.bindings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pyString(bd.Name))
		sb.WriteString(": ")
		if v, ok := bd.Value.Get(); ok {
			sb.WriteString(pyString(v))
		} else {
			sb.WriteString("None")
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// pyString quotes s as a JSON string, which Python accepts as a string literal.
func pyString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}
