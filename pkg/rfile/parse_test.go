// SPDX-License-Identifier: MPL-2.0

package rfile

import (
	"errors"
	"slices"
	"testing"
)

func TestParse_AllDirectives(t *testing.T) {
	t.Parallel()

	text := "# shell: bash (build the thing)\n" +
		"# arg: target (what to build)\n" +
		"# arg: verbose\n" +
		"# dep: fetch\n" +
		"# dep: gen\n" +
		"# parallel\n" +
		"# cancel\n" +
		"# watch: 2\n" +
		"# catch: notify\n" +
		"echo build\n"

	spec, err := Parse("build", text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Name != "build" {
		t.Errorf("Name = %q", spec.Name)
	}
	if spec.Interpreter != (Interpreter{Kind: InterpreterShell, Path: "bash"}) {
		t.Errorf("Interpreter = %+v", spec.Interpreter)
	}
	if spec.Help != "build the thing" {
		t.Errorf("Help = %q", spec.Help)
	}
	wantArgs := []ArgSpec{{Name: "target", Description: "what to build"}, {Name: "verbose"}}
	if !slices.Equal(spec.Args, wantArgs) {
		t.Errorf("Args = %+v, want %+v", spec.Args, wantArgs)
	}
	if !slices.Equal(spec.Deps, []string{"fetch", "gen"}) {
		t.Errorf("Deps = %v", spec.Deps)
	}
	if !spec.Parallel || !spec.Cancel {
		t.Errorf("Parallel = %v, Cancel = %v, want both true", spec.Parallel, spec.Cancel)
	}
	if spec.Watch == nil || spec.Watch.Raw != "2" {
		t.Errorf("Watch = %+v", spec.Watch)
	}
	if spec.Catch != "notify" {
		t.Errorf("Catch = %q", spec.Catch)
	}
	if spec.Body != "echo build\n" {
		t.Errorf("Body = %q", spec.Body)
	}
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bare comment", text: "# builds it\necho", want: "builds it"},
		{name: "first bare comment wins", text: "# one\n# two\necho", want: "one"},
		{name: "help directive beats comment", text: "# a comment\n# help: explicit\necho", want: "explicit"},
		{name: "shell help beats comment", text: "# a comment\n# shell: zsh (from shell)\necho", want: "from shell"},
		{name: "help directive beats shell help", text: "# shell: zsh (from shell)\n# help: explicit\necho", want: "explicit"},
		{name: "marker without space", text: "#tight\necho", want: "tight"},
		{name: "unknown key is ignored", text: "# owner: me\necho", want: ""},
		{name: "capitalised unknown key is ignored", text: "# TODO: fix later\necho", want: ""},
		{name: "capitalised directive is not help", text: "# Help: shouting\n# a comment\necho", want: "a comment"},
		{name: "first help directive wins", text: "# help: one\n# help: two\necho hi", want: "one"},
		{name: "no header", text: "echo hi", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := Parse("cmd", tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if spec.Help != tt.want {
				t.Errorf("Help = %q, want %q", spec.Help, tt.want)
			}
		})
	}
}

func TestParse_HeaderBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantBody string
		wantHelp string
	}{
		{name: "shebang skipped", text: "#!/bin/bash\n# help: x\necho", wantBody: "echo", wantHelp: "x"},
		{name: "blank lines in header", text: "\n# help: x\n\necho a\n\necho b", wantBody: "echo a\n\necho b", wantHelp: "x"},
		{name: "indentation kept", text: "# help: x\n  echo indented\n", wantBody: "  echo indented\n", wantHelp: "x"},
		{name: "comments after body stay in body", text: "echo a\n# help: no\n", wantBody: "echo a\n# help: no\n"},
		{name: "header only", text: "# help: only", wantBody: "", wantHelp: "only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := Parse("cmd", tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if spec.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", spec.Body, tt.wantBody)
			}
			if spec.Help != tt.wantHelp {
				t.Errorf("Help = %q, want %q", spec.Help, tt.wantHelp)
			}
		})
	}
}

func TestParse_BodyIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"# dep: a\n# parallel\necho d\n",
		"#!/usr/bin/env bash\n# shell: bash\n\nset -x\necho $NAME\n# trailing comment\n",
		"echo plain",
		"# help: x\n  indented\n\n",
	}
	for _, in := range inputs {
		first, err := Parse("cmd", in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		second, err := Parse("cmd", first.Body)
		if err != nil {
			t.Fatalf("re-Parse(%q) error = %v", first.Body, err)
		}
		if second.Body != first.Body {
			t.Errorf("re-parsed body = %q, want %q", second.Body, first.Body)
		}
		if second.Help != "" || len(second.Args) != 0 || len(second.Deps) != 0 ||
			second.Parallel || second.Cancel || second.Watch != nil || second.Catch != "" ||
			!second.Interpreter.IsDefault() {
			t.Errorf("re-parsed body %q produced directives: %+v", first.Body, second)
		}
	}
}

func TestParse_Interpreters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want InterpreterKind
	}{
		{"bash", InterpreterShell},
		{"/bin/sh", InterpreterShell},
		{"fish", InterpreterShell},
		{"python3", InterpreterPython},
		{"/usr/bin/python", InterpreterPython},
		{"node", InterpreterOther},
		{"virtual", InterpreterVirtual},
	}
	for _, tt := range tests {
		spec, err := Parse("cmd", "# shell: "+tt.word+"\nbody")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if spec.Interpreter.Kind != tt.want || spec.Interpreter.Path != tt.word {
			t.Errorf("shell %q: Interpreter = %+v, want kind %v", tt.word, spec.Interpreter, tt.want)
		}
	}

	spec, err := Parse("cmd", "echo")
	if err != nil {
		t.Fatal(err)
	}
	if !spec.Interpreter.IsDefault() {
		t.Errorf("no shell directive should give the default shell, got %+v", spec.Interpreter)
	}
}

func TestInterpreter_Capabilities(t *testing.T) {
	t.Parallel()

	py := Interpreter{Kind: InterpreterPython, Path: "python3"}
	if !py.ReceivesStructuredArgs() || py.ReceivesPositionalArgs() {
		t.Error("python should receive structured args and no positional args")
	}
	for _, kind := range []InterpreterKind{InterpreterShell, InterpreterOther, InterpreterVirtual} {
		i := Interpreter{Kind: kind, Path: "x"}
		if i.ReceivesStructuredArgs() || !i.ReceivesPositionalArgs() || !i.ReceivesEnvArgs() {
			t.Errorf("%v: unexpected capabilities", kind)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		text          string
		wantLine      int
		wantDirective string
	}{
		{name: "empty shell", text: "# shell:\necho", wantLine: 1, wantDirective: "shell"},
		{name: "empty dep", text: "# help: x\n# dep:   \necho", wantLine: 2, wantDirective: "dep"},
		{name: "empty arg", text: "# arg:", wantLine: 1, wantDirective: "arg"},
		{name: "empty watch", text: "# watch:", wantLine: 1, wantDirective: "watch"},
		{name: "empty catch", text: "# catch:", wantLine: 1, wantDirective: "catch"},
		{name: "duplicate shell", text: "# shell: bash\n# shell: zsh\necho", wantLine: 2, wantDirective: "shell"},
		{name: "duplicate arg", text: "# arg: x\n# arg: x (again)", wantLine: 2, wantDirective: "arg"},
		{name: "duplicate watch", text: "# watch: 1\n# watch: 2", wantLine: 2, wantDirective: "watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("bad", tt.text)
			if !errors.Is(err, ErrMalformedDirective) {
				t.Fatalf("Parse() error = %v, want ErrMalformedDirective", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Command != "bad" || pe.Line != tt.wantLine || pe.Directive != tt.wantDirective {
				t.Errorf("ParseError = %+v, want line %d directive %q", pe, tt.wantLine, tt.wantDirective)
			}
		})
	}
}

func TestCommandSpec_Summary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec CommandSpec
		want string
	}{
		{CommandSpec{Help: "explicit", Deps: []string{"a"}}, "explicit"},
		{CommandSpec{Deps: []string{"a"}}, "run a"},
		{CommandSpec{Deps: []string{"a", "b"}}, "run a and b"},
		{CommandSpec{Deps: []string{"a", "b", "c"}}, "run a, b, and c"},
		{CommandSpec{Body: "echo"}, ""},
	}
	for _, tt := range tests {
		if got := tt.spec.Summary(); got != tt.want {
			t.Errorf("Summary() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandSpec_Snippet(t *testing.T) {
	t.Parallel()

	short := CommandSpec{Body: "echo hello\n\n  echo world\n"}
	if got := short.Snippet(); got != "echo hello; echo world" {
		t.Errorf("Snippet() = %q", got)
	}

	long := CommandSpec{Body: "echo aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	got := long.Snippet()
	if want := "echo aaaaaaaaaaaaaaaaaaaaaa..."; got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
	if len(got) != 30 {
		t.Errorf("len(Snippet()) = %d, want 30", len(got))
	}
}
