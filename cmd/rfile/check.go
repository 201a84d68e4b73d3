// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

// checkManifest prints the problems of m: lint findings, missing interpreters and
// shell syntax errors in bodies, watch scripts and inline catch scripts. It returns
// an ExitError when any problem is an error.
func checkManifest(w io.Writer, m *rfile.Manifest, runner *runtime.Runner) error {
	diags := m.Lint()
	for _, spec := range m.Commands() {
		diags = append(diags, checkCommand(m, spec, runner)...)
	}

	errs := 0
	for _, d := range diags {
		label := WarningStyle.Render(d.Severity.String())
		if d.Severity == rfile.SeverityError {
			label = ErrorStyle.Render(d.Severity.String())
			errs++
		}
		fmt.Fprintf(w, "%s: %s: %s\n", label, NameStyle.Render(d.Command), d.Message)
	}
	if errs > 0 {
		return &ExitError{Code: ExitCodeError}
	}
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("%s: %d commands OK", m.Path, m.Len())))
	return nil
}

func checkCommand(m *rfile.Manifest, spec *rfile.CommandSpec, runner *runtime.Runner) []rfile.Diagnostic {
	var diags []rfile.Diagnostic
	fail := func(err error) {
		diags = append(diags, rfile.Diagnostic{Severity: rfile.SeverityError, Command: spec.Name, Message: err.Error()})
	}

	if err := runner.CheckInterpreter(spec.Interpreter); err != nil {
		fail(err)
	}
	if err := runtime.SyntaxCheck(spec.Name, spec.Body, spec.Interpreter); err != nil {
		fail(err)
	}
	if spec.Watch != nil && spec.Watch.Trigger.Kind == rfile.TriggerScript {
		if err := runtime.SyntaxCheck(spec.Name+"-watch", spec.Watch.Trigger.Script, spec.Interpreter); err != nil {
			fail(err)
		}
	}
	if spec.Catch != "" {
		if _, named := m.Lookup(spec.Catch); !named {
			if err := runtime.SyntaxCheck(spec.Name+"-catch", spec.Catch, spec.Interpreter); err != nil {
				fail(err)
			}
		}
	}
	return diags
}
