// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rfilerunner/rfile/internal/issue"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

const tagline = "rfile is a simple command runner for executing Python and shell scripts"

// renderUsage prints the global usage and the command listing of m. A nil m means
// no rfile was found.
func renderUsage(w io.Writer, m *rfile.Manifest) {
	fmt.Fprintf(w, "%s: r [-h, --help] [-v, --verbose] [-r, --rfile rfile] %s\n\n%s\n\n",
		WarningStyle.Render("usage"), CmdStyle.Render("COMMAND"), tagline)

	if m == nil {
		fmt.Fprintf(w, "%s: no rfile was found so no commands are available\n", SuccessStyle.Render("note"))
		return
	}

	fmt.Fprintln(w, TitleStyle.Render("available commands:"))
	width := 0
	for _, name := range m.Names() {
		width = max(width, len(name))
	}
	for _, spec := range m.Commands() {
		line := "    " + NameStyle.Render(spec.Name)
		desc := spec.Summary()
		if desc == "" && !spec.IsEmpty() {
			desc = SnippetStyle.Render(spec.Snippet())
		}
		if m.IsDefault(spec) {
			desc = strings.TrimSpace(desc + " " + SubtitleStyle.Render("(default)"))
		}
		if desc != "" {
			line += strings.Repeat(" ", width-len(spec.Name)+5) + desc
		}
		fmt.Fprintln(w, line)
	}
}

// renderCommandHelp prints the usage of one command and its argument table.
func renderCommandHelp(w io.Writer, spec *rfile.CommandSpec) {
	usage := fmt.Sprintf("%s: r [-v, --verbose] %s [-h, --help]", WarningStyle.Render("usage"), spec.Name)
	for _, a := range spec.Args {
		usage += fmt.Sprintf(" [--%s %s]", a.Name, rfile.EnvName(a.Name))
	}
	fmt.Fprintln(w, usage)

	if summary := spec.Summary(); summary != "" {
		fmt.Fprintf(w, "\n    %s\n", summary)
	}
	if len(spec.Args) == 0 {
		return
	}

	rows := [][2]string{{"-h, --help", "show this help message and exit"}}
	for _, a := range spec.Args {
		rows = append(rows, [2]string{"--" + a.Name, a.Description})
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render("optional arguments:"))
	for _, r := range rows {
		fmt.Fprintf(w, "  %s%s%s\n", CmdStyle.Render(r[0]), strings.Repeat(" ", width-len(r[0])+2), r[1])
	}
}

// renderIssue prints the catalog entry id, falling back to the raw Markdown when
// rendering fails.
func renderIssue(w io.Writer, id issue.Id, stylePath string) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	out, err := entry.Render(stylePath)
	if err != nil {
		out = string(entry.MarkdownMsg())
	}
	fmt.Fprint(w, out)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors list
// their suggestions; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderLoadWarnings prints the warning-level lint findings of m. Errors are left to
// --check and to the run that hits them.
func renderLoadWarnings(w io.Writer, m *rfile.Manifest) {
	for _, d := range m.Lint() {
		if d.Severity != rfile.SeverityWarning {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", WarningStyle.Render("Warning:"), d.Command, d.Message)
	}
}
