// SPDX-License-Identifier: MPL-2.0

// Package cmd is the `r` command line: it finds the rfile, resolves the requested
// command and runs it through the engine or the watch supervisor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// newRootCommand builds the root command. Flag parsing is done by App.run because
// the flags after the command name depend on the rfile.
func newRootCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:                "r [flags] [COMMAND] [--<arg> VALUE ...]",
		Short:              "A simple command runner for executing Python and shell scripts",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), args)
		},
	}
}

// errorHandler renders errors returned by the root command. ExitErrors without a
// cause exit silently.
func errorHandler(app *App) fang.ErrorHandler {
	return func(w io.Writer, _ fang.Styles, err error) {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, app.verbose))
	}
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(errorHandler(app)),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCodeOf(err)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
