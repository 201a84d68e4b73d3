// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rfilerunner/rfile/internal/config"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root of
	// the CLI layer; the root command's RunE delegates to it.
	App struct {
		Config  ConfigProvider
		stdout  io.Writer
		stderr  io.Writer
		stdin   io.Reader
		getwd   func() (string, error)
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
		Getwd  func() (string, error)
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		stdin:  deps.Stdin,
		getwd:  deps.Getwd,
	}
}

// loadConfig returns the effective configuration. A broken config file is reported
// as a warning and the defaults are used instead.
func (a *App) loadConfig(ctx context.Context, path string) *config.Config {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: path})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning:")+" "+formatErrorForDisplay(err, a.verbose))
		return config.DefaultConfig()
	}
	return cfg
}
