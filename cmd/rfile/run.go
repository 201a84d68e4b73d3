// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rfilerunner/rfile/internal/config"
	"github.com/rfilerunner/rfile/internal/engine"
	"github.com/rfilerunner/rfile/internal/issue"
	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/internal/watch"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

// run is the whole CLI: global flags, configuration, manifest, then one of the
// informational modes or the resolved command.
func (a *App) run(ctx context.Context, args []string) error {
	g, rest, err := parseGlobalFlags(args)
	if err != nil {
		return &ExitError{Code: ExitCodeUsage, Err: err}
	}
	if g.version {
		fmt.Fprintln(a.stdout, "r "+getVersionString())
		return nil
	}

	a.verbose = g.verbose
	cfg := a.loadConfig(ctx, g.configPath)
	a.verbose = a.verbose || cfg.UI.Verbose
	applyColorMode(cfg.UI.Color)

	if g.showConfig {
		fmt.Fprint(a.stdout, config.GenerateCUE(cfg))
		return nil
	}

	m, err := a.loadManifest(g, cfg)
	if err != nil {
		switch {
		case g.help && errors.Is(err, rfile.ErrManifestNotFound):
			renderUsage(a.stdout, nil)
			return nil
		case g.rfile == "" && errors.Is(err, rfile.ErrManifestNotFound):
			renderIssue(a.stderr, issue.ManifestNotFoundId, glamourStyle(cfg.UI.Color))
		}
		return err
	}

	if g.completions {
		renderCompletions(a.stdout, m, g.prev, g.prevSet)
		return nil
	}
	if g.check {
		return checkManifest(a.stdout, m, a.newRunner(cfg, newLogger(a.stderr, a.verbose)))
	}
	renderLoadWarnings(a.stderr, m)

	token, tail := "", rest
	if len(rest) > 0 {
		token, tail = rest[0], rest[1:]
	}
	if g.help && token == "" {
		renderUsage(a.stdout, m)
		return nil
	}

	res, err := m.Resolve(token)
	if err != nil {
		renderUsage(a.stderr, m)
		return &ExitError{Code: ExitCodeUsage, Err: resolutionError(err)}
	}
	if notice := res.Notice(); notice != "" {
		fmt.Fprintln(a.stderr, WarningStyle.Render(notice))
	}

	cf, err := parseCommandFlags(res.Command, tail)
	if err != nil {
		renderCommandHelp(a.stderr, res.Command)
		return &ExitError{Code: ExitCodeUsage, Err: err}
	}
	if g.help || cf.help {
		renderCommandHelp(a.stdout, res.Command)
		return nil
	}
	a.verbose = a.verbose || cf.verbose

	bound, err := rfile.Bind(res.Command, cf.values)
	if err != nil {
		return &ExitError{Code: ExitCodeUsage, Err: err}
	}
	return a.execute(ctx, m, res.Command, bound, cfg)
}

// loadManifest reads the -r file or the nearest discovered rfile.
func (a *App) loadManifest(g globalFlags, cfg *config.Config) (*rfile.Manifest, error) {
	path := g.rfile
	if path == "" {
		wd, err := a.getwd()
		if err != nil {
			return nil, &ExitError{Code: ExitCodeError, Err: fmt.Errorf("failed to get working directory: %w", err)}
		}
		if path, err = rfile.Discover(wd, cfg.Rfile.Names); err != nil {
			if errors.Is(err, rfile.ErrManifestNotFound) {
				return nil, &ExitError{Code: ExitCodeError, Err: err}
			}
			return nil, a.manifestError(wd, err)
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, &ExitError{Code: ExitCodeError, Err: fmt.Errorf("could not find rfile '%s': %w", path, rfile.ErrManifestNotFound)}
	}

	m, err := rfile.Load(path)
	if err != nil {
		return nil, a.manifestError(path, err)
	}
	return m, nil
}

func (a *App) manifestError(resource string, err error) error {
	return &ExitError{Code: ExitCodeError, Err: issue.NewErrorContext().
		WithOperation("load rfile").
		WithResource(resource).
		WithSuggestion("Run 'r --check' after fixing the file to validate it").
		WithIssue(issue.ManifestInvalidId).
		Wrap(err).
		BuildError()}
}

// resolutionError attaches suggestions to a failed command lookup.
func resolutionError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("resolve command")
	var nf *rfile.CommandNotFoundError
	var amb *rfile.AmbiguousCommandError
	switch {
	case errors.As(err, &nf):
		ctx.WithIssue(issue.CommandNotFoundId)
		for _, s := range nf.Suggestions {
			ctx.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", s))
		}
	case errors.As(err, &amb):
		ctx.WithIssue(issue.AmbiguousCommandId).WithSuggestion("Type more of the command name")
	}
	return ctx.Wrap(err).BuildError()
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "r"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (a *App) newRunner(cfg *config.Config, logger *log.Logger) *runtime.Runner {
	return runtime.NewRunner(
		runtime.WithDefaultShell(cfg.Shell.Default),
		runtime.WithPython(cfg.Shell.Python),
		runtime.WithVerbose(a.verbose),
		runtime.WithPTY(cfg.UI.PTY),
		runtime.WithStdin(a.stdin),
		runtime.WithLogger(logger),
	)
}

// execute runs spec once, or under its watch supervisor until ctx is cancelled.
func (a *App) execute(ctx context.Context, m *rfile.Manifest, spec *rfile.CommandSpec, args rfile.BoundArgs, cfg *config.Config) error {
	runID := uuid.NewString()
	logger := newLogger(a.stderr, a.verbose).With("run", runID[:8])
	runner := a.newRunner(cfg, logger)
	ex := engine.New(m, runner, output.NewSink(a.stdout), engine.WithLogger(logger))
	req := engine.Request{
		Spec:    spec,
		Args:    args,
		Overlay: map[string]string{runtime.EnvRunID: runID},
	}
	logger.Debug("resolved command", "command", spec.Name, "rfile", m.Path, "interpreter", spec.Interpreter)

	if spec.Watch != nil {
		sup, err := watch.ForCommand(ex, runner, req, watch.Options{
			Mode:         watch.Mode(cfg.Watch.Mode),
			PollInterval: cfg.Watch.PollInterval,
			Debounce:     cfg.Watch.Debounce,
			Ignore:       cfg.Watch.Ignore,
			Dedupe:       cfg.Watch.Dedupe,
			InitialRun:   cfg.Watch.InitialRun,
			Logger:       logger,
		})
		if err != nil {
			return &ExitError{Code: engine.ExitCodeOf(err), Err: err}
		}
		if err := sup.Run(ctx); err != nil {
			return &ExitError{Code: ExitCodeError, Err: err}
		}
		return nil
	}

	err := ex.Execute(ctx, req)
	switch {
	case err == nil:
		return nil
	case engine.IsCancelled(err):
		logger.Debug("interrupted", "command", spec.Name)
		return &ExitError{Code: ExitCodeInterrupted}
	}

	code := engine.ExitCodeOf(err)
	var failed *engine.CommandFailedError
	if errors.As(err, &failed) && failed.Err == nil {
		logger.Debug("command failed", "command", failed.Command, "code", code)
		return &ExitError{Code: code}
	}
	return &ExitError{Code: code, Err: err}
}
