// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/rfilerunner/rfile/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "rfile"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes the environment overrides, e.g. RFILE_UI_VERBOSE.
	EnvPrefix = "RFILE"
	// MaxFileSize bounds the config file read.
	MaxFileSize int64 = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the rfile configuration directory: %APPDATA%\rfile on Windows,
// ~/Library/Application Support/rfile on macOS and $XDG_CONFIG_HOME/rfile (default
// ~/.config/rfile) elsewhere.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions reads defaults, then the config file, then RFILE_* variables.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFilePath
	if path != "" {
		if !fileExists(path) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the --config path is correct").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
	} else {
		dir := opts.ConfigDirPath
		if dir == "" {
			var err error
			if dir, err = ConfigDir(); err != nil {
				return nil, err
			}
		}
		if candidate := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt); fileExists(candidate) {
			path = candidate
		}
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the documented keys and types").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = path

	if ok, errs := cfg.IsValid(); !ok {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check the RFILE_* environment variables and the config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color", string(d.UI.Color))
	v.SetDefault("ui.pty", d.UI.PTY)
	v.SetDefault("shell.default", d.Shell.Default)
	v.SetDefault("shell.python", d.Shell.Python)
	v.SetDefault("watch.poll_interval", d.Watch.PollInterval)
	v.SetDefault("watch.dedupe", d.Watch.Dedupe)
	v.SetDefault("watch.mode", string(d.Watch.Mode))
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.initial_run", d.Watch.InitialRun)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
	v.SetDefault("rfile.names", d.Rfile.Names)
}

// loadCUEIntoViper validates the file against #Config and merges it into v. Fields
// are optional, so only well-formedness is required, not concreteness.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return fmt.Errorf("%s: file size %d exceeds the %d byte limit", path, len(data), MaxFileSize)
	}

	cctx := cuecontext.New()
	schemaValue := cctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := cctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("// rfile configuration\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor:   %q\n", cfg.UI.Color)
	fmt.Fprintf(&sb, "\tpty:     %v\n", cfg.UI.PTY)
	sb.WriteString("}\n")

	if cfg.Shell.Default != "" || cfg.Shell.Python != "" {
		sb.WriteString("\nshell: {\n")
		if cfg.Shell.Default != "" {
			fmt.Fprintf(&sb, "\tdefault: %q\n", cfg.Shell.Default)
		}
		if cfg.Shell.Python != "" {
			fmt.Fprintf(&sb, "\tpython: %q\n", cfg.Shell.Python)
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tpoll_interval: %q\n", cfg.Watch.PollInterval)
	fmt.Fprintf(&sb, "\tdedupe:        %v\n", cfg.Watch.Dedupe)
	fmt.Fprintf(&sb, "\tmode:          %q\n", cfg.Watch.Mode)
	fmt.Fprintf(&sb, "\tdebounce:      %q\n", cfg.Watch.Debounce)
	fmt.Fprintf(&sb, "\tinitial_run:   %v\n", cfg.Watch.InitialRun)
	if len(cfg.Watch.Ignore) > 0 {
		fmt.Fprintf(&sb, "\tignore: [%s]\n", quoteList(cfg.Watch.Ignore))
	}
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nrfile: names: [%s]\n", quoteList(cfg.Rfile.Names))
	return sb.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
