// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// ColorAuto colours output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colour, including the ANSI sequences children emit.
	ColorAlways ColorMode = "always"
	// ColorNever strips colour.
	ColorNever ColorMode = "never"

	// WatchModePoll re-runs the trigger command or script for every check.
	WatchModePoll WatchMode = "poll"
	// WatchModeNotify runs the trigger once to list paths and watches them.
	WatchModeNotify WatchMode = "notify"
)

var (
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidWatchMode is returned when a WatchMode value is not recognized.
	ErrInvalidWatchMode = errors.New("invalid watch mode")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorMode selects when output is coloured.
	ColorMode string

	// WatchMode selects how command and script watch triggers produce changes.
	WatchMode string

	// InvalidColorModeError is returned when a ColorMode value is not recognized.
	InvalidColorModeError struct {
		Value ColorMode
	}

	// InvalidWatchModeError is returned when a WatchMode value is not recognized.
	InvalidWatchModeError struct {
		Value WatchMode
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		UI    UIConfig    `json:"ui" mapstructure:"ui"`
		Shell ShellConfig `json:"shell" mapstructure:"shell"`
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		Rfile RfileConfig `json:"rfile" mapstructure:"rfile"`

		// Source is the file the configuration was read from; empty for defaults.
		Source string `json:"-" mapstructure:"-"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logs and `set -x` tracing of shell scripts.
		Verbose bool      `json:"verbose" mapstructure:"verbose"`
		Color   ColorMode `json:"color" mapstructure:"color"`
		// PTY runs children on a pseudo-terminal so they keep their colours.
		PTY bool `json:"pty" mapstructure:"pty"`
	}

	// ShellConfig configures interpreters.
	ShellConfig struct {
		// Default replaces the bash, zsh, sh lookup for commands without `shell:`.
		// "virtual" selects the embedded shell.
		Default string `json:"default" mapstructure:"default"`
		// Python replaces the executable of python-like `shell:` directives.
		Python string `json:"python" mapstructure:"python"`
	}

	// WatchConfig configures watch supervision.
	WatchConfig struct {
		// PollInterval paces command and script triggers.
		PollInterval time.Duration `json:"poll_interval" mapstructure:"poll_interval"`
		// Dedupe drops a change whose identifier equals the previous one.
		Dedupe bool      `json:"dedupe" mapstructure:"dedupe"`
		Mode   WatchMode `json:"mode" mapstructure:"mode"`
		// Debounce is the filesystem quiet period in notify mode.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// InitialRun runs the command once before the first trigger.
		InitialRun bool `json:"initial_run" mapstructure:"initial_run"`
		// Ignore adds doublestar patterns to the notify ignore list.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// RfileConfig configures manifest discovery.
	RfileConfig struct {
		// Names are the file names looked for in each directory.
		Names []string `json:"names" mapstructure:"names"`
	}
)

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{Color: ColorAuto},
		Watch: WatchConfig{
			PollInterval: time.Second,
			Mode:         WatchModePoll,
			Debounce:     500 * time.Millisecond,
		},
		Rfile: RfileConfig{Names: []string{"rfile", "rfile.yml", "rfile.yaml"}},
	}
}

// String returns the mode name.
func (m ColorMode) String() string { return string(m) }

// IsValid reports whether m is a known mode.
func (m ColorMode) IsValid() (bool, []error) {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true, nil
	default:
		return false, []error{&InvalidColorModeError{Value: m}}
	}
}

// Error implements the error interface.
func (e *InvalidColorModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q (valid: auto, always, never)", e.Value)
}

// Unwrap returns ErrInvalidColorMode for errors.Is.
func (e *InvalidColorModeError) Unwrap() error { return ErrInvalidColorMode }

// String returns the mode name.
func (m WatchMode) String() string { return string(m) }

// IsValid reports whether m is a known mode.
func (m WatchMode) IsValid() (bool, []error) {
	switch m {
	case WatchModePoll, WatchModeNotify:
		return true, nil
	default:
		return false, []error{&InvalidWatchModeError{Value: m}}
	}
}

// Error implements the error interface.
func (e *InvalidWatchModeError) Error() string {
	return fmt.Sprintf("invalid watch mode %q (valid: poll, notify)", e.Value)
}

// Unwrap returns ErrInvalidWatchMode for errors.Is.
func (e *InvalidWatchModeError) Unwrap() error { return ErrInvalidWatchMode }

// IsValid checks the constraints the schema cannot express after environment
// overrides were applied.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.UI.Color.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Watch.Mode.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("watch.poll_interval must not be negative, got %s", c.Watch.PollInterval))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if len(c.Rfile.Names) == 0 || slices.ContainsFunc(c.Rfile.Names, func(n string) bool { return strings.TrimSpace(n) == "" }) {
		errs = append(errs, errors.New("rfile.names must list at least one non-empty file name"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
