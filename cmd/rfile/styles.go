// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rfilerunner/rfile/internal/config"
)

// Palette for CLI output, tuned for dark terminals.
const (
	// ColorPrimary is purple, for command names in listings.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray, for snippets and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber, for notices and usage labels.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue, for placeholders such as COMMAND.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// NameStyle is for command names.
	NameStyle = lipgloss.NewStyle().Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// SnippetStyle renders body previews of commands without help.
	SnippetStyle = lipgloss.NewStyle().Faint(true)

	// SuccessStyle is for positive outcomes.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// ErrorStyle is for error labels.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// WarningStyle is for notices such as prefix assumptions.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// CmdStyle is for placeholders and flag names.
	CmdStyle = lipgloss.NewStyle().Foreground(ColorHighlight)
)

// applyColorMode forces the lipgloss profile for `always` and `never`; `auto`
// keeps terminal detection.
func applyColorMode(mode config.ColorMode) {
	switch mode {
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// glamourStyle picks the glamour style path matching mode.
func glamourStyle(mode config.ColorMode) string {
	switch mode {
	case config.ColorAlways:
		return "dark"
	case config.ColorNever:
		return "notty"
	default:
		return "auto"
	}
}
