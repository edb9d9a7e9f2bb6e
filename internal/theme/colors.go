// Package theme holds the terminal palette and the styled badges used in
// command output.
package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	ColorOverlay0 = lipgloss.Color("#6c7086")
	ColorRed      = lipgloss.Color("#f38ba8")
	ColorGreen    = lipgloss.Color("#a6e3a1")
	ColorYellow   = lipgloss.Color("#f9e2af")
	ColorBlue     = lipgloss.Color("#89b4fa")
)

var (
	badgeOK      = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	badgeFailed  = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	badgePending = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	badgeMuted   = lipgloss.NewStyle().Foreground(ColorOverlay0)
	accent       = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
)

// Badge renders a short status word. Known words get a colour; anything
// else is rendered muted.
func Badge(status string) string {
	label := "[" + status + "]"
	switch status {
	case "ok", "succeeded", "found", "connected":
		return badgeOK.Render(label)
	case "failed", "missing", "error", "launch_failed", "client_exited":
		return badgeFailed.Render(label)
	case "launching", "wrapped", "warn":
		return badgePending.Render(label)
	default:
		return badgeMuted.Render(label)
	}
}

// Accent highlights a name such as a profile or host.
func Accent(s string) string {
	return accent.Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return badgeMuted.Render(s)
}
