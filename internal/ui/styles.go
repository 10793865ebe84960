// Package ui holds the terminal presentation for ccprof: colour styles and
// the interactive alias picker.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title   = lipgloss.NewStyle().Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Cursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		DisableColor()
	}
}

// DisableColor replaces every style with a plain one.
func DisableColor() {
	plain := lipgloss.NewStyle()
	Title, Muted, Success, Failure, Warning, Cursor = plain, plain, plain, plain, plain, plain
}

// Check renders a pass/fail mark.
func Check(ok bool) string {
	if ok {
		return Success.Render("ok")
	}
	return Failure.Render("missing")
}
