// Package cli renders hifictl output with lipgloss.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("#00AAAA")
	boostColor  = lipgloss.Color("#00AA00")
	cutColor    = lipgloss.Color("#A40000")
	mutedColor  = lipgloss.Color("#888888")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cutColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(20)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	boostStyle = lipgloss.NewStyle().Foreground(boostColor)
	cutStyle   = lipgloss.NewStyle().Foreground(cutColor)
)

// PrintTitle writes a styled heading.
func PrintTitle(w io.Writer, title string) {
	fmt.Fprintln(w, TitleStyle.Render(title))
}

// PrintKV writes one aligned key/value line.
func PrintKV(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(key), ValueStyle.Render(fmt.Sprint(value)))
}

// PrintWarning writes a highlighted note.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, WarnStyle.Render(msg))
}

// PrintError writes an error line.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), msg)
}
