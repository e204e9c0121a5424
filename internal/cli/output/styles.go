package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// NewStyles builds styles for w. Without a terminal every style renders
// plain text.
func NewStyles(w io.Writer, isTTY bool) Styles {
	lr := lipgloss.NewRenderer(w)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("14")),

		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
		StatusSkipped: lr.NewStyle().Foreground(lipgloss.Color("8")).SetString("-"),
	}
}
