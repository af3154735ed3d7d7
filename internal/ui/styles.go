package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	SymbolProgress = "»"
	SymbolOK       = "✓"
	SymbolWarn     = "⚠"
	SymbolError    = "✗"
)

type palette struct {
	progress  lipgloss.Style
	ok        lipgloss.Style
	warn      lipgloss.Style
	err       lipgloss.Style
	highlight lipgloss.Style
	muted     lipgloss.Style
	bold      lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		progress:  r.NewStyle().Foreground(lipgloss.Color("214")), // orange
		ok:        r.NewStyle().Foreground(lipgloss.Color("42")),  // green
		warn:      r.NewStyle().Foreground(lipgloss.Color("220")), // yellow
		err:       r.NewStyle().Foreground(lipgloss.Color("196")), // red
		highlight: r.NewStyle().Foreground(lipgloss.Color("51")),  // aqua
		muted:     r.NewStyle().Foreground(lipgloss.Color("245")), // grey
		bold:      r.NewStyle().Bold(true),
	}
}
