// Package themes holds the colour palettes used by the interactive picker.
package themes

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Hint        lipgloss.Style
	Frame       lipgloss.Style
	TableHeader lipgloss.Style
	Selected    lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Highlight   lipgloss.Color
	Accent      lipgloss.Color
}

// Default is the default theme.
var Default = New(
	lipgloss.Color("#5B8DEF"),
	lipgloss.Color("#666666"),
	lipgloss.Color("240"),
	lipgloss.Color("229"),
	lipgloss.Color("57"),
)

// Monochrome avoids colour for terminals where it is unreadable.
var Monochrome = Theme{
	Title:       lipgloss.NewStyle().Bold(true).MarginBottom(1),
	Hint:        lipgloss.NewStyle().Faint(true),
	Frame:       lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()),
	TableHeader: lipgloss.NewStyle().Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true),
	Selected:    lipgloss.NewStyle().Reverse(true),
}

// New derives a theme from its colours.
func New(primary, muted, border, highlight, accent lipgloss.Color) Theme {
	return Theme{
		Primary:   primary,
		Muted:     muted,
		Border:    border,
		Highlight: highlight,
		Accent:    accent,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Hint: lipgloss.NewStyle().
			Foreground(muted),
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(border),
		TableHeader: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(border).
			BorderBottom(true).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(highlight).
			Background(accent),
	}
}

// TableStyles applies the theme on top of the bubbles table defaults.
func (t Theme) TableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Inherit(t.TableHeader)
	styles.Selected = t.Selected
	return styles
}
