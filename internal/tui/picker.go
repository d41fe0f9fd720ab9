// Package tui provides the interactive column picker used when detection cannot choose a column
// on its own.
package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/tui/themes"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultTableHeight = 10
	examplesWidth      = 40
)

// ColumnPicker lets the user choose the email column from every detected profile.
type ColumnPicker struct {
	theme     themes.Theme
	keys      KeyMap
	structure model.TableStructure
	selected  string
	profiles  []model.ColumnProfile
	table     table.Model
	cancelled bool
}

// NewColumnPicker builds a picker over result.Profiles with the default theme. The cursor starts
// on the best column.
func NewColumnPicker(result detect.Result) ColumnPicker {
	return NewThemedColumnPicker(result, themes.Default)
}

// NewThemedColumnPicker is NewColumnPicker with an explicit theme.
func NewThemedColumnPicker(result detect.Result, theme themes.Theme) ColumnPicker {
	nameWidth := len("Column")
	for _, p := range result.Profiles {
		nameWidth = max(nameWidth, len(p.Name))
	}

	columns := []table.Column{
		{Title: "Column", Width: nameWidth},
		{Title: "Confidence", Width: 10},
		{Title: "Matched", Width: 9},
		{Title: "Examples", Width: examplesWidth},
	}

	rows := make([]table.Row, 0, len(result.Profiles))
	for _, p := range result.Profiles {
		rows = append(rows, table.Row{
			p.Name,
			fmt.Sprintf("%d%%", p.Confidence),
			fmt.Sprintf("%d/%d", p.MatchedCount, p.SampledCount),
			truncate(strings.Join(p.Examples, ", "), examplesWidth),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(defaultTableHeight, max(len(rows), 1))+1),
	)

	t.SetStyles(theme.TableStyles())

	return ColumnPicker{
		keys:      DefaultKeyMap(),
		theme:     theme,
		structure: result.Structure,
		profiles:  result.Profiles,
		table:     t,
	}
}

// Init implements tea.Model.
func (m ColumnPicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ColumnPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if len(m.profiles) == 0 {
				return m, nil
			}
			m.selected = m.profiles[m.table.Cursor()].Name
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ColumnPicker) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Select the email column"))
	b.WriteString("\n")
	if m.structure.Description != "" {
		b.WriteString(m.theme.Hint.Render(m.structure.Description))
		b.WriteString("\n\n")
	}
	b.WriteString(m.theme.Frame.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(m.helpView())
	b.WriteString("\n")

	return b.String()
}

func (m ColumnPicker) helpView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.Hint.Render(strings.Join(parts, " • "))
}

// Selected returns the chosen column, if any.
func (m ColumnPicker) Selected() (string, bool) {
	return m.selected, m.selected != ""
}

// Cancelled reports whether the user quit without choosing.
func (m ColumnPicker) Cancelled() bool {
	return m.cancelled
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
