package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

const cellWidth = 20

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("235")).Background(lipgloss.Color("62"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	faintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	confirmStyle   = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1)
)

var palette = map[record.Color]lipgloss.Color{
	record.ColorGreen:   "42",
	record.ColorBlue:    "33",
	record.ColorYellow:  "220",
	record.ColorOrange:  "208",
	record.ColorRed:     "196",
	record.ColorPurple:  "135",
	record.ColorGray:    "245",
	record.ColorNeutral: "252",
}

func colored(c record.Color, text string) string {
	fg, ok := palette[c]
	if !ok {
		fg = palette[record.ColorNeutral]
	}
	return lipgloss.NewStyle().Foreground(fg).Render(text)
}

func cell(text string) string {
	if len([]rune(text)) > cellWidth-1 {
		text = string([]rune(text)[:cellWidth-2]) + "…"
	}
	return lipgloss.NewStyle().Width(cellWidth).Render(text)
}

func (m Model) View() string {
	if m.quitting || len(m.screens) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")
	b.WriteString(m.countsView())
	b.WriteString("\n")
	b.WriteString(m.filterView())
	b.WriteString("\n\n")

	switch {
	case m.prompt != nil:
		b.WriteString(m.confirmView())
	case m.snap.Modal != nil:
		b.WriteString(m.modalView())
	default:
		b.WriteString(m.tableView())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) tabsView() string {
	tabs := make([]string, len(m.screens))
	for i, s := range m.screens {
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		tabs[i] = style.Render(s.Title())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) countsView() string {
	parts := []string{fmt.Sprintf("Total %d", m.snap.Total)}
	for _, c := range m.snap.Statuses {
		parts = append(parts, colored(c.Color, fmt.Sprintf("%s %d", c.Label, c.Count)))
	}
	return strings.Join(parts, faintStyle.Render(" · "))
}

func (m Model) filterView() string {
	status := "All"
	if code := m.statusFilter(); code != "" {
		status = record.StatusLabel(code)
	}
	search := m.search.View()
	if !m.searching && m.search.Value() == "" {
		search = faintStyle.Render("/ to search")
	}
	return fmt.Sprintf("%s   Status: %s", search, status)
}

func (m Model) tableView() string {
	if m.snap.Loading && len(m.snap.Rows) == 0 {
		return faintStyle.Render("Loading…")
	}
	var b strings.Builder
	header := make([]string, 0, len(m.snap.Columns)+1)
	for _, c := range m.snap.Columns {
		header = append(header, cell(c.Label))
	}
	header = append(header, cell("Status"))
	b.WriteString(headerStyle.Render(strings.Join(header, "")))
	b.WriteString("\n")

	if len(m.snap.Rows) == 0 {
		b.WriteString(faintStyle.Render("No records"))
		return b.String()
	}
	for i, row := range m.snap.Rows {
		b.WriteString(m.rowView(row, i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) rowView(row screen.Row, selected bool) string {
	cells := make([]string, 0, len(row.Cells)+1)
	for _, c := range row.Cells {
		cells = append(cells, cell(c))
	}
	cells = append(cells, colored(row.Color, cell(row.StatusLabel)))
	line := strings.Join(cells, "")
	if selected {
		return selectedStyle.Render("› " + line)
	}
	return "  " + line
}

func (m Model) modalView() string {
	md := m.snap.Modal
	var b strings.Builder
	b.WriteString(headerStyle.Render(md.Title))
	b.WriteString("\n\n")

	if len(md.Fields) == 0 {
		for _, d := range md.Details {
			fmt.Fprintf(&b, "%-20s %s\n", d.Label, d.Value)
		}
		return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
	}
	for i, f := range md.Fields {
		value := f.Value
		if i == m.field {
			value = m.input.View()
		}
		fmt.Fprintf(&b, "%-20s %s", f.Label, value)
		if f.Error != "" {
			b.WriteString("  " + errorStyle.Render(f.Error))
		}
		b.WriteString("\n")
	}
	if m.snap.Submitting {
		b.WriteString(faintStyle.Render("Saving…"))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) confirmView() string {
	return confirmStyle.Render(notify.DeleteMessage(m.prompt.Subject, m.prompt.Entity) + "\n\n[y] delete   [n] cancel")
}

func (m Model) statusLine() string {
	switch {
	case m.lastErr != "":
		return errorStyle.Render(m.lastErr)
	case m.snap.Error != nil:
		return errorStyle.Render("Load failed: " + m.snap.Error.Message)
	case m.notice != nil && m.notice.Level == notify.LevelError:
		return errorStyle.Render(m.notice.Text)
	case m.notice != nil:
		return successStyle.Render(m.notice.Text)
	}
	return ""
}

func (m Model) helpText() string {
	switch {
	case m.prompt != nil:
		return "y confirm • n cancel"
	case m.snap.Modal != nil && len(m.snap.Modal.Fields) == 0:
		return "e edit • esc close"
	case m.snap.Modal != nil:
		return "tab/↓ next field • shift+tab/↑ previous • ctrl+s save • esc cancel"
	case m.searching:
		return "enter/esc done"
	}
	return "tab switch • ↑/↓ move • / search • s status • n new • e edit • v view • d delete • r reload • q quit"
}
