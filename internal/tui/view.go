package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/render"
	"github.com/javiermolinar/agenda/internal/theme"
)

// headerLines is the date header plus the blank line under it.
const headerLines = 2

// View renders the TUI.
func (m Model) View() string {
	if m.loading && m.tasks == nil {
		return "Loading..."
	}

	body := strings.Split(render.Day(m.tasks, m.renderOptions()), "\n")
	footer := m.footerLines()

	if m.height > 0 {
		avail := m.height - len(footer)
		body = m.scroll(body, avail)
	}
	return strings.Join(append(body, footer...), "\n")
}

func (m Model) renderOptions() render.Options {
	return render.Options{
		Date:        m.date,
		Window:      m.window,
		SlotMinutes: m.config.Schedule.SlotMinutes,
		Width:       m.width,
		Theme:       m.theme,
		Selected:    m.selected,
		Cursor:      m.cursorID(),
		Now:         m.now(),
		Profile:     lipgloss.ColorProfile(),
	}
}

// agendaText is the plain-text agenda copied by the y key.
func (m Model) agendaText() string {
	opts := m.renderOptions()
	opts.Selected = nil
	opts.Cursor = 0
	opts.Plain = true
	return render.Agenda(m.tasks, opts)
}

// scroll keeps the header pinned and the cursor row visible when the grid
// is taller than the terminal.
func (m Model) scroll(lines []string, avail int) []string {
	if avail <= headerLines || len(lines) <= avail {
		return lines
	}
	head, grid := lines[:headerLines], lines[headerLines:]
	rows := avail - headerLines

	offset := 0
	if id := m.cursorID(); id != 0 {
		if p, ok := layout.Day(m.tasks)[id]; ok {
			ws, _ := m.window.Minutes()
			slot := m.config.Schedule.SlotMinutes
			if slot <= 0 {
				slot = 30
			}
			row := (p.StartMinute - ws) / slot
			offset = min(max(row-rows/3, 0), max(len(grid)-rows, 0))
		}
	}

	out := append([]string{}, head...)
	return append(out, grid[offset:min(offset+rows, len(grid))]...)
}

func (m Model) footerLines() []string {
	muted := lipgloss.NewStyle().Foreground(theme.Color(m.theme.FgMuted))
	alert := lipgloss.NewStyle().Foreground(theme.Color(m.theme.Warning))

	var lines []string
	switch m.mode {
	case ModePrompt:
		lines = append(lines, m.prompt.View())
	case ModeConfirm:
		lines = append(lines, alert.Render(fmt.Sprintf("Delete %d task(s)? [y/N]", len(m.pendingDelete))))
	}

	lines = append(lines, render.Priorities(m.tasks, m.renderOptions()))

	status := ""
	if m.statusMsg != "" && m.now().Before(m.statusTime) {
		status = m.statusMsg
	}
	if sel := len(m.selected); sel > 0 {
		status = strings.TrimSpace(fmt.Sprintf("%d selected  %s", sel, status))
	}
	if m.err != nil && status == "" {
		status = alert.Render("Error: " + m.err.Error())
	} else {
		status = muted.Render(status)
	}
	lines = append(lines, status)
	lines = append(lines, m.help.View(m.keys))
	return lines
}
