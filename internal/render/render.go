// Package render draws a day of tasks as text.
//
// Day draws a timeline grid where overlapping tasks sit side by side in the
// columns assigned by the layout package. Agenda draws the same tasks as a
// compact list. Both take the selection explicitly through Options, so
// rendering has no hidden state.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
	"github.com/javiermolinar/agenda/internal/theme"
)

const (
	labelWidth      = 7 // "HH:MM │"
	minContentWidth = 12
	defaultWidth    = 80
	defaultSlot     = 30
)

// Options controls rendering.
type Options struct {
	Date        time.Time // shown in the header; zero hides the header
	Window      scheduler.Window
	SlotMinutes int // minutes per grid row
	Width       int // total width in cells
	Theme       *theme.Theme

	Selected map[int64]bool // multi-selection
	Cursor   int64          // task under the cursor, 0 for none
	Now      time.Time      // zero hides the current-time marker

	Plain   bool            // strip all colors and attributes
	Profile termenv.Profile // color depth when not Plain
}

func (o Options) normalized() Options {
	if o.Window.End <= o.Window.Start {
		o.Window = scheduler.DefaultWindow
	}
	if o.SlotMinutes <= 0 {
		o.SlotMinutes = defaultSlot
	}
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Theme == nil {
		o.Theme = theme.MustLoad(theme.DefaultName)
	}
	return o
}

func (o Options) renderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	if o.Plain {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(o.Profile)
	}
	return r
}

// styles are built once per render call.
type styles struct {
	r        *lipgloss.Renderer
	th       *theme.Theme
	header   lipgloss.Style
	label    lipgloss.Style
	grid     lipgloss.Style
	now      lipgloss.Style
	muted    lipgloss.Style
	warning  lipgloss.Style
	selected lipgloss.Style
}

func newStyles(o Options) styles {
	r := o.renderer()
	th := o.Theme
	return styles{
		r:        r,
		th:       th,
		header:   r.NewStyle().Bold(true).Foreground(theme.Color(th.Accent)),
		label:    r.NewStyle().Foreground(theme.Color(th.FgMuted)),
		grid:     r.NewStyle().Foreground(theme.Color(th.Grid)),
		now:      r.NewStyle().Bold(true).Foreground(theme.Color(th.Now)),
		muted:    r.NewStyle().Foreground(theme.Color(th.FgMuted)),
		warning:  r.NewStyle().Foreground(theme.Color(th.Warning)),
		selected: r.NewStyle().Bold(true).Background(theme.Color(th.BgSelection)).Foreground(theme.Color(th.Fg)),
	}
}

// block returns the style of a task block in the grid.
func (s styles) block(t *task.Task, selected bool) lipgloss.Style {
	if selected {
		return s.selected
	}
	st := s.r.NewStyle().
		Background(s.th.TaskColor(t.Color)).
		Foreground(theme.Color(s.th.TextOnTask))
	if t.IsCompleted {
		st = st.Faint(true).Strikethrough(true)
	}
	if t.IsPriority {
		st = st.Bold(true)
	}
	return st
}

// marker is the leading cell of a task: cursor, selection or plain edge.
func marker(t *task.Task, o Options) string {
	switch {
	case o.Cursor != 0 && t.ID == o.Cursor:
		return "▶"
	case o.Selected[t.ID]:
		return "●"
	default:
		return "▌"
	}
}

// label is the one-line description of a task.
func label(t *task.Task) string {
	var b strings.Builder
	if t.IsCompleted {
		b.WriteString("✓ ")
	}
	if t.IsPriority {
		b.WriteString("! ")
	}
	b.WriteString(t.TimeRange())
	b.WriteString(" ")
	b.WriteString(t.Title)
	return b.String()
}

// fit truncates or pads s to exactly width cells.
// One-cell lanes keep their marker instead of an ellipsis.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	tail := "…"
	if width == 1 {
		tail = ""
	}
	s = ansi.Truncate(s, width, tail)
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// Day renders the tasks of one day as a timeline grid.
func Day(tasks []*task.Task, opts Options) string {
	o := opts.normalized()
	st := newStyles(o)
	res := layout.Compute(tasks)

	ws, we := o.Window.Minutes()
	slot := o.SlotMinutes
	rows := (we - ws + slot - 1) / slot
	contentW := max(o.Width-labelWidth, minContentWidth)

	owners := make([][]int64, rows)
	for r := range owners {
		owners[r] = make([]int64, contentW)
	}
	byID := make(map[int64]*task.Task, len(tasks))
	var outside, crowded []*task.Task

	for _, cluster := range res.Clusters {
		for _, t := range cluster {
			p := res.Placements[t.ID]
			r0 := floorDiv(p.StartMinute-ws, slot)
			r1 := ceilDiv(p.EndMinute-ws, slot) - 1
			r1 = max(r1, r0)
			if r1 < 0 || r0 >= rows {
				outside = append(outside, t)
				continue
			}
			r0, r1 = max(r0, 0), min(r1, rows-1)

			x0, x1, ok := laneSpan(p, contentW)
			if !ok {
				crowded = append(crowded, t)
				continue
			}

			byID[t.ID] = t
			for r := r0; r <= r1; r++ {
				for x := x0; x < x1; x++ {
					if owners[r][x] == 0 {
						owners[r][x] = t.ID
					}
				}
			}
		}
	}

	nowRow := -1
	if !o.Now.IsZero() && !o.Date.IsZero() && dateutil.SameDay(o.Now, o.Date) {
		m := o.Now.Hour()*60 + o.Now.Minute()
		if o.Window.Contains(float64(m) / 60) {
			nowRow = (m - ws) / slot
		}
	}

	// A task's label goes on the first row where it owns cells, which is
	// not always its start row when slots are coarser than tasks.
	labelled := make(map[int64]bool, len(byID))

	var lines []string
	if !o.Date.IsZero() {
		lines = append(lines, header(tasks, res, o, st), "")
	}

	for r := range rows {
		m := ws + r*slot
		clock := "     "
		if m%60 == 0 || r == 0 {
			clock = task.MinutesToTime(m)
		}
		var line strings.Builder
		if r == nowRow {
			line.WriteString(st.now.Render(clock + " ▸"))
		} else {
			line.WriteString(st.label.Render(clock) + " " + st.grid.Render("│"))
		}

		row := owners[r]
		for x := 0; x < contentW; {
			id := row[x]
			end := x + 1
			for end < contentW && row[end] == id {
				end++
			}
			width := end - x
			if id == 0 {
				fill := " "
				if m%60 == 0 {
					fill = "┈"
				}
				line.WriteString(st.grid.Render(strings.Repeat(fill, width)))
			} else {
				t := byID[id]
				text := marker(t, o)
				if !labelled[id] {
					text += " " + label(t)
					labelled[id] = true
				}
				line.WriteString(st.block(t, o.Selected[id]).Render(fit(text, width)))
			}
			x = end
		}
		lines = append(lines, line.String())
	}

	lines = append(lines, footer(outside, crowded, res.Excluded, o, st)...)
	return strings.Join(lines, "\n")
}

// laneSpan returns the cells [x0, x1) of a placement's lane. When there are
// more lanes than cells each lane gets one cell and ok is false for lanes
// that do not fit at all.
func laneSpan(p layout.Placement, width int) (x0, x1 int, ok bool) {
	colW := width / p.ColumnCount
	if colW == 0 {
		if p.Column >= width {
			return 0, 0, false
		}
		return p.Column, p.Column + 1, true
	}
	x0 = p.Column * colW
	x1 = x0 + colW
	if p.Column == p.ColumnCount-1 {
		x1 = width
	} else if colW > 1 {
		x1-- // gap between lanes
	}
	return x0, x1, true
}

// Priorities renders the day's priority tasks in start order on one line.
func Priorities(tasks []*task.Task, opts Options) string {
	o := opts.normalized()
	st := newStyles(o)

	date := o.Date
	if date.IsZero() && len(tasks) > 0 {
		date = tasks[0].Day
	}
	prio := task.NewDayWithTasks(date, tasks).Priorities()
	if len(prio) == 0 {
		return st.muted.Render("No priority tasks.")
	}

	items := make([]string, 0, len(prio))
	for _, t := range prio {
		item := t.TimeRange() + " " + t.Title
		if t.IsCompleted {
			item = "✓ " + item
		}
		items = append(items, item)
	}
	line := ansi.Truncate("Priorities: "+strings.Join(items, " · "), o.Width, "…")
	return st.warning.Render(line)
}

// Agenda renders the tasks of one day as a list in layout order.
// Tasks sharing a cluster show their lane as [column/count].
func Agenda(tasks []*task.Task, opts Options) string {
	o := opts.normalized()
	st := newStyles(o)
	res := layout.Compute(tasks)

	var lines []string
	if !o.Date.IsZero() {
		lines = append(lines, header(tasks, res, o, st))
	}
	if len(res.Placements) == 0 && len(res.Excluded) == 0 {
		lines = append(lines, st.muted.Render("No tasks."))
		return strings.Join(lines, "\n")
	}

	for _, cluster := range res.Clusters {
		for _, t := range cluster {
			p := res.Placements[t.ID]
			lines = append(lines, agendaLine(t, p, o, st))
		}
	}
	for _, t := range res.Excluded {
		lines = append(lines, st.warning.Render(fmt.Sprintf("  %s %s (invalid time)", t.TimeRange(), t.Title)))
	}
	return strings.Join(lines, "\n")
}

func agendaLine(t *task.Task, p layout.Placement, o Options, st styles) string {
	mark := " "
	switch {
	case o.Cursor != 0 && t.ID == o.Cursor:
		mark = "▶"
	case o.Selected[t.ID]:
		mark = "●"
	}

	lane := "     "
	if p.ColumnCount > 1 {
		lane = fmt.Sprintf("[%d/%d]", p.Column+1, p.ColumnCount)
	}

	flags := ""
	if t.IsPriority {
		flags += "!"
	}
	if t.IsCompleted {
		flags += "✓"
	}

	timeStyle := st.r.NewStyle().Foreground(st.th.TaskColor(t.Color))
	titleStyle := st.r.NewStyle()
	if t.IsCompleted {
		titleStyle = st.muted.Strikethrough(true)
	}
	if o.Selected[t.ID] {
		titleStyle = st.selected
	}

	prefix := fmt.Sprintf("%s %s %s %-2s ", mark, timeStyle.Render(t.TimeRange()), st.label.Render(lane), flags)
	width := o.Width - ansi.StringWidth(prefix)
	title := t.Title
	if width > 0 {
		title = ansi.Truncate(title, width, "…")
	}
	return prefix + titleStyle.Render(title)
}

func header(tasks []*task.Task, res layout.Result, o Options, st styles) string {
	stats := task.NewDayWithTasks(o.Date, tasks).Stats()

	ivs := make([]task.Interval, 0, len(res.Placements))
	for _, p := range res.Placements {
		ivs = append(ivs, p.Interval())
	}

	parts := []string{fmt.Sprintf("%d tasks", stats.Total)}
	if stats.Completed > 0 {
		parts = append(parts, fmt.Sprintf("%d done", stats.Completed))
	}
	if lanes := layout.PeakConcurrency(ivs); lanes > 1 {
		parts = append(parts, fmt.Sprintf("%d lanes", lanes))
	}
	return st.header.Render(o.Date.Format("Mon 02 Jan 2006")) + "  " + st.muted.Render(strings.Join(parts, " · "))
}

func footer(outside, crowded, excluded []*task.Task, o Options, st styles) []string {
	var lines []string
	for _, t := range outside {
		lines = append(lines, st.muted.Render(fmt.Sprintf("outside %s: %s %s", o.Window, t.TimeRange(), t.Title)))
	}
	for _, t := range crowded {
		lines = append(lines, st.muted.Render(fmt.Sprintf("no room: %s %s", t.TimeRange(), t.Title)))
	}
	for _, t := range excluded {
		lines = append(lines, st.warning.Render(fmt.Sprintf("hidden, invalid time: #%d %s", t.ID, t.Title)))
	}
	return lines
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
