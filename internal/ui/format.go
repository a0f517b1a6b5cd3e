package ui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/task"
)

// statusSymbol returns the completion indicator for a task.
func statusSymbol(t *task.Task) string {
	if t.IsCompleted {
		return "✓"
	}
	return "○"
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// taskDurationMinutes returns the rounded length of a task, 0 when malformed.
func taskDurationMinutes(t *task.Task) int {
	iv, ok := t.Interval()
	if !ok {
		return 0
	}
	return iv.Minutes()
}

func hoursToMinutes(h float64) int {
	return int(math.Round(h * 60))
}

// describeTask is the one-line summary used in command confirmations.
func describeTask(t *task.Task) string {
	return fmt.Sprintf("#%d %s %s %s", t.ID, t.Title, t.Day.Format("2006-01-02"), t.TimeRange())
}

// printDayRows prints one day of tasks in layout order. Tasks that share
// time carry their lane as [column/count]; malformed tasks come last.
func printDayRows(w io.Writer, tasks []*task.Task, maxTitle int) {
	res := layout.Compute(tasks)
	for _, cluster := range res.Clusters {
		for _, t := range cluster {
			printTaskRow(w, t, res.Placements[t.ID], maxTitle)
		}
	}
	for _, t := range res.Excluded {
		fmt.Fprintf(w, "  %s #%-4d %s  %s %s\n",
			statusSymbol(t), t.ID, t.TimeRange(), t.Title, formatAlert("(invalid time)"))
	}
}

// printTaskRow prints a single task row with consistent formatting.
func printTaskRow(w io.Writer, t *task.Task, p layout.Placement, maxTitle int) {
	lane := "     "
	if p.ColumnCount > 1 {
		lane = fmt.Sprintf("[%d/%d]", p.Column+1, p.ColumnCount)
	}

	flag := " "
	if t.IsPriority {
		flag = formatAlert("!")
	}

	title := t.Title
	if maxTitle > 1 {
		title = ansi.Truncate(title, maxTitle, "…")
	}
	if t.IsCompleted {
		title = formatMuted(title)
	}

	fmt.Fprintf(w, "  %s #%-4d %s %s %s %s  %s\n",
		statusSymbol(t),
		t.ID,
		formatTaskColor(t.Color, t.TimeRange()),
		formatMuted(lane),
		flag,
		title,
		formatMuted(FormatDuration(taskDurationMinutes(t))),
	)
}

// printDaySummary prints the totals line under a day.
func printDaySummary(w io.Writer, d *task.Day) {
	stats := d.Stats()
	parts := []string{
		fmt.Sprintf("%d tasks", stats.Total),
		fmt.Sprintf("%d done (%d%%)", stats.Completed, stats.CompletedPercent()),
		"scheduled " + FormatDuration(stats.ScheduledMins),
	}
	if stats.Priority > 0 {
		parts = append(parts, fmt.Sprintf("%d priority", stats.Priority))
	}
	if stats.Malformed > 0 {
		parts = append(parts, formatAlert(fmt.Sprintf("%d invalid", stats.Malformed)))
	}
	fmt.Fprintf(w, "  %s\n", formatMuted(strings.Join(parts, " | ")))
}
