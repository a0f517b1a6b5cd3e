package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/summary"
	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Summarize a week day by day",
		Long: `Show Monday through Sunday of the week containing --date with the
number of tasks, scheduled time, completion and lane count of each day.

The lane count is the most tasks that share a single instant, which is
the number of columns the day view needs.`,
		Example: `  agenda week
  agenda week --date=next-monday`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			s, err := summary.BuildWeekSummary(context.Background(), a.repo, day)
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			printWeekSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD, today, tomorrow, monday, ...)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

func printWeekSummary(w io.Writer, s *summary.WeekSummary) {
	header := fmt.Sprintf("WEEK %s - %s", s.Start.Format("Mon Jan 2"), s.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "%s\n", formatHeader(header))
	fmt.Fprintln(w, strings.Repeat("─", 52))

	for i, ds := range s.Stats.DayStats {
		date := s.Start.AddDate(0, 0, i).Format("Mon Jan 2")
		if ds.Total == 0 {
			fmt.Fprintf(w, "  %-10s %s\n", date, formatMuted("free"))
			continue
		}
		line := fmt.Sprintf("  %-10s %2d tasks  %7s  %d/%d done  %d lanes",
			date, ds.Total, FormatDuration(ds.ScheduledMins), ds.Completed, ds.Total, s.Lanes[i])
		if ds.Malformed > 0 {
			line += "  " + formatAlert(fmt.Sprintf("%d invalid", ds.Malformed))
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, strings.Repeat("─", 52))
	total := s.Stats.Totals
	fmt.Fprintf(w, "  %d tasks | %s scheduled | %d%% done\n",
		total.Total, FormatDuration(total.ScheduledMins), s.Stats.CompletedPercent())
	if day, mins := s.Stats.BusiestDay(); day >= 0 {
		fmt.Fprintf(w, "  Busiest: %s (%s)\n", task.WeekdayName(day), FormatDuration(mins))
	}
}
