package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a date range",
		Long: `List all tasks scheduled within a date range.

If no dates are specified, lists today's tasks.
If only --start is specified, lists tasks for that single day.
If both --start and --end are specified, lists tasks in that range (inclusive).

Tasks that share time show their lane as [column/count].`,
		Example: `  agenda list
  agenda list --start=2025-01-15
  agenda list --start=2025-01-15 --end=2025-01-20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			dateRange, err := dateutil.NewDateRange(startDate, endDate)
			if err != nil {
				return err
			}

			tasks, err := a.repo.ListTasksByDateRange(context.Background(), dateRange.Start, dateRange.End)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found in the specified date range.")
				return nil
			}

			maxTitle := termWidth() - 40
			first := true
			for _, day := range dateRange.Days() {
				d := task.NewDayWithTasks(day, tasks)
				if d.Len() == 0 {
					continue
				}
				if !first {
					fmt.Fprintln(out)
				}
				first = false

				fmt.Fprintf(out, "=== %s ===\n", formatHeader(day.Format("Mon 2006-01-02")))
				printDayRows(out, d.Tasks(), maxTitle)
				printDaySummary(out, d)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")

	return cmd
}
