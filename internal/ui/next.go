package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) nextCmd() *cobra.Command {
	var (
		date     string
		duration string
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Find the next free slot",
		Long: `Print the earliest start on the slot grid where a task of the given
duration fits without overlapping anything. For today the search starts
at the current time.`,
		Example: `  agenda next --duration=2
  agenda next --date=friday --duration=0:45`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			hours, err := parseDuration(duration, a.config.Schedule.DefaultDuration)
			if err != nil {
				return err
			}

			tasks, err := a.repo.ListTasksByDay(context.Background(), day)
			if err != nil {
				return fmt.Errorf("fetching tasks: %w", err)
			}

			from := a.window.StartFor(day, a.now())
			start, ok := a.window.NextFreeFrom(tasks, day, hours, a.slotHours(), from)
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s no free %s slot on %s\n",
					formatAlert("✗"), FormatDuration(hoursToMinutes(hours)), day.Format("2006-01-02"))
				return nil
			}

			iv, _ := task.HoursToInterval(start, hours)
			fmt.Fprintf(out, "%s %s\n", day.Format("2006-01-02"), formatOK(iv.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (default: today)")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration (H:MM or hours, default from config)")
	return cmd
}
