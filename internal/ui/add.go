package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration string
		color    string
		priority bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Long: `Add a new task to a day.

Without --start the task goes into the first free slot of the day that
fits its duration. The write is rejected if it overlaps an existing task.`,
		Example: `  agenda add "Write documentation" --date=2025-01-10 --start=09:00 --duration=2
  agenda add "Standup" --start=9.5 --duration=0:15 --color=green
  agenda add "Review" --date=tomorrow`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			hours, err := parseDuration(duration, a.config.Schedule.DefaultDuration)
			if err != nil {
				return err
			}

			var startHours float64
			if start != "" {
				if startHours, err = parseStart(start); err != nil {
					return err
				}
			} else {
				existing, err := a.repo.ListTasksByDay(ctx, day)
				if err != nil {
					return fmt.Errorf("fetching tasks: %w", err)
				}
				from := a.window.StartFor(day, a.now())
				var ok bool
				startHours, ok = a.window.NextFreeFrom(existing, day, hours, a.slotHours(), from)
				if !ok {
					return fmt.Errorf("no free %s slot on %s", FormatDuration(hoursToMinutes(hours)), day.Format("2006-01-02"))
				}
			}

			if err := a.window.Validate(startHours, hours); err != nil {
				return err
			}

			t, err := task.New(strings.Join(args, " "), day.Format("2006-01-02"), startHours, hours, color)
			if err != nil {
				return err
			}
			t.IsPriority = priority

			if err := a.repo.CreateTask(ctx, t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", describeTask(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, today, tomorrow, +N, weekday; default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM or hours, default: first free slot)")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration (H:MM or hours, default from config)")
	cmd.Flags().StringVar(&color, "color", string(task.DefaultColor), "Color: orange, green or yellow-green")
	cmd.Flags().BoolVar(&priority, "priority", false, "Mark the task as priority")

	return cmd
}
