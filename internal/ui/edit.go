package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) editCmd() *cobra.Command {
	var (
		title    string
		date     string
		start    string
		duration string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change or move a task",
		Long: `Change a task's title, color, day or time.

Only the flags given are changed. Moving a task is checked against the
other tasks of the target day; the task never conflicts with itself.`,
		Example: `  agenda edit 12 --start=14:00
  agenda edit 12 --date=tomorrow --duration=1:30
  agenda edit 12 --title="Design review" --color=green`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			t, err := a.repo.GetTask(ctx, id)
			if err != nil {
				return fmt.Errorf("fetching task: %w", err)
			}
			if t == nil {
				return fmt.Errorf("%w: #%d", task.ErrTaskNotFound, id)
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				t.Title = strings.TrimSpace(title)
			}
			if flags.Changed("date") {
				if t.Day, err = a.parseDay(date); err != nil {
					return err
				}
			}
			if flags.Changed("start") {
				if t.Start, err = parseStart(start); err != nil {
					return err
				}
			}
			if flags.Changed("duration") {
				if t.Duration, err = parseDuration(duration, t.Duration); err != nil {
					return err
				}
			}
			if flags.Changed("color") {
				if t.Color, err = task.ParseColor(color); err != nil {
					return err
				}
			}

			if err := a.window.Validate(t.Start, t.Duration); err != nil {
				return err
			}
			if err := a.repo.UpdateTask(ctx, t); err != nil {
				return fmt.Errorf("updating task: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", describeTask(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&date, "date", "", "New day (YYYY-MM-DD, today, tomorrow, +N, weekday)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM or hours)")
	cmd.Flags().StringVar(&duration, "duration", "", "New duration (H:MM or hours)")
	cmd.Flags().StringVar(&color, "color", "", "New color: orange, green or yellow-green")

	return cmd
}
