package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/conflict"
	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/task"
)

func (a *App) checkCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration string
		exclude  int64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a time is free",
		Long: `Check a placement against a day's tasks without writing anything.

Exits with an error when the placement overlaps an existing task or
falls outside the visible window. Use --exclude to ignore a task that is
about to be moved.`,
		Example: `  agenda check --start=10:00 --duration=1
  agenda check --date=2025-01-15 --start=9.5 --duration=0:30 --exclude=12`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			startHours, err := parseStart(start)
			if err != nil {
				return err
			}
			hours, err := parseDuration(duration, a.config.Schedule.DefaultDuration)
			if err != nil {
				return err
			}

			if err := a.window.Validate(startHours, hours); err != nil {
				return err
			}

			tasks, err := a.repo.ListTasksByDay(context.Background(), day)
			if err != nil {
				return fmt.Errorf("fetching tasks: %w", err)
			}

			c := conflict.Candidate{Day: day, Start: startHours, Duration: hours, ExcludeID: exclude}
			if err := conflict.Check(tasks, c); err != nil {
				if hit := conflict.Find(tasks, c); hit != nil {
					want, _ := task.HoursToInterval(startHours, hours)
					have, _ := hit.Interval()
					err = fmt.Errorf("%w; %d min shared", err, task.OverlapMinutes(want, have))
				}
				a.log.Debug("placement rejected",
					logx.String("day", day.Format("2006-01-02")),
					logx.Float64("start", startHours),
					logx.Float64("duration", hours),
					logx.Err(err))
				return err
			}

			iv, _ := task.HoursToInterval(startHours, hours)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s is free\n",
				formatOK("✓"), iv, day.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM or hours, required)")
	cmd.Flags().StringVar(&duration, "duration", "", "Duration (H:MM or hours, default from config)")
	cmd.Flags().Int64Var(&exclude, "exclude", 0, "Task ID to ignore")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}
