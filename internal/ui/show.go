package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/render"
	"github.com/javiermolinar/agenda/internal/theme"
)

func (a *App) showCmd() *cobra.Command {
	var (
		date    string
		agenda  bool
		noColor bool
		copyOut bool
		width   int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a day as a timeline",
		Long: `Display a day's tasks on a timeline.

Tasks that share time are drawn side by side. Use --agenda for a compact
list, and --copy to put the plain-text agenda on the clipboard. The day's
priority tasks are listed last.`,
		Example: `  agenda show
  agenda show --date=tomorrow --agenda
  agenda show --copy`,
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
			tasks, err := a.repo.ListTasksByDay(context.Background(), day)
			if err != nil {
				return fmt.Errorf("fetching tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			opts := a.renderOptions(day, width)
			opts.Profile = colorProfile(out)
			opts.Plain = noColor || opts.Profile == termenv.Ascii

			if agenda {
				fmt.Fprintln(out, render.Agenda(tasks, opts))
			} else {
				fmt.Fprintln(out, render.Day(tasks, opts))
			}
			fmt.Fprintln(out, render.Priorities(tasks, opts))

			if copyOut {
				opts.Plain = true
				if err := clipboard.WriteAll(render.Agenda(tasks, opts)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(out, formatMuted("Copied agenda to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (default: today)")
	cmd.Flags().BoolVar(&agenda, "agenda", false, "Show a compact list instead of the timeline")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the agenda to the clipboard")
	cmd.Flags().IntVar(&width, "width", 0, "Output width (default: config or terminal width)")
	return cmd
}

// renderOptions builds the render options shared by show and the TUI.
func (a *App) renderOptions(day time.Time, width int) render.Options {
	if width <= 0 {
		width = a.config.UI.Width
	}
	if width <= 0 {
		width = termWidth()
	}
	th, err := theme.Load(a.config.UI.Theme)
	if err != nil {
		a.log.Warn("theme unavailable, using default", logx.Err(err))
	}
	return render.Options{
		Date:        day,
		Window:      a.window,
		SlotMinutes: a.config.Schedule.SlotMinutes,
		Width:       width,
		Theme:       th,
		Now:         a.now(),
	}
}
