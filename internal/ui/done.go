package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) doneCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <task-id>...",
		Short: "Mark tasks as completed",
		Long: `Mark one or more tasks as completed, or not completed with --undo.

Example:
  agenda done 42 43
  agenda done 42 --undo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setFlag(cmd, args, "completed", !undo, a.repoSetCompleted)
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Mark as not completed")
	return cmd
}

func (a *App) priorityCmd() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "priority <task-id>...",
		Short: "Mark tasks as priority",
		Long: `Mark one or more tasks as priority, or clear the mark with --off.

Example:
  agenda priority 42
  agenda priority 42 --off`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setFlag(cmd, args, "priority", !off, a.repoSetPriority)
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Clear the priority mark")
	return cmd
}

type flagSetter func(ctx context.Context, id int64, v bool) error

func (a *App) repoSetCompleted(ctx context.Context, id int64, v bool) error {
	return a.repo.SetCompleted(ctx, id, v)
}

func (a *App) repoSetPriority(ctx context.Context, id int64, v bool) error {
	return a.repo.SetPriority(ctx, id, v)
}

func (a *App) setFlag(cmd *cobra.Command, args []string, name string, v bool, set flagSetter) error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, id := range ids {
		if err := set(ctx, id, v); err != nil {
			return fmt.Errorf("updating task #%d: %w", id, err)
		}
		state := name
		if !v {
			state = "not " + name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked task #%d %s\n", id, state)
	}
	return nil
}
