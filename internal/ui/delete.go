package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete tasks",
		Long: `Delete one or more tasks by ID.

Example:
  agenda delete 42
  agenda delete 42 43 44`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx := context.Background()
			for _, id := range ids {
				if err := a.repo.DeleteTask(ctx, id); err != nil {
					return fmt.Errorf("deleting task #%d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			}
			return nil
		},
	}
}
