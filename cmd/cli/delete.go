package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a workspace by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]

			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			if err := manager.LoadWorkspaces(cmd.Context()); err != nil {
				return err
			}

			if err := manager.DeleteWorkspace(cmd.Context(), slug); err != nil {
				return err
			}

			fmt.Printf("Deleted workspace %s\n", slug)
			return nil
		},
	}
}
