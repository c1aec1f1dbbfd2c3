package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workspaces on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			workspaces, err := manager.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Found %d workspace(s):\n", len(workspaces))
			for _, ws := range workspaces {
				fmt.Printf("- %s (slug: %s)\n", ws.Name, ws.Slug)
			}

			return nil
		},
	}
}
