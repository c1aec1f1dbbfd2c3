package cli

import (
	"github.com/spf13/cobra"
)

func NewCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <json>",
		Short: "Create workspaces from an inline JSON string",
		Long: `Create one or more workspaces from a JSON string holding a single
configuration object or an array of them. Each configuration needs at least
workspace_name and custom_prompt; the remaining settings take defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			results, err := manager.CreateWorkspacesFromJSON(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}

			return printResults(results)
		},
	}
}

func NewCreateFromFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-from-file <path>",
		Short: "Create workspaces from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			results, err := manager.CreateWorkspacesFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printResults(results)
		},
	}
}

func NewCreateFromRolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-from-roles [dir]",
		Short: "Create workspaces from every JSON file in a roles directory",
		Long: `Create workspaces from each *.json file directly inside the given
directory (default ./roles). Files are processed independently: a broken
file is reported and skipped, the rest still run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "roles"
			if len(args) == 1 {
				dir = args[0]
			}

			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			results, err := manager.CreateWorkspacesFromRolesDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			return printResults(results)
		},
	}
}
