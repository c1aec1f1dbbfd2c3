package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llmspace/llmspace/internal/config"
	"github.com/llmspace/llmspace/internal/managers"
	"github.com/llmspace/llmspace/pkg/anythingllm"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "llmspace",
		Short: "AnythingLLM workspace manager",
		Long: `llmspace manages workspaces on a remote AnythingLLM server: create them
from JSON configuration (inline, file, or a directory of role files), list,
chat with and delete them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().String("endpoint", "", "AnythingLLM server URL (default http://localhost:3001)")
	rootCmd.PersistentFlags().String("api-key", "", "API key for bearer authentication")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewCreateFromFileCommand())
	rootCmd.AddCommand(NewCreateFromRolesCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewChatCommand())
	rootCmd.AddCommand(NewDeleteCommand())

	return rootCmd
}

// newManager resolves the connection settings (config file and environment
// first, flags on top) and builds a client plus manager for a command
func newManager(cmd *cobra.Command) (*managers.WorkspaceManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}

	client := anythingllm.NewClient(
		anythingllm.WithBaseURL(cfg.Endpoint),
		anythingllm.WithAPIKey(cfg.APIKey),
		anythingllm.WithTimeout(cfg.Timeout),
	)

	return managers.NewWorkspaceManager(managers.WorkspaceManagerDependencies{
		Client: client,
	}), nil
}

// printResults writes the per-item summary of a bulk operation and returns
// an error when any item failed, so the process exits non-zero
func printResults(results []managers.Result) error {
	for _, r := range results {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("item %d", r.Index+1)
		}
		if r.Source != "" {
			label = fmt.Sprintf("%s (%s)", label, r.Source)
		}

		if r.OK() {
			fmt.Printf("✅ %s: created as %s\n", label, r.Workspace.Slug())
		} else {
			fmt.Printf("❌ %s: %v\n", label, r.Err)
		}
	}

	if failed := managers.FailureCount(results); failed > 0 {
		return fmt.Errorf("%d of %d workspace(s) failed", failed, len(results))
	}

	fmt.Printf("\nCreated %d workspace(s)\n", len(results))
	return nil
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
