package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/llmspace/llmspace/pkg/domain"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <slug> <message>",
		Short: "Send a chat message to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, message := args[0], args[1]

			manager, err := newManager(cmd)
			if err != nil {
				return err
			}

			if err := manager.LoadWorkspaces(cmd.Context()); err != nil {
				return err
			}

			ws, err := manager.GetWorkspace(slug)
			if err != nil {
				return err
			}

			mode, _ := cmd.Flags().GetString("mode")
			sessionID, _ := cmd.Flags().GetString("session")
			opts := domain.ChatOptions{Mode: mode, SessionID: sessionID}

			if stream, _ := cmd.Flags().GetBool("stream"); stream {
				return streamChat(cmd, ws, message, opts)
			}

			resp, err := ws.Chat(cmd.Context(), message, opts)
			if err != nil {
				return err
			}

			fmt.Println(resp.TextResponse)
			return nil
		},
	}

	cmd.Flags().Bool("stream", false, "Stream the answer as it is generated")
	cmd.Flags().String("mode", "", "Chat mode (chat or query, default: workspace setting)")
	cmd.Flags().String("session", "", "Session ID for chat continuity")

	return cmd
}

func streamChat(cmd *cobra.Command, ws *domain.Workspace, message string, opts domain.ChatOptions) error {
	stream, err := ws.StreamChat(cmd.Context(), message, opts)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Print(chunk.TextResponse)
	}
}
