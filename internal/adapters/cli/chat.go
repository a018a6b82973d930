package cli

import (
	"fmt"
	"strings"

	"github.com/devbush/compliancecheck/internal/adapters/cli/tui"
	"github.com/spf13/cobra"
)

var askFlag string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the compliance assistant follow-up questions",
		Long: `Start an interactive chat with the compliance assistant, or ask a
single question with --ask.

Example:
  compliancecheck chat --regulation "MiFID II"
  compliancecheck chat --ask "How long must call recordings be kept?"`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&askFlag, "ask", "", "Ask one question and print the answer")
	cmd.Flags().StringVarP(&regulationFlag, "regulation", "r", "", "Regulation the questions refer to")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	if strings.TrimSpace(askFlag) != "" {
		answer, err := app.ChatSvc.Ask(cmd.Context(), askFlag)
		if err != nil {
			return fmt.Errorf("follow-up question failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}

	title := "Compliance assistant"
	if app.Config.Defaults.Regulation != "" {
		title += " · " + app.Config.Defaults.Regulation
	}
	return tui.RunChat(cmd.Context(), app.ChatSvc, title)
}
