package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"idea2app/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversation tools",
}

var chatClassifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Print the stage the next reply would be generated in",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatClassify,
}

var (
	chatHistoryPath string
	chatInitial     bool
	chatShowPrompt  bool
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatClassifyCmd)

	chatClassifyCmd.Flags().StringVar(&chatHistoryPath, "history", "", "JSON file with prior messages")
	chatClassifyCmd.Flags().BoolVar(&chatInitial, "initial", false, "Treat the message as the project's first")
	chatClassifyCmd.Flags().BoolVar(&chatShowPrompt, "prompt", false, "Also print the stage system prompt")
}

func runChatClassify(cmd *cobra.Command, args []string) error {
	var history []chat.Message
	if chatHistoryPath != "" {
		raw, err := os.ReadFile(chatHistoryPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &history); err != nil {
			return fmt.Errorf("decode history: %w", err)
		}
	}
	cls := chat.Classify(history, chatInitial, strings.TrimSpace(args[0]))
	fmt.Fprintln(cmd.OutOrStdout(), cls.Stage)
	if chatShowPrompt {
		fmt.Fprintln(cmd.OutOrStdout(), cls.SystemPrompt)
	}
	return nil
}
