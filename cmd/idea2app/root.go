package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "idea2app",
	Short: "Operator tools for the idea-to-app pipeline",
	Long: `idea2app runs pipeline stages against the configured LLM provider,
reconstructs stored mockups and inspects chat stage classification.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		_ = godotenv.Load()
	},
}
