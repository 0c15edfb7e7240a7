// Package cli provides the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sidenote-labs/sidenote/internal/core/ports/driving"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Services injected by main before Execute.
var (
	knowledgeService driving.KnowledgeService
	chatService      driving.ChatService
	settingsService  driving.SettingsService
)

// verbose enables debug logging.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sidenote",
	Short: "Personal knowledge base with grounded chat",
	Long: `Sidenote is a local-first knowledge assistant. Add text and PDF
documents to a personal knowledge base, then ask questions answered by
a language model grounded in your own documents.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetServices injects the application services. Must be called before
// Execute.
func SetServices(knowledge driving.KnowledgeService, chat driving.ChatService, settings driving.SettingsService) {
	knowledgeService = knowledge
	chatService = chat
	settingsService = settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
