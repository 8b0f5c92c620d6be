package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/internal/core/config"
)

var (
	dataDir     string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with the pages of a PDF",
	Long: `docchat - ask questions about selected pages of a PDF

Pages are rendered to images and sent with your question to a vision model,
which streams back a Markdown answer. Conversations are saved locally and
can be resumed, browsed, and read aloud.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDir(), "Data directory")
}
