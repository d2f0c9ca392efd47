package cli

import (
	"doublage/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "doublage",
	Short: "AI-powered subtitling and dubbing for videos",
	Long: `Doublage is a CLI tool that transcribes, translates, and dubs
video files using AI.

It can generate subtitles, translate them with a persistent cache,
render a multi-speaker dubbed audio track, and remux everything back
into the original video.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Source language code (e.g., en, es, fr)")
}
