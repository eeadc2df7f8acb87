package cli

import (
	"github.com/mgpai22/vachak/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vachak",
	Short: "AI-powered aligned narration for subtitled videos",
	Long: `Vachak turns subtitle files into a narration track that stays
aligned with the video.

It synthesizes one speech clip per subtitle, optionally translating the
text first, then renders a single audio track where every clip plays at
its subtitle's timestamp.`,
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
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
