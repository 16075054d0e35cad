package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reanchor",
		Short:        "Anchor LLM quotes and citations onto transcript timestamps",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("transcript", "", "Path to a whisper-style transcript JSON")
	root.PersistentFlags().String("video", "", "YouTube video ID (fetches the timedtext track)")
	root.PersistentFlags().String("out", "out", "Output directory")
	root.PersistentFlags().Bool("verbose", false, "Verbose logging")

	alignCmd := &cobra.Command{
		Use:   "align <quotes.json>",
		Short: "Resolve a batch of LLM quotes into timestamped spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(cmd, args[0])
		},
	}
	alignCmd.Flags().Bool("context", false, "Widen spans with surrounding segments for viewing")

	// Hidden tuning flag (internal)
	alignCmd.Flags().Float64("min-similarity", 0, "Fuzzy match acceptance bar override")
	_ = alignCmd.Flags().MarkHidden("min-similarity")

	citeCmd := &cobra.Command{
		Use:   "cite <answer.txt>",
		Short: "Rewrite inline [MM:SS] timestamps in an answer into numbered citations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCite(cmd, args[0])
		},
	}

	root.AddCommand(alignCmd, citeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
