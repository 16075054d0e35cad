package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forPelevin/reanchor/internal/pipeline"
)

const runTimeout = 10 * time.Minute

func runAlign(cmd *cobra.Command, quotesPath string) error {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	cfg.QuotesPath, err = filepath.Abs(quotesPath)
	if err != nil {
		return err
	}
	cfg.Context, _ = cmd.Flags().GetBool("context")
	cfg.MinSimilarity, _ = cmd.Flags().GetFloat64("min-similarity")

	if err := run(cfg); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "alignment complete")
	return nil
}

func runCite(cmd *cobra.Command, answerPath string) error {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	cfg.AnswerPath, err = filepath.Abs(answerPath)
	if err != nil {
		return err
	}

	if err := run(cfg); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "citation extraction complete")
	return nil
}

func run(cfg pipeline.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	return pipeline.Run(ctx, cfg)
}

func baseConfig(cmd *cobra.Command) (pipeline.Config, error) {
	transcript, _ := cmd.Flags().GetString("transcript")
	videoID, _ := cmd.Flags().GetString("video")
	outDir, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := newLogger(verbose)

	cfg := pipeline.Config{
		VideoID: strings.TrimSpace(videoID),
		OutDir:  outDir,
		Logf:    log.Infof,

		TimedtextBaseURL:      getenvDefault("TIMEDTEXT_BASE_URL", "https://www.youtube.com"),
		TimedtextAllowedHosts: splitHosts(os.Getenv("TIMEDTEXT_ALLOWED_HOSTS")),
		TimedtextLang:         getenvDefault("TIMEDTEXT_LANG", "en"),
	}
	if transcript != "" {
		abs, err := filepath.Abs(transcript)
		if err != nil {
			return pipeline.Config{}, err
		}
		cfg.TranscriptPath = abs
	}
	return cfg, nil
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func splitHosts(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
