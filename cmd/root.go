package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "picasso-kb",
	Short: "Turn annotated classifier explanations into an ILP knowledge base",
	Long: `Picasso KB builds a logical knowledge base from explained image classifications.

Heatmaps of a face classifier are annotated with bounding boxes of facial
features. Each annotated heatmap becomes a sample, and every sample is compiled
into Aleph facts: one example per sample, sorted by the classifier's decision,
plus background facts describing which parts the face has and how they are
spatially related.

Typical flow:
  # Pick images near the decision boundary
  picasso-kb select --copy

  # Match heatmaps, annotations and classifications into samples
  picasso-kb samples

  # Compile the samples into <stem>.b, <stem>.f and <stem>.n
  picasso-kb aleph`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// setupLogger installs a stderr text logger tagged with a per-run id.
func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler).With("run", uuid.NewString())
	slog.SetDefault(logger)
	return nil
}
