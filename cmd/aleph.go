package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/picasso-kb/internal/aleph"
	"github.com/kozaktomas/picasso-kb/internal/config"
	"github.com/kozaktomas/picasso-kb/internal/predicate"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var alephCmd = &cobra.Command{
	Use:   "aleph",
	Short: "Compile the sample collection into Aleph input files",
	Long: `Compile the persisted samples into the three Aleph input files:

  <stem>.b  background knowledge: solver settings, modes, determinations and
            the part facts of every sample
  <stem>.f  positive examples, face(<id>). for samples classified as faces
  <stem>.n  negative examples for the remaining samples

The files are replaced only when all three were written completely.

Examples:
  # Compile into the configured aleph directory
  picasso-kb aleph

  # Use another stem and directory
  picasso-kb aleph --stem faces --out /tmp/ilp`,
	Args: cobra.NoArgs,
	RunE: runAleph,
}

func init() {
	rootCmd.AddCommand(alephCmd)

	alephCmd.Flags().String("stem", "", "Output file stem (default ALEPH_STEM)")
	alephCmd.Flags().String("out", "", "Output directory (default PICASSO_ALEPH_PATH)")
	alephCmd.Flags().Float64("tolerance", -1, "Centroid tolerance in pixels for left_of and top_of (default PREDICATE_TOLERANCE)")
}

func runAleph(cmd *cobra.Command, args []string) error {
	stem := mustGetString(cmd, "stem")
	out := mustGetString(cmd, "out")
	tolerance := mustGetFloat64(cmd, "tolerance")

	cfg := config.Load()
	if stem == "" {
		stem = cfg.Aleph.Stem
	}
	if out == "" {
		out = cfg.Paths.Aleph
	}
	if tolerance < 0 {
		tolerance = cfg.Predicates.Tolerance
	}

	settings, err := cfg.AlephSettings()
	if err != nil {
		return err
	}

	samples, err := sample.Load(cfg.Paths.Samples())
	if err != nil {
		return fmt.Errorf("%w (run 'picasso-kb samples' first)", err)
	}

	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Compiling facts"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("samples"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	compiler := aleph.NewCompiler(predicate.Default(tolerance), settings,
		aleph.WithProgress(bar),
		aleph.WithLogger(logger),
	)

	files, stats, err := compiler.CompileFiles(samples, out, stem)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("Samples:           %d\n", stats.Samples)
	fmt.Printf("Positive examples: %d\n", stats.Positive)
	fmt.Printf("Negative examples: %d\n", stats.Negative)
	fmt.Printf("Background facts:  %d\n", stats.Background)
	fmt.Println()
	fmt.Printf("Background: %s\n", files.Background)
	fmt.Printf("Positive:   %s\n", files.Positive)
	fmt.Printf("Negative:   %s\n", files.Negative)

	return nil
}
