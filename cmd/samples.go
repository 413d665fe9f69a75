package cmd

import (
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/picasso-kb/internal/annotation"
	"github.com/kozaktomas/picasso-kb/internal/config"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Build the sample collection from annotated heatmaps",
	Long: `Match every heatmap with its VOC annotation and classification record and
persist the resulting samples.

A heatmap named <prefix>_<category>_<name>_<id>.png is annotated by
<prefix>_<category>_<name>_<id>.xml and refers to the test image
<category>/<name>_<id>.png in the classification records. Heatmaps without an
annotation are ignored; heatmaps or annotations that cannot be matched are
reported and skipped.

Examples:
  # Build samples using the configured directories
  picasso-kb samples

  # Use a different records file and more workers
  picasso-kb samples --records predictions.yaml --concurrency 8

  # Print the skipped inputs as well
  picasso-kb samples --show-skipped`,
	Args: cobra.NoArgs,
	RunE: runSamples,
}

func init() {
	rootCmd.AddCommand(samplesCmd)

	samplesCmd.Flags().String("records", "", "Classification records file (default <pickles>/predictions.csv)")
	samplesCmd.Flags().Int("concurrency", 0, "Number of parallel annotation parsers (default INGEST_CONCURRENCY)")
	samplesCmd.Flags().Bool("show-skipped", false, "List skipped heatmaps and annotations")
}

func runSamples(cmd *cobra.Command, args []string) error {
	recordsPath := mustGetString(cmd, "records")
	concurrency := mustGetInt(cmd, "concurrency")
	showSkipped := mustGetBool(cmd, "show-skipped")

	cfg := config.Load()
	if recordsPath == "" {
		recordsPath = cfg.Paths.Records()
	}
	if concurrency <= 0 {
		concurrency = cfg.Ingest.Concurrency
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Parsing annotations"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("samples"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	result, err := annotation.Ingest(cmd.Context(), annotation.Options{
		HeatmapDir:    cfg.Paths.Heatmaps,
		AnnotationDir: cfg.Paths.Annotation,
		TestDir:       cfg.Paths.Test,
		RecordsPath:   recordsPath,
		Concurrency:   concurrency,
		Logger:        logger,
		Progress:      bar,
	})
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		if errors.Is(err, annotation.ErrMissingInput) {
			return fmt.Errorf("%w (check PICASSO_* paths or --records)", err)
		}
		return err
	}

	if err := sample.Save(cfg.Paths.Samples(), result.Samples); err != nil {
		return err
	}

	positive := 0
	for i := range result.Samples {
		if result.Samples[i].Positive() {
			positive++
		}
	}

	fmt.Printf("Samples:     %d (%d positive, %d negative)\n", len(result.Samples), positive, len(result.Samples)-positive)
	fmt.Printf("Unannotated: %d\n", result.Unannotated)
	fmt.Printf("Skipped:     %d\n", len(result.Skipped))
	if showSkipped {
		for _, s := range result.Skipped {
			fmt.Printf("  - %s: %v\n", s.Name, s.Err)
		}
	}
	fmt.Printf("Saved to %s\n", cfg.Paths.Samples())

	return nil
}
