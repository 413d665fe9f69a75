package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/picasso-kb/internal/classification"
	"github.com/kozaktomas/picasso-kb/internal/config"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick classified images near the decision boundary for annotation",
	Long: `Select the n positive and n negative images whose predictions are closest
to the decision boundary, together with all false positives and false
negatives.

Examples:
  # Show the selection for the default sample count
  picasso-kb select

  # Only correctly classified images, 20 per class
  picasso-kb select --n 20 --only-correct

  # Copy the selected images into <images>/{pos,neg,fp,fn}
  picasso-kb select --copy`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().String("records", "", "Classification records file (default <pickles>/predictions.csv)")
	selectCmd.Flags().Int("n", 0, "Images per class, a multiple of 10 (default ILP_SAMPLES)")
	selectCmd.Flags().Bool("only-correct", false, "Only select correctly classified images")
	selectCmd.Flags().Bool("copy", false, "Copy the selected images into the images directory")
	selectCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSelect(cmd *cobra.Command, args []string) error {
	recordsPath := mustGetString(cmd, "records")
	n := mustGetInt(cmd, "n")
	onlyCorrect := mustGetBool(cmd, "only-correct")
	doCopy := mustGetBool(cmd, "copy")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	if recordsPath == "" {
		recordsPath = cfg.Paths.Records()
	}
	if n == 0 {
		n = cfg.Selection.SamplesPerClass
	}

	records, err := classification.Load(recordsPath)
	if err != nil {
		return err
	}

	sel, err := classification.Select(records.All(), n, onlyCorrect)
	if err != nil {
		return err
	}

	if doCopy {
		copied, err := classification.CopySelection(sel, cfg.Paths.Test, cfg.Paths.Images)
		if err != nil {
			return err
		}
		logger.Info("copied selection", "images", copied, "dest", cfg.Paths.Images)
	}

	if jsonOutput {
		return outputJSON(sel)
	}

	for _, class := range sel.Classes() {
		fmt.Printf("%s (%d)\n", class.Name, len(class.Records))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, r := range class.Records {
			fmt.Fprintf(w, "  %s\t%d\t%.4f\n", r.Filename, r.GroundTruth, r.Prediction)
		}
		_ = w.Flush()
	}
	if doCopy {
		fmt.Printf("\nCopied to %s\n", cfg.Paths.Images)
	}

	return nil
}
