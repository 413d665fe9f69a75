package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/picasso-kb/internal/aleph"
	"github.com/kozaktomas/picasso-kb/internal/config"
	"github.com/kozaktomas/picasso-kb/internal/geometry"
	"github.com/kozaktomas/picasso-kb/internal/predicate"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [sample-id...]",
	Short: "Show persisted samples and the facts compiled from them",
	Long: `Show the samples stored by 'picasso-kb samples': their classification, the
annotated parts with their bounding boxes, and optionally the facts the
compiler emits for each sample.

Examples:
  # Show the first 10 samples
  picasso-kb inspect --limit 10

  # Show one sample with its facts
  picasso-kb inspect --facts neg_pos_pic_00046

  # Only the left_of facts
  picasso-kb inspect --facts --predicate left_of`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("facts", false, "Print the compiled facts of every sample")
	inspectCmd.Flags().Int("limit", 0, "Limit number of samples (0 = no limit)")
	inspectCmd.Flags().String("predicate", "", "Only print facts of this predicate")
}

func runInspect(cmd *cobra.Command, args []string) error {
	showFacts := mustGetBool(cmd, "facts")
	limit := mustGetInt(cmd, "limit")
	predicateName := mustGetString(cmd, "predicate")

	cfg := config.Load()

	samples, err := sample.Load(cfg.Paths.Samples())
	if err != nil {
		return fmt.Errorf("%w (run 'picasso-kb samples' first)", err)
	}

	if len(args) > 0 {
		samples = filterSamples(samples, args)
		if len(samples) == 0 {
			return fmt.Errorf("no samples match %v", args)
		}
	}
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}

	catalog := predicate.Default(cfg.Predicates.Tolerance)
	factPrefix := ""
	if predicateName != "" {
		p, ok := catalog.Lookup(predicateName)
		if !ok {
			return fmt.Errorf("unknown predicate %q", predicateName)
		}
		factPrefix = p.Name() + "("
	}

	var compiler *aleph.Compiler
	if showFacts {
		settings, err := cfg.AlephSettings()
		if err != nil {
			return err
		}
		compiler = aleph.NewCompiler(catalog, settings)
	}

	for i := range samples {
		s := &samples[i]
		printSample(s)
		if compiler != nil {
			example, background := compiler.Facts(s)
			fmt.Printf("  Example: %s\n", example)
			for _, fact := range background {
				if strings.HasPrefix(fact, factPrefix) {
					fmt.Printf("    %s\n", fact)
				}
			}
		}
		fmt.Println()
	}
	fmt.Printf("Samples: %d\n", len(samples))

	return nil
}

func filterSamples(samples []sample.Sample, ids []string) []sample.Sample {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []sample.Sample
	for i := range samples {
		if want[samples[i].ID()] {
			out = append(out, samples[i])
		}
	}
	return out
}

func printSample(s *sample.Sample) {
	fmt.Printf("%s\n", s.ID())
	fmt.Printf("  Ground truth: %d  Prediction: %.4f  Class: %d\n", s.GroundTruth, s.Prediction, s.PredictedClass)
	fmt.Printf("  Original: %s\n", s.OrigFile)
	if err := s.Validate(); err != nil {
		fmt.Printf("  Invalid: %v\n", err)
	}

	if len(s.Features) == 0 {
		fmt.Println("  No annotated parts")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  PART\tX\tY\tAREA\tMAX IOU")
	for i, f := range s.Features {
		best := 0.0
		for j, o := range s.Features {
			if i != j {
				best = max(best, geometry.IoU(f.Polygon(), o.Polygon()))
			}
		}
		fmt.Fprintf(w, "  %s\t%d-%d\t%d-%d\t%d\t%.2f\n",
			f.Kind, f.Box.XMin, f.Box.XMax, f.Box.YMin, f.Box.YMax, f.Box.Area(), best)
	}
	_ = w.Flush()
}
