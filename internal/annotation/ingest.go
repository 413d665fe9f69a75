package annotation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/picasso-kb/internal/classification"
	"github.com/kozaktomas/picasso-kb/internal/constants"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

// Progress receives one tick per parsed annotation.
type Progress interface {
	Add(num int) error
}

// Options configures an ingest run.
type Options struct {
	HeatmapDir    string
	AnnotationDir string
	TestDir       string // test dataset, used to recover original image paths
	RecordsPath   string // classification records (csv, yaml or json)
	Concurrency   int
	Logger        *slog.Logger
	Progress      Progress
}

// Skip is a heatmap or annotation left out of the collection.
type Skip struct {
	Name string
	Err  error
}

// Result is the outcome of an ingest run.
type Result struct {
	Samples []sample.Sample
	Skipped []Skip
	// Unannotated counts heatmaps without an annotation file.
	Unannotated int
}

// job is one matched heatmap, annotation and record.
type job struct {
	heatmap    string
	annotation string
	origFile   string
	record     classification.Record
}

// Ingest builds one sample per annotated heatmap.
//
// Missing input stores abort the run before anything is parsed. Heatmaps and
// annotations that cannot be matched to a record are skipped and reported in
// the result. A malformed annotation fails the whole run.
func Ingest(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	records, err := classification.Load(opts.RecordsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: classification records %s", ErrMissingInput, opts.RecordsPath)
		}
		return nil, err
	}

	heatmaps, err := listFiles(opts.HeatmapDir, "heatmaps")
	if err != nil {
		return nil, err
	}
	annotations, err := listFiles(opts.AnnotationDir, "annotations")
	if err != nil {
		return nil, err
	}

	logger.Info("ingest inputs",
		"records", records.Len(),
		"heatmaps", len(heatmaps),
		"annotations", len(annotations))

	annotationByStem := make(map[string]string, len(annotations))
	for _, name := range annotations {
		if strings.EqualFold(filepath.Ext(name), constants.AnnotationExt) {
			annotationByStem[normalize(sample.Identifier(name))] = name
		}
	}

	result := &Result{}
	used := make(map[string]bool, len(annotationByStem))
	seen := make(map[string]string, len(heatmaps))
	var jobs []job

	for _, name := range heatmaps {
		id := normalize(sample.Identifier(name))
		if prev, ok := seen[id]; ok {
			return nil, &sample.DuplicateIdentifierError{ID: id, First: prev, Second: name}
		}
		seen[id] = name

		annotation, ok := annotationByStem[id]
		if !ok {
			result.Unannotated++
			continue
		}
		used[id] = true

		origFile, err := OriginalPath(name, opts.TestDir)
		if err != nil {
			result.skip(logger, name, err)
			continue
		}

		key := RecordKey(origFile)
		record, ok := records.Lookup(key)
		if !ok {
			result.skip(logger, name, fmt.Errorf("%w: no classification record for %s", ErrUnresolvedReference, key))
			continue
		}

		jobs = append(jobs, job{
			heatmap:    filepath.Join(opts.HeatmapDir, name),
			annotation: filepath.Join(opts.AnnotationDir, annotation),
			origFile:   origFile,
			record:     record,
		})
	}

	for _, name := range annotations {
		id := normalize(sample.Identifier(name))
		if _, isAnnotation := annotationByStem[id]; isAnnotation && !used[id] {
			result.skip(logger, name, fmt.Errorf("%w: no heatmap for annotation", ErrUnresolvedReference))
		}
	}

	samples, err := parseAll(ctx, jobs, opts)
	if err != nil {
		return nil, err
	}
	result.Samples = samples

	return result, nil
}

// parseAll parses the annotations in parallel and keeps the job order.
func parseAll(ctx context.Context, jobs []job, opts Options) ([]sample.Sample, error) {
	samples := make([]sample.Sample, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for i, j := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			features, err := ParseFile(j.annotation)
			if err != nil {
				return err
			}

			samples[i] = sample.Sample{
				Features:       features,
				GroundTruth:    j.record.GroundTruth,
				Prediction:     j.record.Prediction,
				PredictedClass: j.record.PredictedClass,
				Heatmap:        j.heatmap,
				OrigFile:       j.origFile,
			}
			if opts.Progress != nil {
				_ = opts.Progress.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *Result) skip(logger *slog.Logger, name string, err error) {
	logger.Warn("skipping", "name", name, "error", err)
	r.Skipped = append(r.Skipped, Skip{Name: name, Err: err})
}

// listFiles returns the regular file names of dir in lexical order.
func listFiles(dir, what string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s directory %s", ErrMissingInput, what, dir)
		}
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func normalize(name string) string {
	return norm.NFC.String(name)
}
