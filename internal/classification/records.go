// Package classification loads the model's per-image classification results
// and picks the images the knowledge base is generated from.
package classification

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Record is the classification of one test image.
// Filename is relative to the test dataset, e.g. neg/pic_00046.png.
type Record struct {
	Filename       string  `yaml:"filename" json:"filename" validate:"required"`
	GroundTruth    int     `yaml:"ground_truth" json:"ground_truth" validate:"oneof=0 1"`
	Prediction     float64 `yaml:"prediction" json:"prediction" validate:"gte=0,lte=1"`
	PredictedClass int     `yaml:"predicted_class" json:"predicted_class" validate:"oneof=0 1"`
}

// Correct reports whether the predicted class matches the ground truth.
func (r Record) Correct() bool {
	return r.GroundTruth == r.PredictedClass
}

// rawRecord tells absent fields apart from zero values. Only predicted_class
// may be absent.
type rawRecord struct {
	Filename       string   `yaml:"filename"`
	GroundTruth    *int     `yaml:"ground_truth"`
	Prediction     *float64 `yaml:"prediction"`
	PredictedClass *int     `yaml:"predicted_class"`
}

func (r rawRecord) record() (Record, error) {
	if r.GroundTruth == nil {
		return Record{}, fmt.Errorf("invalid record %q: missing ground_truth", r.Filename)
	}
	if r.Prediction == nil {
		return Record{}, fmt.Errorf("invalid record %q: missing prediction", r.Filename)
	}

	rec := Record{
		Filename:       filepath.ToSlash(r.Filename),
		GroundTruth:    *r.GroundTruth,
		Prediction:     *r.Prediction,
		PredictedClass: sample.RoundPrediction(*r.Prediction),
	}
	if err := validate.Struct(rec); err != nil {
		return Record{}, fmt.Errorf("invalid record %q: %w", r.Filename, err)
	}
	if r.PredictedClass != nil && *r.PredictedClass != rec.PredictedClass {
		return Record{}, fmt.Errorf("invalid record %q: predicted class %d does not match prediction %v",
			r.Filename, *r.PredictedClass, rec.Prediction)
	}
	return rec, nil
}

// Records is the set of classification records, keyed by filename.
type Records struct {
	list  []Record
	byKey map[string]int
}

// NewRecords indexes the records. Filenames must be unique.
func NewRecords(list []Record) (*Records, error) {
	r := &Records{list: list, byKey: make(map[string]int, len(list))}
	for i, rec := range list {
		key := Key(rec.Filename)
		if _, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("duplicate record for %q", rec.Filename)
		}
		r.byKey[key] = i
	}
	return r, nil
}

// Key normalizes a relative filename for lookups: forward slashes and NFC.
func Key(filename string) string {
	return norm.NFC.String(filepath.ToSlash(filename))
}

// Lookup finds the record of a relative filename.
func (r *Records) Lookup(filename string) (Record, bool) {
	i, ok := r.byKey[Key(filename)]
	if !ok {
		return Record{}, false
	}
	return r.list[i], true
}

// All returns the records in source order.
func (r *Records) All() []Record {
	return r.list
}

// Len returns the number of records.
func (r *Records) Len() int {
	return len(r.list)
}

// Load reads records from a CSV file, or from YAML (which includes JSON) for
// any other extension. A missing file is reported with an error wrapping
// fs.ErrNotExist.
func Load(path string) (*Records, error) {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()

	var raw []rawRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		raw, err = readCSV(f)
	default:
		raw, err = readYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse records %s: %w", path, err)
	}

	list := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}

	return NewRecords(list)
}

func readYAML(r io.Reader) ([]rawRecord, error) {
	var raw []rawRecord
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return raw, nil
}

var csvColumns = []string{"filename", "ground_truth", "prediction", "predicted_class"}

// readCSV reads a CSV with a header row. predicted_class is optional; the
// other columns are required and may appear in any order.
func readCSV(r io.Reader) ([]rawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range csvColumns[:3] {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var raw []rawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		rec := rawRecord{Filename: row[col["filename"]]}
		truth, err := strconv.Atoi(row[col["ground_truth"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: ground_truth: %w", line, err)
		}
		prediction, err := strconv.ParseFloat(row[col["prediction"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: prediction: %w", line, err)
		}
		rec.GroundTruth = &truth
		rec.Prediction = &prediction
		if i, ok := col["predicted_class"]; ok && row[i] != "" {
			pc, err := strconv.Atoi(row[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: predicted_class: %w", line, err)
			}
			rec.PredictedClass = &pc
		}
		raw = append(raw, rec)
	}

	return raw, nil
}
