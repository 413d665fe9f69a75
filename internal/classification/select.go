package classification

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/kozaktomas/picasso-kb/internal/constants"
)

// Selection groups the records the knowledge base is generated from.
type Selection struct {
	Positive      []Record `json:"positive"`
	Negative      []Record `json:"negative"`
	FalsePositive []Record `json:"false_positive"`
	FalseNegative []Record `json:"false_negative"`
}

// Classes pairs every group of the selection with its directory name.
func (s *Selection) Classes() []Class {
	return []Class{
		{Name: "pos", Records: s.Positive},
		{Name: "neg", Records: s.Negative},
		{Name: "fp", Records: s.FalsePositive},
		{Name: "fn", Records: s.FalseNegative},
	}
}

// Class is one named group of a selection.
type Class struct {
	Name    string
	Records []Record
}

// Select picks the n records per predicted class closest to the decision
// boundary. False positives and false negatives are always taken from all
// records. With onlyCorrect, positives and negatives are restricted to
// correctly classified records. n must be a positive multiple of 10.
func Select(records []Record, n int, onlyCorrect bool) (*Selection, error) {
	if n <= 0 || n%constants.SampleStep != 0 {
		return nil, fmt.Errorf("n must be a positive multiple of %d, got %d", constants.SampleStep, n)
	}

	sel := &Selection{}
	var positive, negative []Record
	for _, r := range records {
		switch {
		case r.PredictedClass == 1 && r.GroundTruth == 0:
			sel.FalsePositive = append(sel.FalsePositive, r)
		case r.PredictedClass == 0 && r.GroundTruth == 1:
			sel.FalseNegative = append(sel.FalseNegative, r)
		}

		if onlyCorrect && !r.Correct() {
			continue
		}
		if r.PredictedClass == 1 {
			positive = append(positive, r)
		} else {
			negative = append(negative, r)
		}
	}

	// Positives closest to the boundary have the lowest prediction,
	// negatives the highest.
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Prediction < positive[j].Prediction
	})
	sort.SliceStable(negative, func(i, j int) bool {
		return negative[i].Prediction > negative[j].Prediction
	})

	sel.Positive = positive[:min(n, len(positive))]
	sel.Negative = negative[:min(n, len(negative))]

	return sel, nil
}

// FlatName turns a dataset path such as neg/pic_00046.png into the flat
// filename neg_pic_00046.png used once the class directories are dropped.
func FlatName(filename string) string {
	filename = filepath.FromSlash(filename)
	dir := filepath.Dir(filename)
	if dir == "." {
		dir = ""
	}
	return dir + "_" + filepath.Base(filename)
}

// CopySelection copies every selected image from the test dataset into
// <dest>/<class>/<flat name>. It returns the number of copied files.
func CopySelection(sel *Selection, testDir, dest string) (int, error) {
	copied := 0
	for _, class := range sel.Classes() {
		dir := filepath.Join(dest, class.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // dest is from trusted config
			return copied, fmt.Errorf("failed to create %s: %w", dir, err)
		}

		for _, r := range class.Records {
			src := filepath.Join(testDir, filepath.FromSlash(r.Filename))
			dst := filepath.Join(dir, FlatName(r.Filename))
			if err := copyFile(src, dst); err != nil {
				return copied, err
			}
			copied++
		}
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
