package sample

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// ErrDuplicateIdentifier is returned when two samples resolve to the same
// canonical identifier.
var ErrDuplicateIdentifier = errors.New("duplicate sample identifier")

// DuplicateIdentifierError names the colliding identifier and both heatmaps.
type DuplicateIdentifierError struct {
	ID     string
	First  string
	Second string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("%s: %q from %s and %s", ErrDuplicateIdentifier, e.ID, e.First, e.Second)
}

func (e *DuplicateIdentifierError) Unwrap() error {
	return ErrDuplicateIdentifier
}

// Sample is one annotated image together with the model's classification of it.
type Sample struct {
	Features       []Feature
	GroundTruth    int
	Prediction     float64
	PredictedClass int
	Heatmap        string
	OrigFile       string
}

// ID returns the canonical identifier: the heatmap filename without extension.
func (s *Sample) ID() string {
	return Identifier(s.Heatmap)
}

// Positive reports whether the model classified the image as class 1.
func (s *Sample) Positive() bool {
	return s.PredictedClass == 1
}

// Validate checks the classification fields of the sample.
func (s *Sample) Validate() error {
	if s.GroundTruth != 0 && s.GroundTruth != 1 {
		return fmt.Errorf("sample %s: ground truth %d is not a class", s.ID(), s.GroundTruth)
	}
	if s.Prediction < 0 || s.Prediction > 1 || math.IsNaN(s.Prediction) {
		return fmt.Errorf("sample %s: prediction %v outside [0, 1]", s.ID(), s.Prediction)
	}
	if s.PredictedClass != RoundPrediction(s.Prediction) {
		return fmt.Errorf("sample %s: predicted class %d does not match prediction %v",
			s.ID(), s.PredictedClass, s.Prediction)
	}
	for i, f := range s.Features {
		if !f.Box.Valid() {
			return fmt.Errorf("sample %s: feature %d (%s) has inverted coordinates", s.ID(), i, f.Kind)
		}
	}
	return nil
}

// Identifier derives the canonical sample identifier from a heatmap path.
func Identifier(heatmap string) string {
	base := filepath.Base(heatmap)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}

// RoundPrediction turns a probability into a class, rounding half to even.
func RoundPrediction(p float64) int {
	return int(math.RoundToEven(p))
}

// CheckUnique fails on the first pair of samples sharing an identifier.
func CheckUnique(samples []Sample) error {
	seen := make(map[string]string, len(samples))
	for i := range samples {
		id := samples[i].ID()
		if prev, ok := seen[id]; ok {
			return &DuplicateIdentifierError{ID: id, First: prev, Second: samples[i].Heatmap}
		}
		seen[id] = samples[i].Heatmap
	}
	return nil
}
