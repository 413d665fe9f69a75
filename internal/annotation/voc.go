// Package annotation turns the manual bounding box annotations of heatmaps
// into samples.
package annotation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kozaktomas/picasso-kb/internal/geometry"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var (
	// ErrMissingInput means a required input store does not exist.
	ErrMissingInput = errors.New("missing input")
	// ErrUnresolvedReference means an annotation or heatmap has no counterpart.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrMalformedAnnotation means an annotation file cannot be turned into features.
	ErrMalformedAnnotation = errors.New("malformed annotation")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// vocAnnotation is the subset of a Pascal VOC annotation file that is used.
type vocAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename string      `xml:"filename"`
	Objects  []vocObject `xml:"object"`
}

type vocObject struct {
	Name   string  `xml:"name"`
	BndBox *vocBox `xml:"bndbox"`
}

// Coordinates are kept as text so a missing element can be told apart from 0.
type vocBox struct {
	XMin string `xml:"xmin"`
	XMax string `xml:"xmax"`
	YMin string `xml:"ymin"`
	YMax string `xml:"ymax"`
}

func (b *vocBox) box() (geometry.Box, error) {
	var box geometry.Box
	for _, c := range []struct {
		name  string
		value string
		dst   *int
	}{
		{"xmin", b.XMin, &box.XMin},
		{"xmax", b.XMax, &box.XMax},
		{"ymin", b.YMin, &box.YMin},
		{"ymax", b.YMax, &box.YMax},
	} {
		text := strings.TrimSpace(c.value)
		if text == "" {
			return geometry.Box{}, fmt.Errorf("missing %s", c.name)
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return geometry.Box{}, fmt.Errorf("invalid %s %q", c.name, text)
		}
		*c.dst = v
	}

	if err := validate.Struct(box); err != nil {
		return geometry.Box{}, fmt.Errorf("inverted bounding box %+v", box)
	}
	return box, nil
}

// Parse reads the features of a VOC annotation document in document order.
func Parse(r io.Reader) ([]sample.Feature, error) {
	var doc vocAnnotation
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnnotation, err)
	}

	features := make([]sample.Feature, 0, len(doc.Objects))
	for i, obj := range doc.Objects {
		kind, err := sample.ParseFeatureType(strings.TrimSpace(obj.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %v", ErrMalformedAnnotation, i, err)
		}
		if obj.BndBox == nil {
			return nil, fmt.Errorf("%w: object %d (%s): missing bndbox", ErrMalformedAnnotation, i, kind)
		}
		box, err := obj.BndBox.box()
		if err != nil {
			return nil, fmt.Errorf("%w: object %d (%s): %v", ErrMalformedAnnotation, i, kind, err)
		}
		features = append(features, sample.NewFeature(box, kind))
	}

	return features, nil
}

// ParseFile reads the features of a VOC annotation file.
func ParseFile(path string) ([]sample.Feature, error) {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation: %w", err)
	}
	defer f.Close()

	features, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}
