// Package sample holds the annotated and classified images the knowledge base
// is generated from.
package sample

import (
	"fmt"

	"github.com/kozaktomas/picasso-kb/internal/geometry"
)

// FeatureType is the kind of facial part a feature marks.
type FeatureType int

const (
	LeftEye FeatureType = iota
	RightEye
	Nose
	Mouth
	FaceFrame
)

var featureTypeNames = [...]string{
	LeftEye:   "left_eye",
	RightEye:  "right_eye",
	Nose:      "nose",
	Mouth:     "mouth",
	FaceFrame: "face_frame",
}

// FeatureTypes returns all feature types in declaration order.
func FeatureTypes() []FeatureType {
	return []FeatureType{LeftEye, RightEye, Nose, Mouth, FaceFrame}
}

// String returns the stable name used in annotations and generated facts.
func (t FeatureType) String() string {
	if t < 0 || int(t) >= len(featureTypeNames) {
		return fmt.Sprintf("FeatureType(%d)", int(t))
	}
	return featureTypeNames[t]
}

// ParseFeatureType maps an annotation label to its feature type.
func ParseFeatureType(name string) (FeatureType, error) {
	for _, t := range FeatureTypes() {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown feature type %q", name)
}

// Feature is one labeled region of an image.
type Feature struct {
	Box  geometry.Box
	Kind FeatureType
}

// NewFeature creates a feature from a bounding box.
func NewFeature(box geometry.Box, kind FeatureType) Feature {
	return Feature{Box: box, Kind: kind}
}

// Polygon returns the closed rectangle of the feature's bounding box.
func (f Feature) Polygon() geometry.Polygon {
	return geometry.NewPolygon(f.Box)
}

// PartID namespaces the feature under the sample identifier, e.g. pic_00046nose.
func PartID(sampleID string, kind FeatureType) string {
	return sampleID + kind.String()
}
