package predicate

import (
	"github.com/kozaktomas/picasso-kb/internal/geometry"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

// relation is the geometric test behind a binary predicate.
type relation func(a, b geometry.Polygon) bool

// spatial is a binary predicate between two parts of the same example.
type spatial struct {
	name  string
	holds relation
}

func (p spatial) Name() string { return p.name }
func (p spatial) Arity() Arity { return Binary }

func (p spatial) Compute(id string, features ...sample.Feature) (string, bool) {
	if len(features) != 2 {
		return "", false
	}
	a, b := features[0], features[1]
	if !p.holds(a.Polygon(), b.Polygon()) {
		return "", false
	}
	return fact(p.name, sample.PartID(id, a.Kind), sample.PartID(id, b.Kind)), true
}

func (p spatial) Mode() string {
	return modeb(p.name, "+part, +part")
}

func (p spatial) Determination() (string, bool) {
	return determination(p.name, 2)
}

// Contains holds when the first part encloses the second.
func Contains() Predicate {
	return spatial{name: "contains", holds: geometry.Contains}
}

// Overlaps holds when the parts share area without either enclosing the other.
func Overlaps() Predicate {
	return spatial{name: "overlaps", holds: geometry.Overlaps}
}

// Intersects holds when the parts share any point.
func Intersects() Predicate {
	return spatial{name: "intersects", holds: geometry.Intersects}
}

// Disjoint holds when the parts share no point.
func Disjoint() Predicate {
	return spatial{name: "disjoint", holds: geometry.Disjoint}
}

// LeftOf holds when the first part's centroid is more than tolerance pixels
// left of the second's.
func LeftOf(tolerance float64) Predicate {
	return spatial{name: "left_of", holds: func(a, b geometry.Polygon) bool {
		return geometry.LeftOf(a, b, tolerance)
	}}
}

// TopOf holds when the first part's centroid is more than tolerance pixels
// above the second's.
func TopOf(tolerance float64) Predicate {
	return spatial{name: "top_of", holds: func(a, b geometry.Polygon) bool {
		return geometry.TopOf(a, b, tolerance)
	}}
}
