// Package geometry implements the spatial relations between labeled rectangular
// regions of an image.
//
// Every region is an axis-aligned rectangle, so the relations are computed from
// the per-axis intervals instead of a general polygon engine. Degenerate boxes
// (zero width or height) are treated as segments or points, following the usual
// DE-9IM semantics where the interior of a lower-dimensional shape is its
// relative interior.
package geometry

// Box is an axis-aligned bounding box in integer pixel units.
type Box struct {
	XMin int `json:"xmin"`
	XMax int `json:"xmax" validate:"gtefield=XMin"`
	YMin int `json:"ymin"`
	YMax int `json:"ymax" validate:"gtefield=YMin"`
}

// Valid reports whether the box has non-inverted coordinates.
func (b Box) Valid() bool {
	return b.XMin <= b.XMax && b.YMin <= b.YMax
}

// Width returns the horizontal extent in pixels.
func (b Box) Width() int {
	return b.XMax - b.XMin
}

// Height returns the vertical extent in pixels.
func (b Box) Height() int {
	return b.YMax - b.YMin
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.Width() * b.Height()
}

// Point is a location in pixel space.
type Point struct {
	X float64
	Y float64
}

// Polygon is the closed rectangle built from a Box.
type Polygon struct {
	box Box
}

// NewPolygon builds the rectangle polygon for a box.
func NewPolygon(b Box) Polygon {
	return Polygon{box: b}
}

// Box returns the bounding box the polygon was built from.
func (p Polygon) Box() Box {
	return p.box
}

// Exterior returns the closed ring of the polygon, starting and ending at
// (xmin, ymin) and walking xmin,ymax then xmax,ymax then xmax,ymin.
func (p Polygon) Exterior() []Point {
	b := p.box
	start := Point{X: float64(b.XMin), Y: float64(b.YMin)}
	return []Point{
		start,
		{X: float64(b.XMin), Y: float64(b.YMax)},
		{X: float64(b.XMax), Y: float64(b.YMax)},
		{X: float64(b.XMax), Y: float64(b.YMin)},
		start,
	}
}

// Centroid returns the geometric center of the polygon.
func (p Polygon) Centroid() Point {
	b := p.box
	return Point{
		X: float64(b.XMin+b.XMax) / 2,
		Y: float64(b.YMin+b.YMax) / 2,
	}
}

// Dimension returns 2 for a proper rectangle, 1 for a segment and 0 for a point.
func (p Polygon) Dimension() int {
	return p.xAxis().dimension() + p.yAxis().dimension()
}

func (p Polygon) xAxis() interval {
	return interval{lo: p.box.XMin, hi: p.box.XMax}
}

func (p Polygon) yAxis() interval {
	return interval{lo: p.box.YMin, hi: p.box.YMax}
}

// Intersects reports whether a and b share at least one point, boundary included.
func Intersects(a, b Polygon) bool {
	return a.xAxis().meets(b.xAxis()) && a.yAxis().meets(b.yAxis())
}

// Disjoint reports whether a and b share no point at all.
func Disjoint(a, b Polygon) bool {
	return !Intersects(a, b)
}

// Contains reports whether no point of b lies outside a and the interiors of a
// and b have at least one point in common. A box lying entirely on the
// boundary of a is therefore not contained.
func Contains(a, b Polygon) bool {
	if !covers(a, b) {
		return false
	}
	return a.xAxis().interiorMeets(b.xAxis()) && a.yAxis().interiorMeets(b.yAxis())
}

// Overlaps reports whether a and b have the same dimension, their interiors
// share a region of that dimension, and neither one covers the other.
func Overlaps(a, b Polygon) bool {
	dim := a.Dimension()
	if dim != b.Dimension() {
		return false
	}
	if !a.xAxis().interiorMeets(b.xAxis()) || !a.yAxis().interiorMeets(b.yAxis()) {
		return false
	}
	shared := a.xAxis().sharedDimension(b.xAxis()) + a.yAxis().sharedDimension(b.yAxis())
	if shared != dim {
		return false
	}
	return !covers(a, b) && !covers(b, a)
}

// LeftOf reports whether the centroid of a lies more than tolerance pixels left
// of the centroid of b.
func LeftOf(a, b Polygon, tolerance float64) bool {
	return a.Centroid().X < b.Centroid().X-tolerance
}

// TopOf reports whether the centroid of a lies more than tolerance pixels above
// the centroid of b. The y axis grows downwards.
func TopOf(a, b Polygon, tolerance float64) bool {
	return a.Centroid().Y < b.Centroid().Y-tolerance
}

// covers reports whether every point of b lies inside a or on its boundary.
func covers(a, b Polygon) bool {
	return a.xAxis().encloses(b.xAxis()) && a.yAxis().encloses(b.yAxis())
}

// interval is a closed interval [lo, hi] on one axis. When lo == hi it is a
// single point, whose relative interior is the point itself.
type interval struct {
	lo int
	hi int
}

func (i interval) degenerate() bool {
	return i.lo == i.hi
}

func (i interval) dimension() int {
	if i.degenerate() {
		return 0
	}
	return 1
}

func (i interval) meets(o interval) bool {
	return i.lo <= o.hi && o.lo <= i.hi
}

func (i interval) encloses(o interval) bool {
	return i.lo <= o.lo && o.hi <= i.hi
}

// interiorMeets reports whether the relative interiors of i and o intersect.
func (i interval) interiorMeets(o interval) bool {
	switch {
	case i.degenerate() && o.degenerate():
		return i.lo == o.lo
	case i.degenerate():
		return o.lo < i.lo && i.lo < o.hi
	case o.degenerate():
		return i.lo < o.lo && o.lo < i.hi
	default:
		return i.lo < o.hi && o.lo < i.hi
	}
}

// sharedDimension is the dimension of the intersection of the relative
// interiors, assuming they intersect.
func (i interval) sharedDimension(o interval) int {
	if i.degenerate() || o.degenerate() {
		return 0
	}
	return 1
}

// IoU calculates Intersection over Union of the two polygons' areas.
// Degenerate polygons have no area and yield 0.
func IoU(a, b Polygon) float64 {
	x1 := max(a.box.XMin, b.box.XMin)
	y1 := max(a.box.YMin, b.box.YMin)
	x2 := min(a.box.XMax, b.box.XMax)
	y2 := min(a.box.YMax, b.box.YMax)

	if x2 <= x1 || y2 <= y1 {
		return 0 // No intersection
	}

	intersection := float64((x2 - x1) * (y2 - y1))
	union := float64(a.box.Area()+b.box.Area()) - intersection
	if union <= 0 {
		return 0
	}

	return intersection / union
}
