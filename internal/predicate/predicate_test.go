package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/picasso-kb/internal/geometry"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

var (
	nose  = sample.NewFeature(geometry.Box{XMin: 10, XMax: 50, YMin: 10, YMax: 30}, sample.Nose)
	mouth = sample.NewFeature(geometry.Box{XMin: 15, XMax: 45, YMin: 40, YMax: 55}, sample.Mouth)
	frame = sample.NewFeature(geometry.Box{XMin: 0, XMax: 100, YMin: 0, YMax: 100}, sample.FaceFrame)
)

func TestFace(t *testing.T) {
	p := Face()

	f, ok := p.Compute("pic_01")
	require.True(t, ok)
	assert.Equal(t, "face(pic_01).", f)
	assert.Equal(t, ":- modeh(1, face(+example)).", p.Mode())

	_, ok = p.Determination()
	assert.False(t, ok)
}

func TestMetaPredicates(t *testing.T) {
	f, ok := HasA().Compute("pic_01", nose)
	require.True(t, ok)
	assert.Equal(t, "has_a(pic_01, pic_01nose).", f)

	f, ok = IsA().Compute("pic_01", mouth)
	require.True(t, ok)
	assert.Equal(t, "is_a(pic_01mouth, mouth).", f)

	_, ok = HasA().Compute("pic_01")
	assert.False(t, ok)

	assert.Equal(t, ":- modeb(*, has_a(+example, -part)).", HasA().Mode())
	assert.Equal(t, ":- modeb(*, is_a(+part, #organ)).", IsA().Mode())

	d, ok := IsA().Determination()
	require.True(t, ok)
	assert.Equal(t, ":- determination(face/1, is_a/2).", d)
}

func TestSpatialPredicates(t *testing.T) {
	tests := []struct {
		name     string
		pred     Predicate
		a, b     sample.Feature
		expected string
	}{
		{name: "frame contains nose", pred: Contains(), a: frame, b: nose, expected: "contains(pic_01face_frame, pic_01nose)."},
		{name: "nose does not contain frame", pred: Contains(), a: nose, b: frame},
		{name: "frame intersects nose", pred: Intersects(), a: frame, b: nose, expected: "intersects(pic_01face_frame, pic_01nose)."},
		{name: "nose mouth disjoint", pred: Disjoint(), a: nose, b: mouth, expected: "disjoint(pic_01nose, pic_01mouth)."},
		{name: "frame nose not disjoint", pred: Disjoint(), a: frame, b: nose},
		{name: "nose mouth no overlap", pred: Overlaps(), a: nose, b: mouth},
		{name: "nose above mouth", pred: TopOf(5), a: nose, b: mouth, expected: "top_of(pic_01nose, pic_01mouth)."},
		{name: "mouth not above nose", pred: TopOf(5), a: mouth, b: nose},
		{name: "nose not left of mouth", pred: LeftOf(5), a: nose, b: mouth},
		{name: "nose left of frame", pred: LeftOf(5), a: nose, b: frame, expected: "left_of(pic_01nose, pic_01face_frame)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := tt.pred.Compute("pic_01", tt.a, tt.b)
			if tt.expected == "" {
				assert.False(t, ok)
				assert.Empty(t, f)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestSpatialNeedsPair(t *testing.T) {
	_, ok := Disjoint().Compute("pic_01", nose)
	assert.False(t, ok)
}

func TestSpatialDegenerateBoxes(t *testing.T) {
	point := sample.NewFeature(geometry.Box{XMin: 5, XMax: 5, YMin: 5, YMax: 5}, sample.LeftEye)
	line := sample.NewFeature(geometry.Box{XMin: 0, XMax: 10, YMin: 5, YMax: 5}, sample.RightEye)

	for _, p := range Standard().Binary() {
		assert.NotPanics(t, func() {
			p.Compute("x", point, line)
			p.Compute("x", line, point)
			p.Compute("x", point, point)
		}, p.Name())
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Standard()

	var names []string
	for _, p := range c.All() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{
		"face", "has_a", "is_a", "contains", "intersects", "disjoint", "overlaps", "left_of", "top_of",
	}, names)

	assert.Equal(t, "face", c.Target().Name())
	assert.Len(t, c.Meta(), 2)
	assert.Len(t, c.Binary(), 6)

	for _, p := range c.Binary() {
		assert.Equal(t, ":- modeb(*, "+p.Name()+"(+part, +part)).", p.Mode())
		d, ok := p.Determination()
		require.True(t, ok)
		assert.Equal(t, ":- determination(face/1, "+p.Name()+"/2).", d)
	}

	p, ok := c.Lookup("left_of")
	require.True(t, ok)
	assert.Equal(t, Binary, p.Arity())

	_, ok = c.Lookup("right_of")
	assert.False(t, ok)
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(Face(), HasA(), Contains())
	require.NoError(t, err)
	assert.Len(t, c.All(), 3)

	_, err = NewCatalog(HasA(), Contains())
	assert.Error(t, err)

	_, err = NewCatalog(Face(), Contains(), Contains())
	assert.Error(t, err)
}

func TestArityString(t *testing.T) {
	assert.Equal(t, "unary", Unary.String())
	assert.Equal(t, "meta", Meta.String())
	assert.Equal(t, "binary", Binary.String())
}
