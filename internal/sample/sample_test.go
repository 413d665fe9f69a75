package sample

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/picasso-kb/internal/geometry"
)

func TestFeatureTypeNames(t *testing.T) {
	expected := []string{"left_eye", "right_eye", "nose", "mouth", "face_frame"}
	for i, ft := range FeatureTypes() {
		assert.Equal(t, expected[i], ft.String())

		parsed, err := ParseFeatureType(expected[i])
		require.NoError(t, err)
		assert.Equal(t, ft, parsed)
	}

	_, err := ParseFeatureType("ear")
	assert.Error(t, err)
	assert.Equal(t, "FeatureType(9)", FeatureType(9).String())
}

func TestPartID(t *testing.T) {
	assert.Equal(t, "pic_00046nose", PartID("pic_00046", Nose))
	assert.Equal(t, "pic_01face_frame", PartID("pic_01", FaceFrame))
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		heatmap  string
		expected string
	}{
		{heatmap: "output/ilp/deep_taylor_images/pic_00046.png", expected: "pic_00046"},
		{heatmap: "pic_01.jpg", expected: "pic_01"},
		{heatmap: "archive.tar.gz", expected: "archive.tar"},
		{heatmap: "no_extension", expected: "no_extension"},
		{heatmap: ".hidden", expected: ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.heatmap, func(t *testing.T) {
			s := Sample{Heatmap: tt.heatmap}
			assert.Equal(t, tt.expected, s.ID())
		})
	}
}

func TestRoundPrediction(t *testing.T) {
	assert.Equal(t, 0, RoundPrediction(0.2))
	assert.Equal(t, 0, RoundPrediction(0.5))
	assert.Equal(t, 1, RoundPrediction(0.51))
	assert.Equal(t, 1, RoundPrediction(1))
}

func TestValidate(t *testing.T) {
	valid := Sample{
		Features:       []Feature{NewFeature(geometry.Box{XMin: 1, XMax: 2, YMin: 1, YMax: 2}, Nose)},
		GroundTruth:    1,
		Prediction:     0.9,
		PredictedClass: 1,
		Heatmap:        "pic_01.png",
	}
	require.NoError(t, valid.Validate())

	mismatch := valid
	mismatch.PredictedClass = 0
	assert.Error(t, mismatch.Validate())

	outOfRange := valid
	outOfRange.Prediction = 1.2
	assert.Error(t, outOfRange.Validate())

	badTruth := valid
	badTruth.GroundTruth = 2
	assert.Error(t, badTruth.Validate())

	inverted := valid
	inverted.Features = []Feature{NewFeature(geometry.Box{XMin: 5, XMax: 2}, Mouth)}
	assert.Error(t, inverted.Validate())
}

func TestCheckUnique(t *testing.T) {
	samples := []Sample{
		{Heatmap: "a/pic_01.png"},
		{Heatmap: "a/pic_02.png"},
	}
	require.NoError(t, CheckUnique(samples))

	samples = append(samples, Sample{Heatmap: "b/pic_01.jpg"})
	err := CheckUnique(samples)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateIdentifier))

	var dup *DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "pic_01", dup.ID)
	assert.Equal(t, "a/pic_01.png", dup.First)
	assert.Equal(t, "b/pic_01.jpg", dup.Second)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.gob")
	samples := []Sample{
		{
			Features: []Feature{
				NewFeature(geometry.Box{XMin: 10, XMax: 50, YMin: 10, YMax: 30}, Nose),
				NewFeature(geometry.Box{XMin: 15, XMax: 45, YMin: 40, YMax: 55}, Mouth),
			},
			GroundTruth:    1,
			Prediction:     0.75,
			PredictedClass: 1,
			Heatmap:        "heatmaps/pic_01.png",
			OrigFile:       "test/pos/pic_01.png",
		},
		{Heatmap: "heatmaps/pic_02.png"},
	}

	require.NoError(t, Save(path, samples))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, samples[0], loaded[0])
	assert.Equal(t, "pic_02", loaded[1].ID())
	assert.Empty(t, loaded[1].Features)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}
