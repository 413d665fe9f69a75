package annotation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/picasso-kb/internal/geometry"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

const noseMouthXML = `<annotation>
	<folder>deep_taylor_images</folder>
	<filename>neg_pos_pic_00001.png</filename>
	<size><width>224</width><height>224</height><depth>3</depth></size>
	<object>
		<name>nose</name>
		<pose>Unspecified</pose>
		<bndbox><xmin>10</xmin><ymin>10</ymin><xmax>50</xmax><ymax>30</ymax></bndbox>
	</object>
	<object>
		<name>mouth</name>
		<bndbox><xmin>15</xmin><ymin>40</ymin><xmax>45</xmax><ymax>55</ymax></bndbox>
	</object>
</annotation>`

func TestParse(t *testing.T) {
	features, err := Parse(strings.NewReader(noseMouthXML))
	require.NoError(t, err)

	assert.Equal(t, []sample.Feature{
		sample.NewFeature(geometry.Box{XMin: 10, XMax: 50, YMin: 10, YMax: 30}, sample.Nose),
		sample.NewFeature(geometry.Box{XMin: 15, XMax: 45, YMin: 40, YMax: 55}, sample.Mouth),
	}, features)
}

func TestParse_NoObjects(t *testing.T) {
	features, err := Parse(strings.NewReader(`<annotation><filename>a.png</filename></annotation>`))
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not xml",
			doc:  "this is not xml",
		},
		{
			name: "unknown kind",
			doc:  `<annotation><object><name>ear</name><bndbox><xmin>1</xmin><xmax>2</xmax><ymin>1</ymin><ymax>2</ymax></bndbox></object></annotation>`,
		},
		{
			name: "missing bndbox",
			doc:  `<annotation><object><name>nose</name></object></annotation>`,
		},
		{
			name: "missing coordinate",
			doc:  `<annotation><object><name>nose</name><bndbox><xmin>1</xmin><xmax>2</xmax><ymin>1</ymin></bndbox></object></annotation>`,
		},
		{
			name: "non-integer coordinate",
			doc:  `<annotation><object><name>nose</name><bndbox><xmin>1.5</xmin><xmax>2</xmax><ymin>1</ymin><ymax>2</ymax></bndbox></object></annotation>`,
		},
		{
			name: "inverted x",
			doc:  `<annotation><object><name>nose</name><bndbox><xmin>9</xmin><xmax>2</xmax><ymin>1</ymin><ymax>2</ymax></bndbox></object></annotation>`,
		},
		{
			name: "inverted y",
			doc:  `<annotation><object><name>mouth</name><bndbox><xmin>1</xmin><xmax>2</xmax><ymin>8</ymin><ymax>2</ymax></bndbox></object></annotation>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedAnnotation), err.Error())
		})
	}
}

func TestParse_ZeroAreaBox(t *testing.T) {
	doc := `<annotation><object><name>left_eye</name><bndbox><xmin>5</xmin><xmax>5</xmax><ymin>7</ymin><ymax>7</ymax></bndbox></object></annotation>`

	features, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, sample.LeftEye, features[0].Kind)
}

func TestOriginalPath(t *testing.T) {
	path, err := OriginalPath("neg_pos_pic_00046.png", "datasets/test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("datasets", "test", "pos", "pic_00046.png"), path)
	assert.Equal(t, filepath.Join("pos", "pic_00046.png"), RecordKey(path))

	path, err = OriginalPath(filepath.Join("heatmaps", "x_pos_neg_pic_1.png"), "test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("test", "neg", "pic_1.png"), path)

	_, err = OriginalPath("pic_1.png", "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
}

type fixture struct {
	heatmaps    string
	annotations string
	test        string
	records     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		heatmaps:    filepath.Join(root, "heatmaps"),
		annotations: filepath.Join(root, "annotations"),
		test:        filepath.Join(root, "test"),
		records:     filepath.Join(root, "predictions.csv"),
	}
	require.NoError(t, os.MkdirAll(f.heatmaps, 0o755))
	require.NoError(t, os.MkdirAll(f.annotations, 0o755))
	return f
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func (f *fixture) heatmap(t *testing.T, name string) {
	f.write(t, filepath.Join(f.heatmaps, name), "png")
}

func (f *fixture) annotation(t *testing.T, name, doc string) {
	f.write(t, filepath.Join(f.annotations, name), doc)
}

func (f *fixture) options() Options {
	return Options{
		HeatmapDir:    f.heatmaps,
		AnnotationDir: f.annotations,
		TestDir:       f.test,
		RecordsPath:   f.records,
		Concurrency:   2,
	}
}

const recordsCSV = `filename,ground_truth,prediction,predicted_class
pos/pic_00001.png,1,0.8,1
neg/pic_00002.png,0,0.3,0
pos/pic_00003.png,1,0.9,1
`

func TestIngest(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.records, recordsCSV)

	f.heatmap(t, "pos_pos_pic_00001.png")
	f.annotation(t, "pos_pos_pic_00001.xml", noseMouthXML)

	f.heatmap(t, "neg_neg_pic_00002.png")
	f.annotation(t, "neg_neg_pic_00002.xml", `<annotation></annotation>`)

	// No annotation for this heatmap.
	f.heatmap(t, "pos_pos_pic_00003.png")

	// No record for this heatmap.
	f.heatmap(t, "pos_pos_pic_00009.png")
	f.annotation(t, "pos_pos_pic_00009.xml", noseMouthXML)

	// No heatmap for this annotation.
	f.annotation(t, "neg_neg_pic_00005.xml", noseMouthXML)

	progress := &countingProgress{}
	opts := f.options()
	opts.Progress = progress

	result, err := Ingest(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Samples, 2)

	first := result.Samples[0]
	assert.Equal(t, "neg_neg_pic_00002", first.ID())
	assert.Equal(t, 0, first.PredictedClass)
	assert.Empty(t, first.Features)
	assert.Equal(t, filepath.Join(f.test, "neg", "pic_00002.png"), first.OrigFile)

	second := result.Samples[1]
	assert.Equal(t, "pos_pos_pic_00001", second.ID())
	assert.Equal(t, 1, second.GroundTruth)
	assert.Equal(t, 0.8, second.Prediction)
	assert.Equal(t, 1, second.PredictedClass)
	assert.Equal(t, filepath.Join(f.heatmaps, "pos_pos_pic_00001.png"), second.Heatmap)
	assert.Len(t, second.Features, 2)
	require.NoError(t, second.Validate())

	assert.Equal(t, 1, result.Unannotated)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "pos_pos_pic_00009.png", result.Skipped[0].Name)
	assert.Equal(t, "neg_neg_pic_00005.xml", result.Skipped[1].Name)
	for _, s := range result.Skipped {
		assert.True(t, errors.Is(s.Err, ErrUnresolvedReference))
	}

	assert.Equal(t, 2, progress.n)
}

func TestIngest_MissingInputs(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		f := newFixture(t)
		_, err := Ingest(context.Background(), f.options())
		assert.True(t, errors.Is(err, ErrMissingInput), err)
	})

	t.Run("heatmaps", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.records, recordsCSV)
		require.NoError(t, os.RemoveAll(f.heatmaps))

		_, err := Ingest(context.Background(), f.options())
		assert.True(t, errors.Is(err, ErrMissingInput), err)
	})

	t.Run("annotations", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.records, recordsCSV)
		require.NoError(t, os.RemoveAll(f.annotations))

		_, err := Ingest(context.Background(), f.options())
		assert.True(t, errors.Is(err, ErrMissingInput), err)
	})
}

func TestIngest_MalformedAnnotationFails(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.records, recordsCSV)
	f.heatmap(t, "pos_pos_pic_00001.png")
	f.annotation(t, "pos_pos_pic_00001.xml",
		`<annotation><object><name>nose</name><bndbox><xmin>9</xmin><xmax>2</xmax><ymin>1</ymin><ymax>2</ymax></bndbox></object></annotation>`)

	_, err := Ingest(context.Background(), f.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedAnnotation))
}

func TestIngest_DuplicateIdentifier(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.records, recordsCSV)
	f.heatmap(t, "pos_pos_pic_00001.png")
	f.heatmap(t, "pos_pos_pic_00001.jpg")

	_, err := Ingest(context.Background(), f.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sample.ErrDuplicateIdentifier))
}

func TestIngest_Deterministic(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.records, recordsCSV)
	for _, stem := range []string{"pos_pos_pic_00003", "pos_pos_pic_00001", "neg_neg_pic_00002"} {
		f.heatmap(t, stem+".png")
		f.annotation(t, stem+".xml", noseMouthXML)
	}

	first, err := Ingest(context.Background(), f.options())
	require.NoError(t, err)

	opts := f.options()
	opts.Concurrency = 8
	second, err := Ingest(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples)
	var ids []string
	for _, s := range first.Samples {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"neg_neg_pic_00002", "pos_pos_pic_00001", "pos_pos_pic_00003"}, ids)
}

type countingProgress struct {
	n int
}

func (p *countingProgress) Add(num int) error {
	p.n += num
	return nil
}
