package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kozaktomas/picasso-kb/internal/aleph"
	"github.com/kozaktomas/picasso-kb/internal/constants"
)

//go:embed aleph.yaml
var alephYAML []byte

type Config struct {
	Paths      PathsConfig
	Aleph      AlephConfig
	Predicates PredicatesConfig
	Ingest     IngestConfig
	Selection  SelectionConfig
}

type PathsConfig struct {
	Base       string // project root, defaults to .
	ILP        string // root of all generated ILP artifacts (default <base>/output/ilp)
	Test       string // test dataset the classified images come from (default <base>/datasets/test)
	Heatmaps   string // heatmap images, one per classified image
	Annotation string // VOC xml files, named after the heatmap they annotate
	Pickles    string // classification records and the persisted sample collection
	Aleph      string // output directory of the .b/.f/.n files
	Images     string // selected images copied per class
}

// Samples returns the path of the persisted sample collection.
func (c *PathsConfig) Samples() string {
	return filepath.Join(c.Pickles, constants.SamplesFile)
}

// Records returns the default path of the classification records.
func (c *PathsConfig) Records() string {
	return filepath.Join(c.Pickles, "predictions.csv")
}

type AlephConfig struct {
	Stem         string
	SettingsFile string // optional override of the embedded settings
}

type PredicatesConfig struct {
	Tolerance float64 // centroid tolerance in pixels for left_of and top_of
}

type IngestConfig struct {
	Concurrency int
}

type SelectionConfig struct {
	SamplesPerClass int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a non-negative float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	base := envString("PICASSO_BASE_PATH", ".")
	ilp := envString("PICASSO_ILP_PATH", filepath.Join(base, "output", "ilp"))

	return &Config{
		Paths: PathsConfig{
			Base:       base,
			ILP:        ilp,
			Test:       envString("PICASSO_TEST_PATH", filepath.Join(base, "datasets", "test")),
			Heatmaps:   envString("PICASSO_HEATMAP_PATH", filepath.Join(ilp, "deep_taylor_images")),
			Annotation: envString("PICASSO_ANNOTATION_PATH", filepath.Join(ilp, "annotations")),
			Pickles:    envString("PICASSO_PICKLE_PATH", filepath.Join(ilp, "pickles")),
			Aleph:      envString("PICASSO_ALEPH_PATH", filepath.Join(ilp, "aleph")),
			Images:     envString("PICASSO_IMAGES_PATH", filepath.Join(ilp, "images")),
		},
		Aleph: AlephConfig{
			Stem:         envString("ALEPH_STEM", constants.DefaultStem),
			SettingsFile: os.Getenv("ALEPH_SETTINGS_FILE"),
		},
		Predicates: PredicatesConfig{
			Tolerance: envFloat("PREDICATE_TOLERANCE", constants.DefaultTolerance),
		},
		Ingest: IngestConfig{
			Concurrency: envInt("INGEST_CONCURRENCY", constants.DefaultIngestConcurrency),
		},
		Selection: SelectionConfig{
			SamplesPerClass: envInt("ILP_SAMPLES", constants.DefaultSamplesPerClass),
		},
	}
}

// AlephSettings returns the solver settings, read from the override file when
// one is configured and from the embedded defaults otherwise.
func (c *Config) AlephSettings() (aleph.Settings, error) {
	data := alephYAML
	if c.Aleph.SettingsFile != "" {
		var err error
		data, err = os.ReadFile(c.Aleph.SettingsFile) //nolint:gosec // path is from trusted config
		if err != nil {
			return aleph.Settings{}, fmt.Errorf("failed to read aleph settings: %w", err)
		}
	}
	return aleph.ParseSettings(data)
}
