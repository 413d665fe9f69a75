package sample

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

const collectionVersion = 1

// collection is the on-disk envelope of a persisted sample set.
type collection struct {
	Version int
	Samples []Sample
}

// Save persists the samples to path as a gob file. The file is replaced
// atomically so readers never see a partial collection.
func Save(path string, samples []Sample) error {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(collection{Version: collectionVersion, Samples: samples}); err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // path is from trusted config
		return fmt.Errorf("failed to create samples directory: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write samples file: %w", err)
	}

	return nil
}

// Load reads a sample collection written by Save.
func Load(path string) ([]Sample, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read samples file: %w", err)
	}

	var c collection
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	if c.Version != collectionVersion {
		return nil, fmt.Errorf("unsupported samples file version %d", c.Version)
	}

	return c.Samples, nil
}
