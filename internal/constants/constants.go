// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Predicate constants
const (
	// DefaultTolerance is the centroid offset in pixels a part must exceed to be
	// left of or on top of another part
	DefaultTolerance = 5.0
)

// Knowledge base constants
const (
	// DefaultStem is the shared file stem of the background, positive and negative files
	DefaultStem = "picasso"

	// BackgroundExt, PositiveExt and NegativeExt are the extensions of the three fact files
	BackgroundExt = ".b"
	PositiveExt   = ".f"
	NegativeExt   = ".n"

	// SamplesFile is the filename of the persisted sample collection
	SamplesFile = "samples.gob"
)

// Ingest constants
const (
	// AnnotationExt is the extension of the VOC annotation files
	AnnotationExt = ".xml"

	// DefaultIngestConcurrency is the default number of annotation files parsed in parallel
	DefaultIngestConcurrency = 4
)

// Selection constants
const (
	// DefaultSamplesPerClass is the number of images picked per predicted class
	DefaultSamplesPerClass = 50

	// SampleStep is the granularity the per-class count must be a multiple of
	SampleStep = 10
)
