package aleph

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/kozaktomas/picasso-kb/internal/constants"
	"github.com/kozaktomas/picasso-kb/internal/predicate"
	"github.com/kozaktomas/picasso-kb/internal/sample"
)

// Sinks are the three output streams of a compilation.
type Sinks struct {
	Background io.Writer
	Positive   io.Writer
	Negative   io.Writer
}

// Files are the paths of the three fact files sharing a directory and stem.
type Files struct {
	Background string
	Positive   string
	Negative   string
}

// OutputFiles returns the fact file paths for a directory and stem.
func OutputFiles(dir, stem string) Files {
	base := filepath.Join(dir, stem)
	return Files{
		Background: base + constants.BackgroundExt,
		Positive:   base + constants.PositiveExt,
		Negative:   base + constants.NegativeExt,
	}
}

// Stats summarizes a compilation run.
type Stats struct {
	Samples    int
	Positive   int
	Negative   int
	Background int // fact lines, header excluded
}

// Progress receives one tick per compiled sample. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(num int) error
}

// Compiler turns samples into Aleph examples and background knowledge.
type Compiler struct {
	catalog  *predicate.Catalog
	settings Settings
	progress Progress
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithProgress reports every compiled sample to p.
func WithProgress(p Progress) Option {
	return func(c *Compiler) { c.progress = p }
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// NewCompiler creates a compiler for the catalog and solver settings.
func NewCompiler(catalog *predicate.Catalog, settings Settings, opts ...Option) *Compiler {
	c := &Compiler{
		catalog:  catalog,
		settings: settings,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Header returns the declarations written once at the top of the background
// file: the module directive, every mode, every determination, then the
// solver directives.
func (c *Compiler) Header() []string {
	lines := []string{c.settings.Module}
	for _, p := range c.catalog.All() {
		lines = append(lines, p.Mode())
	}
	for _, p := range c.catalog.All() {
		if d, ok := p.Determination(); ok {
			lines = append(lines, d)
		}
	}
	for _, d := range c.settings.Directives {
		lines = append(lines, d.Line())
	}
	return lines
}

// Facts returns the example fact and the background facts of one sample, in
// the order Compile writes them.
func (c *Compiler) Facts(s *sample.Sample) (example string, background []string) {
	example = c.visit(s, func(line string) {
		background = append(background, line)
	})
	return example, background
}

// visit emits the background facts of s and returns its example fact.
//
// Binary predicates are evaluated over ordered pairs of distinct feature
// indices, so two features of the same kind are still compared and a
// symmetric relation yields one fact per direction.
func (c *Compiler) visit(s *sample.Sample, emit func(string)) string {
	id := s.ID()
	example, _ := c.catalog.Target().Compute(id)

	meta := c.catalog.Meta()
	for _, f := range s.Features {
		for _, p := range meta {
			if line, ok := p.Compute(id, f); ok {
				emit(line)
			}
		}
	}

	for _, p := range c.catalog.Binary() {
		for i, a := range s.Features {
			for j, b := range s.Features {
				if i == j {
					continue
				}
				if line, ok := p.Compute(id, a, b); ok {
					emit(line)
				}
			}
		}
	}

	return example
}

// Compile writes the header and every sample's facts to the sinks. Samples go
// to the positive or negative stream by their predicted class, not their
// ground truth.
func (c *Compiler) Compile(samples []sample.Sample, out Sinks) (Stats, error) {
	if err := sample.CheckUnique(samples); err != nil {
		return Stats{}, err
	}
	for i := range samples {
		if err := samples[i].Validate(); err != nil {
			return Stats{}, err
		}
	}

	bg := newLineWriter(out.Background)
	// Indexed by predicted class.
	examples := [2]*lineWriter{newLineWriter(out.Negative), newLineWriter(out.Positive)}

	for _, line := range c.Header() {
		bg.writeln(line)
	}
	header := bg.lines

	for i := range samples {
		s := &samples[i]
		examples[s.PredictedClass].writeln(c.visit(s, bg.writeln))
		if err := bg.err; err != nil {
			return Stats{}, fmt.Errorf("failed to write background knowledge: %w", err)
		}
		if c.progress != nil {
			_ = c.progress.Add(1)
		}
	}

	sinks := []struct {
		name string
		w    *lineWriter
	}{
		{"background knowledge", bg},
		{"negative examples", examples[0]},
		{"positive examples", examples[1]},
	}
	for _, sink := range sinks {
		if err := sink.w.flush(); err != nil {
			return Stats{}, fmt.Errorf("failed to write %s: %w", sink.name, err)
		}
	}

	stats := Stats{
		Samples:    len(samples),
		Negative:   examples[0].lines,
		Positive:   examples[1].lines,
		Background: bg.lines - header,
	}
	c.logger.Info("compiled knowledge base",
		"samples", stats.Samples,
		"positive", stats.Positive,
		"negative", stats.Negative,
		"background_facts", stats.Background)

	return stats, nil
}

// CompileFiles compiles into <dir>/<stem>.{b,f,n}. The files are written to
// temporaries in dir and only renamed into place once all three are
// complete; on failure the previous files are left untouched.
func (c *Compiler) CompileFiles(samples []sample.Sample, dir, stem string) (Files, Stats, error) {
	files := OutputFiles(dir, stem)

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output dir is from trusted config
		return files, Stats{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	targets := []string{files.Background, files.Positive, files.Negative}
	pending := make([]*renameio.PendingFile, 0, len(targets))
	defer func() {
		for _, p := range pending {
			_ = p.Cleanup()
		}
	}()

	for _, path := range targets {
		p, err := renameio.TempFile(dir, path)
		if err != nil {
			return files, Stats{}, fmt.Errorf("failed to create %s: %w", path, err)
		}
		pending = append(pending, p)
		if err := p.Chmod(0o644); err != nil {
			return files, Stats{}, fmt.Errorf("failed to set mode of %s: %w", path, err)
		}
	}

	stats, err := c.Compile(samples, Sinks{
		Background: pending[0],
		Positive:   pending[1],
		Negative:   pending[2],
	})
	if err != nil {
		return files, Stats{}, err
	}

	for i, p := range pending {
		if err := p.CloseAtomicallyReplace(); err != nil {
			return files, Stats{}, fmt.Errorf("failed to commit %s: %w", targets[i], err)
		}
	}

	return files, stats, nil
}

// lineWriter writes clauses one per line and keeps the first write error.
type lineWriter struct {
	w     *bufio.Writer
	err   error
	lines int
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

// writeln writes a non-empty line followed by a newline.
func (l *lineWriter) writeln(text string) {
	if text == "" || l.err != nil {
		return
	}
	if _, err := l.w.WriteString(text); err != nil {
		l.err = err
		return
	}
	if err := l.w.WriteByte('\n'); err != nil {
		l.err = err
		return
	}
	l.lines++
}

func (l *lineWriter) flush() error {
	if l.err != nil {
		return l.err
	}
	return l.w.Flush()
}
