package gen

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Writer writes the output of a graph to a file.
type Writer struct {
	graph   *Graph
	path    string
	metrics *WriterMetrics
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	Declarations int
	TotalBytes   int64
	Unchanged    bool
	GenTime      int64 // nanoseconds
	WriteTime    int64 // nanoseconds
}

// NewWriter creates a writer of g's output to path. An empty path uses
// the configured Target.
func NewWriter(g *Graph, path string) *Writer {
	if path == "" {
		path = g.Target
	}
	return &Writer{graph: g, path: path, metrics: &WriterMetrics{}}
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() *WriterMetrics {
	return w.metrics
}

// Write renders the graph and writes it. The file is replaced atomically
// and left untouched if its content would not change.
func (w *Writer) Write() error {
	if w.path == "" {
		return NewConfigError("Target", nil, "no output path")
	}
	// 1. Render
	start := time.Now()
	out := w.graph.Gen()
	w.metrics.GenTime = time.Since(start).Nanoseconds()
	w.metrics.Declarations = len(w.graph.Declarations())
	w.metrics.TotalBytes = int64(len(out))

	// 2. Skip identical output
	prev, err := os.ReadFile(w.path)
	switch {
	case err == nil && bytes.Equal(prev, out):
		w.metrics.Unchanged = true
		w.graph.log.Debug("output unchanged", zap.String("path", w.path))
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return NewGenerationError("write", w.path, "read previous output", err)
	}

	// 3. Ensure directory exists
	start = time.Now()
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewGenerationError("write", w.path, "create directory", err)
	}

	// 4. Write to a temporary file and rename
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return NewGenerationError("write", w.path, "create temporary file", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return NewGenerationError("write", w.path, "", err)
	}
	if err := tmp.Close(); err != nil {
		return NewGenerationError("write", w.path, "", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return NewGenerationError("write", w.path, "", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return NewGenerationError("write", w.path, "replace output", err)
	}
	w.metrics.WriteTime = time.Since(start).Nanoseconds()
	w.graph.log.Info("output written",
		zap.String("path", w.path),
		zap.Int("declarations", w.metrics.Declarations),
		zap.Int64("bytes", w.metrics.TotalBytes),
	)
	return nil
}

// WriteFile is the convenience function to write the output of g to path.
func (g *Graph) WriteFile(path string) error {
	return NewWriter(g, path).Write()
}
