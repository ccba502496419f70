// Package fs writes the consolidated dataset to the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"leaderscraper/internal/scraper"
)

// Config captures the parameters for the filesystem sink.
type Config struct {
	// Path is the output file, parent directories are created as needed.
	Path string `mapstructure:"path" yaml:"path"`
}

// Sink writes the dataset as pretty-printed JSON. The write is atomic:
// a temp file in the target directory is renamed over the destination,
// so readers never observe a partially written dataset.
type Sink struct {
	path   string
	logger *zap.Logger
}

// New creates a filesystem sink.
func New(cfg Config, logger *zap.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Sink{path: cfg.Path, logger: logger}, nil
}

// Write marshals the dataset and replaces the output file, returning a
// file:// URI for the written artifact.
func (s *Sink) Write(_ context.Context, dataset scraper.Dataset) (string, error) {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("replace output file: %w", err)
	}

	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	s.logger.Info("dataset written", zap.String("path", abs), zap.Int("bytes", len(data)))
	return "file://" + abs, nil
}
