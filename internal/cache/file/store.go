// Package file implements a local filesystem cache store.
package file

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

// Config captures the parameters for the filesystem cache.
type Config struct {
	// BaseDir is the root directory where cache entries are stored.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Store keeps one JSON file per entry: {country}_leaders.json for leader
// lists and {leader}_bio.json for biographies. Presence of a file is
// treated as validity; there is no expiry. Corrupt entries read as
// absent so the run re-fetches instead of crashing.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

// New creates a filesystem-backed cache store.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	return &Store{
		baseDir: cfg.BaseDir,
		logger:  logger,
	}, nil
}

// Leaders returns the cached leader list for a country, if present.
func (s *Store) Leaders(_ context.Context, country string) ([]scraper.Leader, bool) {
	var leaders []scraper.Leader
	if !s.read(country+"_leaders.json", &leaders) {
		return nil, false
	}
	return leaders, true
}

// PutLeaders replaces the cached leader list for a country.
func (s *Store) PutLeaders(_ context.Context, country string, leaders []scraper.Leader) error {
	return s.write(country+"_leaders.json", leaders)
}

// Biography returns the cached biography for a leader, if present. An
// entry with empty content is a valid hit: it marks a page already
// scanned with nothing to extract.
func (s *Store) Biography(_ context.Context, leaderID string) (scraper.Biography, bool) {
	var bio scraper.Biography
	if !s.read(leaderID+"_bio.json", &bio) {
		return scraper.Biography{}, false
	}
	return bio, true
}

// PutBiography replaces the cached biography for a leader.
func (s *Store) PutBiography(_ context.Context, bio scraper.Biography) error {
	if bio.LeaderID == "" {
		return fmt.Errorf("biography leader id is required")
	}
	return s.write(bio.LeaderID+"_bio.json", bio)
}

func (s *Store) read(name string, out any) bool {
	path, err := s.entryPath(name)
	if err != nil {
		s.logger.Warn("invalid cache key", zap.String("entry", name), zap.Error(err))
		return false
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is confined to baseDir
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unreadable cache entry, treating as miss",
				zap.String("entry", name), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt cache entry, treating as miss",
			zap.String("entry", name), zap.Error(err))
		return false
	}
	return true
}

// write serializes the payload to a temporary file and renames it into
// place, so no reader ever observes a partially written entry.
func (s *Store) write(name string, payload any) error {
	path, err := s.entryPath(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename cache entry into place: %w", err)
	}
	return nil
}

func (s *Store) entryPath(name string) (string, error) {
	fullPath := filepath.Join(s.baseDir, name)

	// Country and leader identifiers come from remote payloads; keep
	// them from escaping the cache directory.
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("cache key escapes base directory")
	}
	return fullPath, nil
}
