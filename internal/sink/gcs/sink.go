// Package gcs uploads the consolidated dataset to Google Cloud Storage.
package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"leaderscraper/internal/scraper"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string `mapstructure:"gcs_bucket" yaml:"gcs_bucket"`
	Object string `mapstructure:"gcs_object" yaml:"gcs_object"`
}

// Sink writes the dataset to a configured GCS bucket object.
type Sink struct {
	client *storage.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a GCS-backed sink.
func New(client *storage.Client, cfg Config, logger *zap.Logger) (*Sink, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if strings.TrimSpace(cfg.Object) == "" {
		cfg.Object = "leaders.json"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{client: client, cfg: cfg, logger: logger}, nil
}

// Write uploads the marshaled dataset and returns a gs:// URI.
func (s *Sink) Write(ctx context.Context, dataset scraper.Dataset) (string, error) {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}

	writer := s.client.Bucket(s.cfg.Bucket).Object(s.cfg.Object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("upload dataset: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("upload dataset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", s.cfg.Bucket, s.cfg.Object)
	s.logger.Info("dataset uploaded", zap.String("uri", uri), zap.Int("bytes", len(data)))
	return uri, nil
}
