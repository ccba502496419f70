package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
api:
  base_url: https://leaders.example.com
  max_retry: 5
  user_agent: test-agent
  timeout_seconds: 30
scrape:
  min_delay_seconds: 0.5
  max_delay_seconds: 2.5
  min_paragraph_chars: 60
cache:
  backend: memory
output:
  path: out/leaders.json
pipeline:
  countries: ["be", "fr"]
  concurrency: 2
  run_timeout_seconds: 120
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://leaders.example.com" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxRetry != 5 || cfg.API.UserAgent != "test-agent" {
		t.Fatalf("expected api overrides to apply: %+v", cfg.API)
	}
	if cfg.Scrape.MinDelaySeconds != 0.5 || cfg.Scrape.MaxDelaySeconds != 2.5 {
		t.Fatalf("expected scrape overrides to apply: %+v", cfg.Scrape)
	}
	if len(cfg.Pipeline.Countries) != 2 || cfg.Pipeline.Countries[0] != "be" {
		t.Fatalf("expected countries to be loaded: %+v", cfg.Pipeline.Countries)
	}
	if got := cfg.HTTPTimeout(); got != 30*time.Second {
		t.Fatalf("expected http timeout 30s, got %v", got)
	}
	if got := cfg.RunTimeout(); got != 2*time.Minute {
		t.Fatalf("expected run timeout 2m, got %v", got)
	}
	if got := cfg.MinDelay(); got != 500*time.Millisecond {
		t.Fatalf("expected min delay 500ms, got %v", got)
	}
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "api.base_url") {
		t.Fatalf("expected base_url error, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		API:      APIConfig{BaseURL: "https://leaders.example.com", MaxRetry: 1, TimeoutSeconds: 10},
		Scrape:   ScrapeConfig{MinDelaySeconds: 1, MaxDelaySeconds: 2},
		Cache:    CacheConfig{Backend: "file", Dir: ".cache"},
		Pipeline: PipelineConfig{Concurrency: 1},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "negative max retry",
			cfg: func() Config {
				c := base
				c.API.MaxRetry = -1
				return c
			}(),
			want: "api.max_retry",
		},
		{
			name: "inverted delay bounds",
			cfg: func() Config {
				c := base
				c.Scrape.MinDelaySeconds = 5
				return c
			}(),
			want: "min_delay_seconds",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Scrape.MinDelaySeconds = -1
				return c
			}(),
			want: "delays",
		},
		{
			name: "invalid concurrency",
			cfg: func() Config {
				c := base
				c.Pipeline.Concurrency = 0
				return c
			}(),
			want: "pipeline.concurrency",
		},
		{
			name: "unknown cache backend",
			cfg: func() Config {
				c := base
				c.Cache.Backend = "redis"
				return c
			}(),
			want: "cache.backend",
		},
		{
			name: "postgres without dsn",
			cfg: func() Config {
				c := base
				c.Cache.Backend = "postgres"
				return c
			}(),
			want: "cache.dsn",
		},
		{
			name: "topic without project",
			cfg: func() Config {
				c := base
				c.PubSub.TopicName = "runs"
				return c
			}(),
			want: "pubsub.project_id",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
