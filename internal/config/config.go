// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Output   OutputConfig   `mapstructure:"output"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig governs access to the leaders directory API.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MaxRetry       int    `mapstructure:"max_retry"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ScrapeConfig throttles and tunes biography extraction.
type ScrapeConfig struct {
	MinDelaySeconds   float64 `mapstructure:"min_delay_seconds"`
	MaxDelaySeconds   float64 `mapstructure:"max_delay_seconds"`
	MinParagraphChars int     `mapstructure:"min_paragraph_chars"`
}

// CacheConfig selects and parameterizes the cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	DSN     string `mapstructure:"dsn"`
}

// OutputConfig sets where the consolidated dataset is written.
type OutputConfig struct {
	Path      string `mapstructure:"path"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSObject string `mapstructure:"gcs_object"`
}

// PipelineConfig governs orchestration behavior.
type PipelineConfig struct {
	Countries         []string `mapstructure:"countries"`
	Concurrency       int      `mapstructure:"concurrency"`
	RunTimeoutSeconds int      `mapstructure:"run_timeout_seconds"`
}

// MetricsConfig controls the optional ops HTTP listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.max_retry", 3)
	v.SetDefault("api.user_agent", "leaderscraper/0.1")
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("scrape.min_delay_seconds", 1.0)
	v.SetDefault("scrape.max_delay_seconds", 3.0)
	v.SetDefault("scrape.min_paragraph_chars", 40)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", ".cache")
	v.SetDefault("output.path", "leaders.json")
	v.SetDefault("output.gcs_object", "leaders.json")
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.run_timeout_seconds", 0)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. Failures here
// are fatal at startup, before any network activity.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.MaxRetry < 0 {
		return fmt.Errorf("api.max_retry must be >= 0")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0")
	}
	if c.Scrape.MinDelaySeconds < 0 || c.Scrape.MaxDelaySeconds < 0 {
		return fmt.Errorf("scrape delays must be >= 0")
	}
	if c.Scrape.MinDelaySeconds > c.Scrape.MaxDelaySeconds {
		return fmt.Errorf("scrape.min_delay_seconds must be <= scrape.max_delay_seconds")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	switch c.Cache.Backend {
	case "file", "memory":
	case "postgres":
		if c.Cache.DSN == "" {
			return fmt.Errorf("cache.dsn is required when cache.backend is postgres")
		}
	default:
		return fmt.Errorf("cache.backend must be one of file, memory, postgres")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id is required when pubsub.topic_name is set")
	}
	return nil
}

// MinDelay returns the lower scrape delay bound as a duration.
func (c Config) MinDelay() time.Duration {
	return time.Duration(c.Scrape.MinDelaySeconds * float64(time.Second))
}

// MaxDelay returns the upper scrape delay bound as a duration.
func (c Config) MaxDelay() time.Duration {
	return time.Duration(c.Scrape.MaxDelaySeconds * float64(time.Second))
}

// HTTPTimeout converts the API timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RunTimeout returns the run budget, zero meaning no limit.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Pipeline.RunTimeoutSeconds) * time.Second
}
