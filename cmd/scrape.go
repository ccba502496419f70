package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	gcpstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leaderscraper/internal/api"
	filecache "leaderscraper/internal/cache/file"
	memorycache "leaderscraper/internal/cache/memory"
	pgcache "leaderscraper/internal/cache/postgres"
	"leaderscraper/internal/clock/system"
	"leaderscraper/internal/config"
	"leaderscraper/internal/directory"
	collyfetcher "leaderscraper/internal/fetcher/colly"
	restyfetcher "leaderscraper/internal/fetcher/resty"
	retryfetcher "leaderscraper/internal/fetcher/retry"
	"leaderscraper/internal/id/uuid"
	"leaderscraper/internal/logging"
	"leaderscraper/internal/metrics"
	"leaderscraper/internal/pipeline"
	"leaderscraper/internal/policy/ratelimit"
	pubsubpublisher "leaderscraper/internal/publisher/pubsub"
	"leaderscraper/internal/scraper"
	fssink "leaderscraper/internal/sink/fs"
	gcssink "leaderscraper/internal/sink/gcs"
	"leaderscraper/internal/wiki"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape: countries, leaders, biographies, leaders.json",
		RunE:  runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout := cfg.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	metrics.Init()
	var ops *api.Server
	if cfg.Metrics.Addr != "" {
		ops = api.NewServer(cfg.Metrics.Addr, logger)
		ops.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ops.Shutdown(shutdownCtx); err != nil {
				logger.Warn("ops server shutdown error", zap.Error(err))
			}
		}()
	}

	cache, closeCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	sink, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	publisher, topic, closePublisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	policy := scraper.NewExponentialRetryPolicy(cfg.API.MaxRetry, 0, 0)

	directoryFetcher := retryfetcher.New(
		restyfetcher.New(restyfetcher.Config{
			UserAgent: cfg.API.UserAgent,
			Timeout:   cfg.HTTPTimeout(),
		}),
		policy, "directory", logger,
	)
	dir := directory.New(directoryFetcher, cfg.API.BaseURL, logger)

	pageFetcher := retryfetcher.New(
		collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.API.UserAgent,
			Timeout:   cfg.HTTPTimeout(),
		}),
		policy, "wiki", logger,
	)
	limiter := ratelimit.New(ratelimit.Config{
		MinDelay:   cfg.MinDelay(),
		MaxDelay:   cfg.MaxDelay(),
		Coordinate: cfg.Pipeline.Concurrency > 1,
	})
	bios := wiki.New(pageFetcher, limiter, wiki.Config{
		MinParagraphChars: cfg.Scrape.MinParagraphChars,
	}, logger)

	p, err := pipeline.New(
		pipeline.Config{
			Countries:   cfg.Pipeline.Countries,
			Concurrency: cfg.Pipeline.Concurrency,
		},
		pipeline.Deps{
			Directory:   dir,
			Cache:       cache,
			Biographies: bios,
			Sink:        sink,
			Publisher:   publisher,
			Topic:       topic,
			Clock:       system.New(),
			IDs:         uuid.New(),
			Logger:      logger,
		},
	)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	if _, err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run scrape: %w", err)
	}
	return nil
}

func buildCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return memorycache.New(), func() {}, nil
	case "postgres":
		store, err := pgcache.New(ctx, pgcache.Config{DSN: cfg.Cache.DSN}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres cache: %w", err)
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("init postgres schema: %w", err)
		}
		return store, store.Close, nil
	default:
		store, err := filecache.New(filecache.Config{BaseDir: cfg.Cache.Dir}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init file cache: %w", err)
		}
		return store, func() {}, nil
	}
}

func buildSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.Sink, func(), error) {
	if cfg.Output.GCSBucket != "" {
		client, err := gcpstorage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage client: %w", err)
		}
		sink, err := gcssink.New(client, gcssink.Config{
			Bucket: cfg.Output.GCSBucket,
			Object: cfg.Output.GCSObject,
		}, logger)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("init gcs sink: %w", err)
		}
		return sink, func() { _ = client.Close() }, nil
	}

	sink, err := fssink.New(fssink.Config{Path: cfg.Output.Path}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init output sink: %w", err)
	}
	return sink, func() {}, nil
}

func buildPublisher(ctx context.Context, cfg config.Config) (scraper.Publisher, string, func(), error) {
	if cfg.PubSub.TopicName == "" {
		return nil, "", func() {}, nil
	}
	client, err := gcppubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("init pubsub client: %w", err)
	}
	pub, err := pubsubpublisher.New(client)
	if err != nil {
		_ = client.Close()
		return nil, "", nil, fmt.Errorf("init publisher: %w", err)
	}
	return pub, cfg.PubSub.TopicName, func() { _ = client.Close() }, nil
}
