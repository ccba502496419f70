// Package pipeline orchestrates a full scrape run: country discovery,
// per-country leader lists, biography extraction and consolidation.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"leaderscraper/internal/metrics"
	"leaderscraper/internal/scraper"
)

// Config tunes a run.
type Config struct {
	// Countries overrides directory discovery when non-empty.
	Countries []string
	// Concurrency bounds the biography worker pool.
	Concurrency int
}

// Deps are the collaborators a Pipeline needs. Publisher and Topic are
// optional; everything else is required.
type Deps struct {
	Directory   scraper.Directory
	Cache       scraper.Cache
	Biographies scraper.BiographySource
	Sink        scraper.Sink
	Publisher   scraper.Publisher
	Topic       string
	Clock       scraper.Clock
	IDs         scraper.IDGenerator
	Logger      *zap.Logger
}

// Pipeline runs the scrape end to end and produces a RunReport.
type Pipeline struct {
	cfg  Config
	deps Deps
}

// New validates dependencies and builds a Pipeline.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Directory == nil {
		return nil, fmt.Errorf("directory client is required")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if deps.Biographies == nil {
		return nil, fmt.Errorf("biography source is required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if deps.Clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if deps.IDs == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Pipeline{cfg: cfg, deps: deps}, nil
}

// countryResult holds one country's leaders while the run is in flight.
type countryResult struct {
	name    string
	leaders []scraper.Leader
	failed  bool
}

// Run executes the pipeline. Failures of individual countries or
// leaders are contained and reported; only an unusable country list or
// a failed consolidation write aborts the run.
func (p *Pipeline) Run(ctx context.Context) (scraper.RunReport, error) {
	log := p.deps.Logger
	started := p.deps.Clock.Now()

	runID, err := p.deps.IDs.NewID()
	if err != nil {
		return scraper.RunReport{}, fmt.Errorf("generate run id: %w", err)
	}
	log = log.With(zap.String("run_id", runID))
	log.Info("scrape run started", zap.Int("concurrency", p.cfg.Concurrency))

	countries, err := p.countryList(ctx)
	if err != nil {
		return scraper.RunReport{}, err
	}

	results := p.collectLeaders(ctx, log, countries)
	counts := p.resolveBiographies(ctx, log, results)

	dataset := scraper.Dataset{}
	var done, failedCountries int
	for _, res := range results {
		if res.failed {
			failedCountries++
			continue
		}
		done++
		dataset[res.name] = res.leaders
	}

	// Consolidation must survive an expired run deadline; whatever was
	// resolved before the cutoff still gets written.
	writeCtx := context.WithoutCancel(ctx)
	uri, err := p.deps.Sink.Write(writeCtx, dataset)
	if err != nil {
		return scraper.RunReport{}, fmt.Errorf("write dataset: %w", err)
	}

	finished := p.deps.Clock.Now()
	report := scraper.RunReport{
		RunID:           runID,
		Started:         started,
		Finished:        finished,
		CountriesDone:   done,
		CountriesFailed: failedCountries,
		LeadersResolved: int(counts.resolved.Load()),
		LeadersSkipped:  int(counts.skipped.Load()),
		LeadersFailed:   int(counts.failed.Load()),
		OutputURI:       uri,
	}
	metrics.ObserveRunDuration(finished.Sub(started))
	log.Info("scrape run finished",
		zap.Duration("elapsed", finished.Sub(started)),
		zap.Int("countries_done", report.CountriesDone),
		zap.Int("countries_failed", report.CountriesFailed),
		zap.Int("leaders_resolved", report.LeadersResolved),
		zap.Int("leaders_skipped", report.LeadersSkipped),
		zap.Int("leaders_failed", report.LeadersFailed),
		zap.String("output", uri),
	)

	p.publish(writeCtx, log, report)
	return report, nil
}

func (p *Pipeline) countryList(ctx context.Context) ([]string, error) {
	if len(p.cfg.Countries) > 0 {
		return p.cfg.Countries, nil
	}
	countries, err := p.deps.Directory.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("directory returned no countries")
	}
	return countries, nil
}

// collectLeaders resolves the leader list for every country, from cache
// when possible. A directory failure marks that country failed and the
// run moves on.
func (p *Pipeline) collectLeaders(ctx context.Context, log *zap.Logger, countries []string) []*countryResult {
	results := make([]*countryResult, 0, len(countries))
	for _, country := range countries {
		res := &countryResult{name: country}
		results = append(results, res)

		if leaders, ok := p.deps.Cache.Leaders(ctx, country); ok {
			metrics.IncCacheLookup("leaders", true)
			res.leaders = leaders
			metrics.IncCountryOutcome(string(scraper.CountryDone))
			continue
		}
		metrics.IncCacheLookup("leaders", false)

		// Cache reads stay allowed past the run deadline; only network
		// work stops.
		if ctx.Err() != nil {
			res.failed = true
			metrics.IncCountryOutcome(string(scraper.CountryFailed))
			continue
		}

		leaders, err := p.deps.Directory.Leaders(ctx, country)
		if err != nil {
			res.failed = true
			metrics.IncCountryOutcome(string(scraper.CountryFailed))
			log.Warn("country failed", zap.String("country", country), zap.Error(err))
			continue
		}
		if err := p.deps.Cache.PutLeaders(ctx, country, leaders); err != nil {
			log.Warn("leaders cache write failed", zap.String("country", country), zap.Error(err))
		}
		res.leaders = leaders
		metrics.IncCountryOutcome(string(scraper.CountryDone))
	}
	return results
}

type outcomeCounts struct {
	resolved atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

func (c *outcomeCounts) add(outcome scraper.LeaderOutcome) {
	switch outcome {
	case scraper.LeaderResolved:
		c.resolved.Add(1)
	case scraper.LeaderSkipped:
		c.skipped.Add(1)
	case scraper.LeaderFailed:
		c.failed.Add(1)
	}
	metrics.IncLeaderOutcome(string(outcome))
}

// resolveBiographies runs the bounded worker pool over every leader of
// the resolved countries. Each worker owns distinct slice elements, so
// results are written in place without further locking.
func (p *Pipeline) resolveBiographies(ctx context.Context, log *zap.Logger, results []*countryResult) *outcomeCounts {
	counts := &outcomeCounts{}
	jobs := make(chan *scraper.Leader)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for leader := range jobs {
				counts.add(p.resolveLeader(ctx, log, leader))
			}
		}()
	}

	for _, res := range results {
		if res.failed {
			continue
		}
		for i := range res.leaders {
			jobs <- &res.leaders[i]
		}
	}
	close(jobs)
	wg.Wait()
	return counts
}

func (p *Pipeline) resolveLeader(ctx context.Context, log *zap.Logger, leader *scraper.Leader) scraper.LeaderOutcome {
	if bio, ok := p.deps.Cache.Biography(ctx, leader.ID); ok {
		metrics.IncCacheLookup("biography", true)
		content := bio.Content
		leader.Biography = &content
		if content == "" {
			return scraper.LeaderSkipped
		}
		return scraper.LeaderResolved
	}
	metrics.IncCacheLookup("biography", false)

	if ctx.Err() != nil {
		log.Warn("leader not scheduled, run deadline reached",
			zap.String("leader", leader.DisplayName()))
		return scraper.LeaderFailed
	}

	text, err := p.deps.Biographies.Extract(ctx, *leader)
	if err != nil {
		// No cache write: a transient failure should be retried on the
		// next run, not remembered as an empty biography.
		log.Warn("biography extraction failed",
			zap.String("leader", leader.DisplayName()),
			zap.String("url", leader.WikipediaURL),
			zap.Error(err),
		)
		return scraper.LeaderFailed
	}

	// An explicit empty result is cached too, so pages known to hold no
	// prose are not refetched every run.
	if err := p.deps.Cache.PutBiography(ctx, scraper.Biography{LeaderID: leader.ID, Content: text}); err != nil {
		log.Warn("biography cache write failed",
			zap.String("leader", leader.DisplayName()), zap.Error(err))
	}
	leader.Biography = &text
	if text == "" {
		return scraper.LeaderSkipped
	}
	return scraper.LeaderResolved
}

func (p *Pipeline) publish(ctx context.Context, log *zap.Logger, report scraper.RunReport) {
	if p.deps.Publisher == nil || p.deps.Topic == "" {
		return
	}
	msgID, err := p.deps.Publisher.Publish(ctx, p.deps.Topic, report)
	if err != nil {
		log.Warn("run report publish failed", zap.Error(err))
		return
	}
	log.Info("run report published", zap.String("message_id", msgID))
}
