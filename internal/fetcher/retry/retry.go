// Package retryfetcher decorates a Fetcher with a bounded retry loop.
package retryfetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leaderscraper/internal/metrics"
	"leaderscraper/internal/scraper"
)

// Fetcher retries the wrapped Fetcher according to a RetryPolicy.
// Attempt 0 is free; each retry consumes budget. Once the policy gives
// up, the last status and cause surface as a *scraper.FetchError.
type Fetcher struct {
	next   scraper.Fetcher
	policy scraper.RetryPolicy
	source string
	logger *zap.Logger
}

// New wraps next with retry behavior. The source label identifies the
// remote service in logs and metrics.
func New(next scraper.Fetcher, policy scraper.RetryPolicy, source string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		next:   next,
		policy: policy,
		source: source,
		logger: logger,
	}
}

// Fetch runs the bounded retry loop around the wrapped Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, request scraper.FetchRequest) (scraper.FetchResponse, error) {
	var (
		lastResp scraper.FetchResponse
		lastErr  error
		attempts int
	)

	for attempt := 0; ; attempt++ {
		resp, err := f.next.Fetch(ctx, request)
		lastResp, lastErr = resp, err
		attempts = attempt + 1

		metrics.IncRequest(f.source, resp.StatusCode)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		if !f.policy.ShouldRetry(resp.StatusCode, err, attempt) {
			break
		}

		backoff := f.policy.Backoff(attempt)
		f.logger.Warn("fetch attempt failed, backing off",
			zap.String("source", f.source),
			zap.String("url", request.URL),
			zap.Int("attempt", attempt+1),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		metrics.IncRetry(f.source)
		if pauseErr := pause(ctx, backoff); pauseErr != nil {
			lastErr = pauseErr
			break
		}
	}

	return scraper.FetchResponse{}, &scraper.FetchError{
		URL:        request.URL,
		StatusCode: lastResp.StatusCode,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
