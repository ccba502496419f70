// Package ratelimit throttles outbound scrape requests with a randomized
// delay bounded by a configured interval.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"leaderscraper/internal/metrics"
)

// Config holds rate limiter configuration.
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Coordinate enables a shared token bucket spaced at MinDelay so the
	// aggregate request rate holds when multiple workers share the limiter.
	Coordinate bool
}

// Limiter blocks callers for a duration drawn uniformly from
// [MinDelay, MaxDelay] before each request. Every caller waits; cache
// miss fallback paths that still hit the network go through here too.
type Limiter struct {
	cfg    Config
	shared *rate.Limiter

	mu   sync.Mutex
	rand *rand.Rand
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg: cfg,
		//nolint:gosec // politeness jitter, not security-sensitive
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.Coordinate && cfg.MinDelay > 0 {
		l.shared = rate.NewLimiter(rate.Every(cfg.MinDelay), 1)
	}
	return l
}

// WithRand replaces the jitter source, mainly for tests.
func (l *Limiter) WithRand(r *rand.Rand) *Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rand = r
	return l
}

// Wait blocks until the caller may proceed, respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()

	if err := l.pause(ctx, l.delay()); err != nil {
		return err
	}
	if l.shared != nil {
		if err := l.shared.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(waited)
	}
	return nil
}

// delay draws a duration uniformly from [MinDelay, MaxDelay].
func (l *Limiter) delay() time.Duration {
	span := l.cfg.MaxDelay - l.cfg.MinDelay
	if span <= 0 {
		return l.cfg.MinDelay
	}
	l.mu.Lock()
	jitter := time.Duration(l.rand.Int63n(int64(span) + 1))
	l.mu.Unlock()
	return l.cfg.MinDelay + jitter
}

func (l *Limiter) pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
