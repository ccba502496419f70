package scraper

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// JitterFunc draws a random duration in [0, limit).
type JitterFunc func(limit time.Duration) time.Duration

// ExponentialRetryPolicy implements RetryPolicy with jittered backoff.
// Backoff is a pure function of the attempt count apart from the
// injectable jitter source.
type ExponentialRetryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	jitter     JitterFunc
}

// NewExponentialRetryPolicy builds a policy allowing maxRetries retries
// after the initial attempt.
func NewExponentialRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) *ExponentialRetryPolicy {
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return &ExponentialRetryPolicy{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		jitter:     cryptoJitter,
	}
}

// WithJitter overrides the jitter source, mainly for tests.
func (p *ExponentialRetryPolicy) WithJitter(j JitterFunc) *ExponentialRetryPolicy {
	p.jitter = j
	return p
}

// ShouldRetry decides whether the attempt is retried. Transport errors
// and retryable statuses (429, 5xx) consume retry budget; canceled
// contexts and permanent statuses do not.
func (p *ExponentialRetryPolicy) ShouldRetry(status int, err error, attempt int) bool {
	if attempt >= p.maxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if err != nil {
		return true
	}
	return RetryableStatus(status)
}

// Backoff returns the wait duration before the next attempt. The base
// component doubles per attempt up to maxDelay, so successive delays
// are non-decreasing before jitter.
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	half := time.Duration(delay / 2)
	return half + p.jitter(half)
}

func cryptoJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
