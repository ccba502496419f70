package scraper

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Cache persists leader lists and biographies between runs. Lookups fail
// open: a corrupt or unreadable entry reads as absent, never as an error.
type Cache interface {
	Leaders(ctx context.Context, country string) ([]Leader, bool)
	PutLeaders(ctx context.Context, country string, leaders []Leader) error
	Biography(ctx context.Context, leaderID string) (Biography, bool)
	PutBiography(ctx context.Context, bio Biography) error
}

// Directory lists countries and their leaders from the leaders API.
type Directory interface {
	Countries(ctx context.Context) ([]string, error)
	Leaders(ctx context.Context, country string) ([]Leader, error)
}

// BiographySource extracts the first qualifying paragraph of prose for a
// leader. An empty string with a nil error means the page was scanned and
// holds no extractable biography.
type BiographySource interface {
	Extract(ctx context.Context, leader Leader) (string, error)
}

// Limiter throttles outbound requests to the biography source.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Sink persists the consolidated dataset and returns its URI.
type Sink interface {
	Write(ctx context.Context, dataset Dataset) (string, error)
}

// Publisher pushes run-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RetryPolicy decides whether a failed fetch attempt is retried and how
// long to back off before the next attempt.
type RetryPolicy interface {
	ShouldRetry(status int, err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
