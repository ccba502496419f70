// Package restyfetcher implements Fetcher using the resty HTTP client.
package restyfetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"leaderscraper/internal/scraper"
)

// Config controls client behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher issues single GET requests through a shared resty client.
type Fetcher struct {
	client *resty.Client
}

// New builds a Fetcher. Redirects are followed and non-2xx statuses are
// reported in the response rather than as errors.
func New(cfg Config) *Fetcher {
	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Fetcher{client: client}
}

// Fetch executes a single HTTP GET.
func (f *Fetcher) Fetch(ctx context.Context, request scraper.FetchRequest) (scraper.FetchResponse, error) {
	req := f.client.R().SetContext(ctx)
	for key, values := range request.Headers {
		for _, v := range values {
			req.SetHeader(key, v)
		}
	}

	resp, err := req.Get(request.URL)
	if err != nil {
		return scraper.FetchResponse{}, fmt.Errorf("get %s: %w", request.URL, err)
	}

	return scraper.FetchResponse{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header().Clone(),
		Body:       append([]byte(nil), resp.Body()...),
		Duration:   resp.Time(),
	}, nil
}
