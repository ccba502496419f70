// Package directory implements the leaders directory API client.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"leaderscraper/internal/scraper"
)

// Client lists countries and leaders from the directory API. Retry and
// backoff live in the Fetcher it is handed; the client only shapes
// requests and decodes payloads.
type Client struct {
	fetcher scraper.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New builds a Client. The base URL is used as-is, without a trailing slash.
func New(fetcher scraper.Fetcher, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Countries returns the list of available country codes.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.baseURL+"/countries")
	if err != nil {
		return nil, &scraper.DirectoryError{Op: "list countries", Err: err}
	}

	var countries []string
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, &scraper.DirectoryError{
			Op:  "list countries",
			Err: &scraper.ParseError{Source: "countries payload", Err: err},
		}
	}
	return countries, nil
}

// Leaders returns the leaders for a given country, each stamped with the
// country it was requested for.
func (c *Client) Leaders(ctx context.Context, country string) ([]scraper.Leader, error) {
	endpoint := fmt.Sprintf("%s/leaders?country=%s", c.baseURL, url.QueryEscape(country))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, &scraper.DirectoryError{Country: country, Op: "list leaders", Err: err}
	}

	var leaders []scraper.Leader
	if err := json.Unmarshal(body, &leaders); err != nil {
		return nil, &scraper.DirectoryError{
			Country: country,
			Op:      "list leaders",
			Err:     &scraper.ParseError{Source: "leaders payload", Err: err},
		}
	}
	for i := range leaders {
		leaders[i].Country = country
	}
	c.logger.Debug("leaders listed",
		zap.String("country", country),
		zap.Int("count", len(leaders)),
	)
	return leaders, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.fetcher.Fetch(ctx, scraper.FetchRequest{
		URL:     endpoint,
		Headers: http.Header{"Accept": {"application/json"}},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
