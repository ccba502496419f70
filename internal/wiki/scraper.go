// Package wiki extracts biography paragraphs from encyclopedia pages.
package wiki

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"leaderscraper/internal/scraper"
)

// Config tunes extraction behavior.
type Config struct {
	// MinParagraphChars is the minimum stripped length for a paragraph
	// to count as substantive prose.
	MinParagraphChars int
}

// Scraper fetches a leader's source page and extracts the first
// qualifying paragraph of biographical text. Every live fetch goes
// through the rate limiter, including interlanguage-link hops.
type Scraper struct {
	fetcher scraper.Fetcher
	limiter scraper.Limiter
	cfg     Config
	logger  *zap.Logger
}

// New builds a Scraper.
func New(fetcher scraper.Fetcher, limiter scraper.Limiter, cfg Config, logger *zap.Logger) *Scraper {
	if cfg.MinParagraphChars <= 0 {
		cfg.MinParagraphChars = 40
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher: fetcher,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// IsWikiURL checks whether the given URL belongs to a Wikipedia domain.
func IsWikiURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "wikipedia.org")
}

// Extract returns the first qualifying paragraph for the leader's source
// page, or an empty string when the whole page holds no extractable
// prose. An empty result is not an error; only fetch failures are.
func (s *Scraper) Extract(ctx context.Context, leader scraper.Leader) (string, error) {
	if !IsWikiURL(leader.WikipediaURL) {
		s.logger.Warn("source page is not a wikipedia url",
			zap.String("leader", leader.DisplayName()),
			zap.String("url", leader.WikipediaURL),
		)
		return "", nil
	}

	text, err := s.extractFrom(ctx, leader.WikipediaURL)
	if err != nil {
		return "", err
	}
	if text == "" {
		s.logger.Warn("no extractable biography",
			zap.String("leader", leader.DisplayName()),
			zap.String("url", leader.WikipediaURL),
		)
	}
	return text, nil
}

func (s *Scraper) extractFrom(ctx context.Context, raw string) (string, error) {
	pageURL, err := s.resolveEnglish(ctx, raw)
	if err != nil {
		return "", err
	}
	if pageURL == "" {
		return "", nil
	}

	doc, err := s.fetchDoc(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return s.firstParagraph(doc), nil
}

// resolveEnglish follows the English interlanguage link of a non-English
// article. Returns empty when the article has no English counterpart.
func (s *Scraper) resolveEnglish(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &scraper.ParseError{Source: "wikipedia url", Err: err}
	}
	if strings.Contains(strings.ToLower(u.Hostname()), "en.wikipedia.org") {
		return raw, nil
	}

	doc, err := s.fetchDoc(ctx, raw)
	if err != nil {
		return "", err
	}
	href, ok := doc.Find("li.interwiki-en.interlanguage-link a").First().Attr("href")
	if !ok {
		return "", nil
	}
	return href, nil
}

func (s *Scraper) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle page fetch: %w", err)
	}
	resp, err := s.fetcher.Fetch(ctx, scraper.FetchRequest{URL: pageURL})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &scraper.ParseError{Source: pageURL, Err: err}
	}
	return doc, nil
}

// firstParagraph scans paragraphs in document order and returns the
// first one that reads as substantive prose: not an mw-empty-elt
// placeholder, not citation markers alone, and at least
// MinParagraphChars long once stripped and cleaned.
func (s *Scraper) firstParagraph(doc *goquery.Document) string {
	var found string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("mw-empty-elt") {
			return true
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" || isCitationOnly(text) {
			return true
		}
		clean := CleanText(text)
		if len([]rune(strings.TrimSpace(clean))) < s.cfg.MinParagraphChars {
			return true
		}
		found = strings.TrimSpace(clean)
		return false
	})
	return found
}
