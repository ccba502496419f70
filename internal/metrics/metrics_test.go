package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if scraperRequestsTotal == nil || scraperRetriesTotal == nil ||
		scraperCacheLookupsTotal == nil || scraperLeadersTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	IncRequest("directory", 200)
	if val := testutil.ToFloat64(scraperRequestsTotal.WithLabelValues("directory", "200")); val != 1 {
		t.Errorf("expected scraper_requests_total{directory,200} to be 1, got %f", val)
	}

	IncRequest("wikipedia", 0)
	if val := testutil.ToFloat64(scraperRequestsTotal.WithLabelValues("wikipedia", "error")); val != 1 {
		t.Errorf("expected zero status to be labeled error, got %f", val)
	}

	IncCacheLookup("bio", true)
	IncCacheLookup("bio", true)
	if val := testutil.ToFloat64(scraperCacheLookupsTotal.WithLabelValues("bio", "hit")); val != 2 {
		t.Errorf("expected 2 bio cache hits, got %f", val)
	}

	ObserveRateLimitDelay(250 * time.Millisecond)
	ObserveRunDuration(3 * time.Second)
}

func TestHelpersAreNoopsBeforeInit(t *testing.T) {
	// Helpers must not panic if a caller records before Init, which can
	// happen in unit tests that wire components directly.
	saved := scraperRequestsTotal
	scraperRequestsTotal = nil
	defer func() { scraperRequestsTotal = saved }()

	IncRequest("directory", 200)
}
