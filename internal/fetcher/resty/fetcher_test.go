package restyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaderscraper/internal/scraper"
)

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["be","fr"]`))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "leaderscraper-test/0.1", Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{
		URL:     srv.URL,
		Headers: http.Header{"Accept": {"application/json"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["be","fr"]`, string(resp.Body))
	assert.Equal(t, "leaderscraper-test/0.1", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestFetchReportsNon2xxWithoutError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFetchTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}

func TestFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := New(Config{})
	_, err := f.Fetch(ctx, scraper.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}
