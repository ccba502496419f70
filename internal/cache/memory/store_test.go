package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaderscraper/internal/scraper"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	_, ok := s.Leaders(ctx, "be")
	assert.False(t, ok)

	require.NoError(t, s.PutLeaders(ctx, "be", []scraper.Leader{{ID: "Q1"}}))
	got, ok := s.Leaders(ctx, "be")
	require.True(t, ok)
	assert.Len(t, got, 1)

	require.NoError(t, s.PutBiography(ctx, scraper.Biography{LeaderID: "Q1", Content: "text"}))
	bio, ok := s.Biography(ctx, "Q1")
	require.True(t, ok)
	assert.Equal(t, "text", bio.Content)
}

func TestLeadersReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	require.NoError(t, s.PutLeaders(ctx, "fr", []scraper.Leader{{ID: "Q1"}}))

	got, _ := s.Leaders(ctx, "fr")
	got[0].ID = "mutated"

	again, _ := s.Leaders(ctx, "fr")
	assert.Equal(t, "Q1", again[0].ID)
}
