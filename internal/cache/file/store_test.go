// Package file_test tests the filesystem cache store.
package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leaderscraper/internal/cache/file"
	"leaderscraper/internal/scraper"
)

func newStore(t *testing.T) (*file.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := file.New(file.Config{BaseDir: dir}, zap.NewNop())
	require.NoError(t, err)
	return store, dir
}

func TestNew(t *testing.T) {
	t.Run("CreatesMissingDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "cache")
		_, err := file.New(file.Config{BaseDir: dir}, zap.NewNop())
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := file.New(file.Config{}, zap.NewNop())
		assert.Error(t, err)
	})
	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "plainfile")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
		_, err := file.New(file.Config{BaseDir: f}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestLeadersRoundTrip(t *testing.T) {
	t.Parallel()
	store, dir := newStore(t)
	ctx := context.Background()

	_, ok := store.Leaders(ctx, "be")
	assert.False(t, ok)

	leaders := []scraper.Leader{
		{ID: "Q123", FirstName: "Wilfried", LastName: "Martens", Country: "be"},
		{ID: "Q456", FirstName: "Guy", LastName: "Verhofstadt", Country: "be"},
	}
	require.NoError(t, store.PutLeaders(ctx, "be", leaders))

	got, ok := store.Leaders(ctx, "be")
	require.True(t, ok)
	assert.Equal(t, leaders, got)

	// File layout consumed by operators and other tools.
	_, err := os.Stat(filepath.Join(dir, "be_leaders.json"))
	require.NoError(t, err)
}

func TestBiographyRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)
	ctx := context.Background()

	_, ok := store.Biography(ctx, "Q123")
	assert.False(t, ok)

	bio := scraper.Biography{LeaderID: "Q123", Content: "Wilfried Martens was a Belgian politician."}
	require.NoError(t, store.PutBiography(ctx, bio))

	got, ok := store.Biography(ctx, "Q123")
	require.True(t, ok)
	assert.Equal(t, bio, got)
}

func TestEmptyBiographyMarkerIsAHit(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutBiography(ctx, scraper.Biography{LeaderID: "Q999"}))

	got, ok := store.Biography(ctx, "Q999")
	require.True(t, ok)
	assert.Empty(t, got.Content)
}

func TestCorruptEntryReadsAsMiss(t *testing.T) {
	t.Parallel()
	store, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "xx_leaders.json"), []byte("{not json"), 0o600))

	_, ok := store.Leaders(ctx, "xx")
	assert.False(t, ok)
}

func TestPutOverwritesWholesale(t *testing.T) {
	t.Parallel()
	store, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutLeaders(ctx, "fr", []scraper.Leader{{ID: "Q1"}, {ID: "Q2"}}))
	require.NoError(t, store.PutLeaders(ctx, "fr", []scraper.Leader{{ID: "Q3"}}))

	got, ok := store.Leaders(ctx, "fr")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Q3", got[0].ID)

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestKeyPathTraversalRejected(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)

	err := store.PutLeaders(context.Background(), "../evil", []scraper.Leader{{ID: "Q1"}})
	assert.Error(t, err)
}

func TestPutBiographyRequiresLeaderID(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)
	assert.Error(t, store.PutBiography(context.Background(), scraper.Biography{Content: "orphan"}))
}
