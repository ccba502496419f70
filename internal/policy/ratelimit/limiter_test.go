package ratelimit

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayWithinBounds(t *testing.T) {
	t.Parallel()

	cfg := Config{MinDelay: 10 * time.Millisecond, MaxDelay: 30 * time.Millisecond}
	l := New(cfg).WithRand(rand.New(rand.NewSource(42)))

	for i := 0; i < 100; i++ {
		d := l.delay()
		assert.GreaterOrEqual(t, d, cfg.MinDelay)
		assert.LessOrEqual(t, d, cfg.MaxDelay)
	}
}

func TestWaitBlocksAtLeastMinDelay(t *testing.T) {
	t.Parallel()

	l := New(Config{MinDelay: 20 * time.Millisecond, MaxDelay: 20 * time.Millisecond})

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitZeroBoundsReturnsImmediately(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestWaitHonorsContextCancel(t *testing.T) {
	t.Parallel()

	l := New(Config{MinDelay: time.Minute, MaxDelay: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinatedWaitSpacesCallers(t *testing.T) {
	t.Parallel()

	min := 30 * time.Millisecond
	l := New(Config{MinDelay: min, MaxDelay: min, Coordinate: true})

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	// Two permits through the shared bucket cannot complete faster than
	// one full interval plus the per-call jitter sleeps.
	assert.GreaterOrEqual(t, time.Since(start), 2*min)
}
