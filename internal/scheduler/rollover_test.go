package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"ParkLedger/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResetter struct{ resets int }

func (c *countingResetter) ResetAll() { c.resets++ }

type brokenMarkers struct{}

func (brokenMarkers) LoadResetMarker(context.Context) (string, error) {
	return "", errors.New("no such table")
}
func (brokenMarkers) SaveResetMarker(context.Context, string) error { return errors.New("read-only") }

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 2, day, hour, minute, 0, 0, time.UTC)
}

func TestCheck_IdempotentWithinDay(t *testing.T) {
	ctx := context.Background()
	cache := &countingResetter{}
	r := NewRollover(ctx, 17, cache, store.NewMemoryBackend())

	assert.True(t, r.Check(ctx, at(23, 17, 0)))
	assert.False(t, r.Check(ctx, at(23, 17, 0)))
	assert.False(t, r.Check(ctx, at(23, 23, 59)))
	assert.Equal(t, 1, cache.resets)
	assert.Equal(t, Fired, r.State(at(23, 18, 0)))
}

func TestCheck_BeforeCutoffStaysArmed(t *testing.T) {
	ctx := context.Background()
	cache := &countingResetter{}
	r := NewRollover(ctx, 17, cache, store.NewMemoryBackend())

	assert.False(t, r.Check(ctx, at(23, 16, 59)))
	assert.Equal(t, 0, cache.resets)
	assert.Equal(t, Armed, r.State(at(23, 16, 59)))
}

func TestCheck_RearmsAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	markers := store.NewMemoryBackend()
	require.NoError(t, markers.SaveResetMarker(ctx, "2024-02-23"))
	cache := &countingResetter{}
	r := NewRollover(ctx, 17, cache, markers)

	assert.Equal(t, Armed, r.State(at(24, 0, 1)), "the new date re-arms the check")
	assert.False(t, r.Check(ctx, at(24, 9, 0)))
	assert.True(t, r.Check(ctx, at(24, 17, 0)))
	assert.Equal(t, 1, cache.resets)

	m, err := markers.LoadResetMarker(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-24", m)
}

func TestCheck_FiresOnFirstCheckAfterDowntime(t *testing.T) {
	ctx := context.Background()
	markers := store.NewMemoryBackend()
	require.NoError(t, markers.SaveResetMarker(ctx, "2024-02-21"))
	cache := &countingResetter{}

	// reopened at 18:00 two days later
	r := NewRollover(ctx, 17, cache, markers)
	assert.True(t, r.Check(ctx, at(23, 18, 0)))
	assert.Equal(t, 1, cache.resets)

	// a restart the same evening does not clear again
	again := NewRollover(ctx, 17, cache, markers)
	assert.False(t, again.Check(ctx, at(23, 19, 0)))
	assert.Equal(t, 1, cache.resets)
}

func TestCheck_MarkerFailureKeepsInMemoryMarker(t *testing.T) {
	ctx := context.Background()
	cache := &countingResetter{}
	r := NewRollover(ctx, 17, cache, brokenMarkers{})

	assert.Empty(t, r.Marker())
	assert.True(t, r.Check(ctx, at(23, 17, 30)))
	assert.False(t, r.Check(ctx, at(23, 17, 31)))
	assert.Equal(t, 1, cache.resets)
	assert.Equal(t, "2024-02-23", r.Marker())
}

func TestCheck_OnFireHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRollover(ctx, 17, &countingResetter{}, store.NewMemoryBackend())

	var fired []string
	r.OnFire(func(date string) { fired = append(fired, date) })
	r.Check(ctx, at(23, 17, 0))
	r.Check(ctx, at(23, 18, 0))
	r.Check(ctx, at(24, 17, 0))
	assert.Equal(t, []string{"2024-02-23", "2024-02-24"}, fired)
}
