package shared

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"pomotimer/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestFileStoreReadBeforeWrite(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	_, found, err := store.Read()
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileStoreSurfaceComputesSameProgress(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	state := domain.NewIdleState(domain.ModeFocus, domain.DefaultSettings())
	state.Status = domain.StatusFocus
	state.StartDate = t0
	state.EndDate = t0.Add(25 * time.Minute)
	state.AccumulatedPause = 90 * time.Second
	state.SessionCount = 2

	require.NoError(t, store.Write(domain.PublishedStateOf(state, t0)))

	published, found, err := store.Read()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Focus", published.ModeName)
	assert.Equal(t, "red", published.ModeColorName)
	assert.Equal(t, 2, published.SessionCount)
	assert.True(t, published.PauseDate.IsZero())

	query := t0.Add(12*time.Minute + 30*time.Second)
	assert.Equal(t, state.FractionCompleted(query), published.Timer().FractionCompleted(query))
	assert.Equal(t, state.RemainingTime(query), published.Timer().RemainingTime(query))
}

func TestFileStoreRoundTripIsExact(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	rapid.Check(t, func(r *rapid.T) {
		state := domain.NewIdleState(domain.ModeFocus, domain.DefaultSettings())
		state.Status = domain.StatusFocus
		state.StartDate = t0.Add(time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(r, "startOffset")))
		state.Duration = time.Duration(rapid.Int64Range(1, int64(3*time.Hour)).Draw(r, "duration"))
		state.EndDate = state.StartDate.Add(state.Duration)
		state.AccumulatedPause = time.Duration(rapid.Int64Range(0, int64(2*time.Hour)).Draw(r, "pause"))
		query := state.StartDate.Add(time.Duration(rapid.Int64Range(0, int64(6*time.Hour)).Draw(r, "query")))

		require.NoError(r, store.Write(domain.PublishedStateOf(state, t0)))
		published, _, err := store.Read()
		require.NoError(r, err)

		surface := published.Timer()
		require.Equal(r, state.AccumulatedPause, surface.AccumulatedPause)
		require.Equal(r, state.Duration, surface.Duration)
		require.Equal(r, state.RemainingTime(query), surface.RemainingTime(query))
		require.Equal(r, state.FractionCompleted(query), surface.FractionCompleted(query))
	})
}

func TestFileStoreIdleHasNoDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	idle := domain.NewIdleState(domain.ModeShortBreak, domain.DefaultSettings())
	require.NoError(t, store.Write(domain.PublishedStateOf(idle, t0)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "startDate")

	published, _, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, domain.StatusIdle, published.Status)
	require.Equal(t, 5*time.Minute, published.Timer().DisplayRemaining(t0))
}

func TestWatcherSignalsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	onChange, err := w.Start(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		idle := domain.NewIdleState(domain.ModeFocus, domain.DefaultSettings())
		idle.SessionCount = i
		require.NoError(t, store.Write(domain.PublishedStateOf(idle, t0)))
	}

	select {
	case <-onChange:
	case <-time.After(2 * time.Second):
		require.Fail(t, "expected a change signal")
	}

	published, _, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, 4, published.SessionCount)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	other := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	onChange, err := w.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(other, []byte(`{"a":1}`), 0o644))

	select {
	case <-onChange:
		require.Fail(t, "unexpected signal for an unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}
