package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"pomotimer/internal/domain"
)

func TestFileRepositoryMissingFile(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "data", "snapshot.json"))
	require.NoError(t, err)

	_, found, err := repo.Load()
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileRepositorySaveLoad(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 9, 0, 0, 123456789, time.UTC)
	want := domain.Snapshot{
		Status:        domain.StatusBreak,
		IsRunning:     true,
		Remaining:     90 * time.Second,
		Mode:          domain.ModeLongBreak,
		Timestamp:     at,
		Duration:      15 * time.Minute,
		SessionCount:  4,
		BreakCount:    3,
		TotalSessions: 4,
	}
	require.NoError(t, repo.Save(want))

	got, found, err := repo.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	got.Timestamp = want.Timestamp
	require.Equal(t, want, got)

	_, err = os.Stat(repo.Path() + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestFileRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo, err := NewFileRepository(path)
	require.NoError(t, err)
	_, found, err := repo.Load()
	require.Error(t, err)
	require.False(t, found)
}

func TestFileRepositoryUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	raw := `{"status":"focus","isRunning":true,"remaining":40,"mode":"nap","timestamp":"2026-03-14T09:00:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	repo, err := NewFileRepository(path)
	require.NoError(t, err)
	_, _, err = repo.Load()
	require.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestFileRepositoryRoundTripIsExact(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	rapid.Check(t, func(r *rapid.T) {
		want := domain.Snapshot{
			Status:        domain.StatusFocus,
			IsRunning:     true,
			Remaining:     time.Duration(rapid.Int64Range(0, int64(3*time.Hour)).Draw(r, "remaining")),
			Mode:          domain.ModeFocus,
			Timestamp:     at,
			Duration:      time.Duration(rapid.Int64Range(1, int64(3*time.Hour)).Draw(r, "duration")),
			TotalSessions: 4,
		}
		require.NoError(r, repo.Save(want))

		got, found, err := repo.Load()
		require.NoError(r, err)
		require.True(r, found)
		require.Equal(r, want.Remaining, got.Remaining)
		require.Equal(r, want.Duration, got.Duration)
	})
}
