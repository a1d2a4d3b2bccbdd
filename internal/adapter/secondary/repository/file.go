package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pomotimer/internal/domain"
)

// FileRepository implements domain.SnapshotRepository using a JSON file.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a new file-based snapshot repository.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &FileRepository{path: path}, nil
}

// persistedSnapshot is the JSON structure on disk. Remaining is in seconds.
type persistedSnapshot struct {
	Status          string  `json:"status"`
	IsRunning       bool    `json:"isRunning"`
	Remaining       float64 `json:"remaining"`
	Mode            string  `json:"mode"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	SessionCount    int     `json:"sessionCount"`
	BreakCount      int     `json:"breakCount"`
	TotalSessions   int     `json:"totalSessions"`
}

// Load reads the snapshot from disk. A missing file means none was written yet.
func (f *FileRepository) Load() (domain.Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, false, nil
		}
		return domain.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var persisted persistedSnapshot
	if err := json.Unmarshal(data, &persisted); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, persisted.Timestamp)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	mode, err := domain.ParseMode(persisted.Mode)
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	return domain.Snapshot{
		Status:        domain.Status(persisted.Status),
		IsRunning:     persisted.IsRunning,
		Remaining:     secondsToDuration(persisted.Remaining),
		Mode:          mode,
		Timestamp:     timestamp,
		Duration:      secondsToDuration(persisted.DurationSeconds),
		SessionCount:  persisted.SessionCount,
		BreakCount:    persisted.BreakCount,
		TotalSessions: persisted.TotalSessions,
	}, true, nil
}

// Save persists the snapshot to disk.
func (f *FileRepository) Save(snapshot domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	persisted := persistedSnapshot{
		Status:          string(snapshot.Status),
		IsRunning:       snapshot.IsRunning,
		Remaining:       snapshot.Remaining.Seconds(),
		Mode:            string(snapshot.Mode),
		Timestamp:       snapshot.Timestamp.Format(time.RFC3339Nano),
		DurationSeconds: snapshot.Duration.Seconds(),
		SessionCount:    snapshot.SessionCount,
		BreakCount:      snapshot.BreakCount,
		TotalSessions:   snapshot.TotalSessions,
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}

	return nil
}

// Path returns the file the repository writes.
func (f *FileRepository) Path() string {
	return f.path
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
