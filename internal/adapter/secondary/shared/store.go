// Package shared is the cross-process published state: one JSON blob on disk
// that the timer process rewrites and presentation surfaces read.
package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pomotimer/internal/domain"
)

// FileStore implements domain.StateStore. Writes replace the file atomically,
// so a reader sees either the previous or the new state, never a torn one.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the file surfaces should watch.
func (s *FileStore) Path() string {
	return s.path
}

type publishedJSON struct {
	Status           string     `json:"status"`
	Mode             string     `json:"mode"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	PauseDate        *time.Time `json:"pauseDate,omitempty"`
	// Durations are integer nanoseconds so every reader rebuilds the exact
	// schedule the writer had.
	AccumulatedPause int64      `json:"accumulatedPauseNanos"`
	Duration         int64      `json:"durationNanos"`
	ModeName         string     `json:"modeName"`
	ModeColorName    string     `json:"modeColorName"`
	SessionCount     int        `json:"sessionCount"`
	TotalSessions    int        `json:"totalSessions"`
	PublishedAt      time.Time  `json:"publishedAt"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromOptional(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Write replaces the published state.
func (s *FileStore) Write(state domain.PublishedState) error {
	data, err := json.MarshalIndent(publishedJSON{
		Status:           string(state.Status),
		Mode:             string(state.Mode),
		StartDate:        optionalTime(state.StartDate),
		EndDate:          optionalTime(state.EndDate),
		PauseDate:        optionalTime(state.PauseDate),
		AccumulatedPause: int64(state.AccumulatedPause),
		Duration:         int64(state.Duration),
		ModeName:         state.ModeName,
		ModeColorName:    state.ModeColorName,
		SessionCount:     state.SessionCount,
		TotalSessions:    state.TotalSessions,
		PublishedAt:      state.PublishedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	temp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// Read returns the latest published state; found is false before the first write.
func (s *FileStore) Read() (domain.PublishedState, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PublishedState{}, false, nil
		}
		return domain.PublishedState{}, false, fmt.Errorf("read state: %w", err)
	}

	var raw publishedJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.PublishedState{}, false, fmt.Errorf("unmarshal state: %w", err)
	}
	return domain.PublishedState{
		Status:           domain.Status(raw.Status),
		Mode:             domain.Mode(raw.Mode),
		StartDate:        fromOptional(raw.StartDate),
		EndDate:          fromOptional(raw.EndDate),
		PauseDate:        fromOptional(raw.PauseDate),
		AccumulatedPause: time.Duration(raw.AccumulatedPause),
		Duration:         time.Duration(raw.Duration),
		ModeName:         raw.ModeName,
		ModeColorName:    raw.ModeColorName,
		SessionCount:     raw.SessionCount,
		TotalSessions:    raw.TotalSessions,
		PublishedAt:      raw.PublishedAt,
	}, true, nil
}
