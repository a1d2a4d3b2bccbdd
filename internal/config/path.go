package config

import (
	"os"
	"path/filepath"
)

// DefaultPath returns ~/.config/pomotimer/config.yaml (or a cwd fallback).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "pomotimer", "config.yaml")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "pomotimer-config.yaml")
}

// DefaultDataDir returns ~/.local/share/pomotimer, where the snapshot, the
// published state and the database live.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "share", "pomotimer")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "pomotimer-data")
}

// SnapshotPath is the durable recovery snapshot file.
func (c Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "snapshot.json")
}

// StatePath is the shared published-state file read by presentation surfaces.
func (c Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.json")
}

// DatabasePath is the SQLite file holding statistics and tasks.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pomotimer.db")
}
