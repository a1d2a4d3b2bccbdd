package domain

import (
	"strings"
	"time"
)

// Task is a user-authored to-do item. Tasks take no part in timing.
type Task struct {
	ID        int64
	Title     string
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeTitle trims a task title and rejects blank ones.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}
