package domain

import "errors"

var (
	// ErrInvalidDuration indicates that an interval length is zero or negative.
	ErrInvalidDuration = errors.New("durations must be positive")

	// ErrInvalidSessionCount indicates a cycle shorter than one focus session.
	ErrInvalidSessionCount = errors.New("sessions before long break must be at least 1")

	// ErrUnknownMode indicates text that does not name a Mode.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrTaskNotFound indicates that no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyTitle indicates a task title with no visible characters.
	ErrEmptyTitle = errors.New("task title is empty")
)
