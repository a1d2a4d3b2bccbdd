// Package pubsub fans timer signals out to in-process listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the session.
type EventType string

const (
	// StateChangedEvent follows every transition.
	StateChangedEvent EventType = "state"
	// ProgressEvent follows a tick that did not change the state.
	ProgressEvent EventType = "progress"
	// SessionFinishedEvent follows an interval running out.
	SessionFinishedEvent EventType = "finished"
	// CycleCompleteEvent is raised once when the long break that closes a cycle ends.
	CycleCompleteEvent EventType = "cycle_complete"
)

// Event is a published signal with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels that close when ctx ends.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
