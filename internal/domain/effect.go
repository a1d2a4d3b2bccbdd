package domain

import "time"

// EventType represents the type of input applied to the session state machine.
type EventType string

const (
	EventStartFocus EventType = "StartFocus"
	EventStartBreak EventType = "StartBreak"
	EventPause      EventType = "Pause"
	EventResume     EventType = "Resume"
	EventStop       EventType = "Stop"
	EventSkip       EventType = "Skip"
	EventTick       EventType = "Tick"
)

// Event represents an input to the state machine.
type Event struct {
	Type EventType
	// Long selects a long break for EventStartBreak.
	Long bool
}

// EffectType represents the type of side effect to be performed.
type EffectType string

const (
	EffectStopTicker           EffectType = "StopTicker"
	EffectStartTicker          EffectType = "StartTicker"
	EffectCancelNotification   EffectType = "CancelNotification"
	EffectScheduleNotification EffectType = "ScheduleNotification"
	EffectRecordFocus          EffectType = "RecordFocus"
	EffectRecordBreak          EffectType = "RecordBreak"
	EffectSessionFinished      EffectType = "SessionFinished"
	EffectCycleComplete        EffectType = "CycleComplete"
	EffectPersist              EffectType = "Persist"
)

// Effect represents a side effect that the use case layer should perform.
// HandleEvent produces effects without executing them.
type Effect struct {
	Type EffectType

	// At is the alarm time for ScheduleNotification and the completion
	// instant for RecordFocus, RecordBreak and SessionFinished.
	At    time.Time
	Title string
	Body  string

	Mode     Mode
	Duration time.Duration
}

// HasEffect reports whether effects contains one of the given type.
func HasEffect(effects []Effect, effectType EffectType) bool {
	for _, eff := range effects {
		if eff.Type == effectType {
			return true
		}
	}
	return false
}
