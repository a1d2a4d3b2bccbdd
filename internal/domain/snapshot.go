package domain

import "time"

// Snapshot is the durable last-known state used to survive the process being
// suspended or killed. It is written on every transition and when the process
// is about to lose the CPU, and read once when the process comes back.
type Snapshot struct {
	Status    Status
	IsRunning bool
	// Remaining is the interval time left at Timestamp.
	Remaining time.Duration
	Mode      Mode
	Timestamp time.Time

	Duration      time.Duration
	SessionCount  int
	BreakCount    int
	TotalSessions int
}

// SnapshotOf captures state as seen at now.
func SnapshotOf(state TimerState, now time.Time) Snapshot {
	return Snapshot{
		Status:        state.Status,
		IsRunning:     state.IsRunning(),
		Remaining:     state.DisplayRemaining(now),
		Mode:          state.Mode,
		Timestamp:     now,
		Duration:      state.Duration,
		SessionCount:  state.SessionCount,
		BreakCount:    state.BreakCount,
		TotalSessions: state.TotalSessions,
	}
}

// RecoveryOutcome describes what Reconstruct concluded from a snapshot.
type RecoveryOutcome string

const (
	RecoveredDefault  RecoveryOutcome = "default"
	RecoveredIdle     RecoveryOutcome = "idle"
	RecoveredRunning  RecoveryOutcome = "running"
	RecoveredPaused   RecoveryOutcome = "paused"
	RecoveredFinished RecoveryOutcome = "finished"
)

// Reconstruct rebuilds the timer from the last snapshot and the wall-clock
// gap since it was taken.
//
// A running interval whose remaining time has been consumed by the gap is
// returned as a running state with nothing left; a single Tick then finishes
// it. However long the gap, at most one completion is produced.
func Reconstruct(snapshot Snapshot, found bool, settings Settings, now time.Time) (TimerState, RecoveryOutcome) {
	if !found {
		return NewIdleState(ModeFocus, settings), RecoveredDefault
	}

	mode := snapshot.Mode
	if _, err := ParseMode(string(mode)); err != nil {
		mode = ModeFocus
	}
	duration := snapshot.Duration
	if duration <= 0 {
		duration = settings.DurationFor(mode)
	}
	remaining := snapshot.Remaining
	if remaining > duration {
		remaining = duration
	}

	state := NewIdleState(mode, settings)
	state.SessionCount = snapshot.SessionCount
	state.BreakCount = snapshot.BreakCount
	if snapshot.TotalSessions > 0 {
		state.TotalSessions = snapshot.TotalSessions
	}

	switch {
	case snapshot.IsRunning:
		// startDate = now - (duration - recovered), recovered = remaining - gap.
		state.Duration = duration
		state.StartDate = snapshot.Timestamp.Add(remaining - duration)
		state.EndDate = state.StartDate.Add(duration)
		state.Status = mode.RunningStatus()
		gap := now.Sub(snapshot.Timestamp)
		if remaining-gap <= 0 {
			return state, RecoveredFinished
		}
		return state, RecoveredRunning
	case snapshot.Status == StatusPaused:
		state.Duration = duration
		state.StartDate = now.Add(remaining - duration)
		state.EndDate = state.StartDate.Add(duration)
		state.PauseDate = now
		state.Status = StatusPaused
		return state, RecoveredPaused
	default:
		return state, RecoveredIdle
	}
}

// PublishedState is the projection written to shared storage for
// out-of-process presentation surfaces. Surfaces call Timer() and then the
// same pure progress functions against their own clock.
type PublishedState struct {
	Status           Status
	Mode             Mode
	StartDate        time.Time
	EndDate          time.Time
	PauseDate        time.Time
	AccumulatedPause time.Duration
	Duration         time.Duration
	ModeName         string
	ModeColorName    string
	SessionCount     int
	TotalSessions    int
	PublishedAt      time.Time
}

// PublishedStateOf projects state for publication.
func PublishedStateOf(state TimerState, now time.Time) PublishedState {
	return PublishedState{
		Status:           state.Status,
		Mode:             state.Mode,
		StartDate:        state.StartDate,
		EndDate:          state.EndDate,
		PauseDate:        state.PauseDate,
		AccumulatedPause: state.AccumulatedPause,
		Duration:         state.Duration,
		ModeName:         state.ModeName,
		ModeColorName:    state.ModeColorName,
		SessionCount:     state.SessionCount,
		TotalSessions:    state.TotalSessions,
		PublishedAt:      now,
	}
}

// Timer rebuilds the timing fields of a TimerState from the projection.
func (p PublishedState) Timer() TimerState {
	return TimerState{
		Status:           p.Status,
		Mode:             p.Mode,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		PauseDate:        p.PauseDate,
		AccumulatedPause: p.AccumulatedPause,
		SessionCount:     p.SessionCount,
		TotalSessions:    p.TotalSessions,
		Duration:         p.Duration,
		ModeName:         p.ModeName,
		ModeColorName:    p.ModeColorName,
	}
}
