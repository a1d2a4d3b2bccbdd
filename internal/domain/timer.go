package domain

import "time"

// TimerState describes the current session. It is the single source of truth
// for "what is happening right now".
//
// Progress is never stored. FractionCompleted and RemainingTime derive it from
// the absolute dates and a caller-supplied clock reading, so every process that
// reads the same fields at the same instant computes the same answer.
type TimerState struct {
	Status Status
	// Mode is the interval being timed, or the one up next while idle.
	// While paused it is the mode that Resume returns to.
	Mode Mode

	// Zero while idle.
	StartDate time.Time
	EndDate   time.Time
	// Non-zero only while paused.
	PauseDate        time.Time
	AccumulatedPause time.Duration

	SessionCount  int
	BreakCount    int
	TotalSessions int

	// Duration is the full length of Mode's interval as configured when it
	// was scheduled. While idle it is what surfaces display as remaining.
	Duration time.Duration

	ModeName      string
	ModeColorName string
}

// NewIdleState returns a timer at rest, ready to start the given mode.
func NewIdleState(mode Mode, settings Settings) TimerState {
	state := TimerState{
		Status:        StatusIdle,
		TotalSessions: settings.SessionsBeforeLongBreak,
	}
	return state.withMode(mode, settings.DurationFor(mode))
}

func (s TimerState) withMode(mode Mode, duration time.Duration) TimerState {
	s.Mode = mode
	s.Duration = duration
	s.ModeName = mode.DisplayName()
	s.ModeColorName = mode.ColorName()
	return s
}

// IsRunning reports whether an interval is actively counting down.
func (s TimerState) IsRunning() bool {
	return s.Status == StatusFocus || s.Status == StatusBreak
}

// IsScheduled reports whether the state carries interval dates.
func (s TimerState) IsScheduled() bool {
	return !s.StartDate.IsZero() && !s.EndDate.IsZero()
}

// Total is the scheduled interval length, endDate - startDate.
func (s TimerState) Total() time.Duration {
	if !s.IsScheduled() {
		return 0
	}
	return s.EndDate.Sub(s.StartDate)
}

// CompletionDate is the instant the interval actually completes once the
// pauses already absorbed into the schedule are accounted for.
func (s TimerState) CompletionDate() time.Time {
	if !s.IsScheduled() {
		return time.Time{}
	}
	return s.EndDate.Add(s.AccumulatedPause)
}

// FractionCompleted returns the completed share of the interval at t, in [0,1].
// A zero-length interval counts as done.
func (s TimerState) FractionCompleted(t time.Time) float64 {
	if !s.IsScheduled() {
		return 0
	}
	total := s.EndDate.Sub(s.StartDate)
	if total <= 0 {
		return 1
	}

	effectiveNow := t
	if s.Status == StatusPaused && !s.PauseDate.IsZero() {
		effectiveNow = s.PauseDate
	}
	elapsed := effectiveNow.Sub(s.StartDate) - s.AccumulatedPause

	fraction := float64(elapsed) / float64(total)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// RemainingTime returns how much of the interval is left at t, never negative.
func (s TimerState) RemainingTime(t time.Time) time.Duration {
	remaining := time.Duration(float64(s.Total()) * (1 - s.FractionCompleted(t)))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DisplayRemaining is what a surface should show as the countdown: the full
// upcoming duration while idle, otherwise RemainingTime.
func (s TimerState) DisplayRemaining(t time.Time) time.Duration {
	if s.Status == StatusIdle {
		return s.Duration
	}
	return s.RemainingTime(t)
}
