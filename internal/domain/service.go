package domain

import "time"

// HandleEvent is a pure function that takes the current timer state and an
// input event, and returns the new state along with the effects to execute.
//
// Events arriving from a state where they are not legal (Resume while idle,
// Pause while paused, Tick while not running) return the state unchanged and
// no effects.
func HandleEvent(state TimerState, event Event, settings Settings, now time.Time) (TimerState, []Effect) {
	switch event.Type {
	case EventStartFocus:
		return startInterval(state, ModeFocus, settings, now)
	case EventStartBreak:
		mode := ModeShortBreak
		if event.Long {
			mode = ModeLongBreak
		}
		return startInterval(state, mode, settings, now)
	case EventPause:
		return pause(state, now)
	case EventResume:
		return resume(state, now)
	case EventStop:
		return stop(state, settings)
	case EventSkip:
		return skip(state, settings, now)
	case EventTick:
		return tick(state, settings, now)
	default:
		return state, nil
	}
}

// NextBreak selects the break that follows a focus session, given the number
// of focus sessions completed in the cycle so far (including that one).
func NextBreak(sessionCount, totalSessions int) Mode {
	if totalSessions < 1 {
		totalSessions = 1
	}
	if sessionCount > 0 && sessionCount%totalSessions == 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}

// ApplySettings returns state as it looks once settings change. Only an idle
// timer is affected; a scheduled interval keeps the length it started with.
func ApplySettings(state TimerState, settings Settings) TimerState {
	if state.Status != StatusIdle {
		return state
	}
	next := state.withMode(state.Mode, settings.DurationFor(state.Mode))
	next.TotalSessions = settings.SessionsBeforeLongBreak
	return next
}

func startInterval(state TimerState, mode Mode, settings Settings, now time.Time) (TimerState, []Effect) {
	duration := settings.DurationFor(mode)

	next := state.withMode(mode, duration)
	next.Status = mode.RunningStatus()
	next.StartDate = now
	next.EndDate = now.Add(duration)
	next.PauseDate = time.Time{}
	next.AccumulatedPause = 0
	next.TotalSessions = settings.SessionsBeforeLongBreak

	title, body := CompletionMessage(mode)
	return next, []Effect{
		{Type: EffectStopTicker},
		{Type: EffectCancelNotification},
		{Type: EffectScheduleNotification, At: next.CompletionDate(), Title: title, Body: body, Mode: mode},
		{Type: EffectStartTicker},
		{Type: EffectPersist},
	}
}

func pause(state TimerState, now time.Time) (TimerState, []Effect) {
	if !state.IsRunning() {
		return state, nil
	}
	next := state
	next.Status = StatusPaused
	next.PauseDate = now
	return next, []Effect{
		{Type: EffectStopTicker},
		{Type: EffectCancelNotification},
		{Type: EffectPersist},
	}
}

func resume(state TimerState, now time.Time) (TimerState, []Effect) {
	if state.Status != StatusPaused {
		return state, nil
	}
	next := state
	if paused := now.Sub(state.PauseDate); !state.PauseDate.IsZero() && paused > 0 {
		next.AccumulatedPause += paused
	}
	next.PauseDate = time.Time{}
	next.Status = state.Mode.RunningStatus()

	title, body := CompletionMessage(next.Mode)
	return next, []Effect{
		{Type: EffectCancelNotification},
		{Type: EffectScheduleNotification, At: next.CompletionDate(), Title: title, Body: body, Mode: next.Mode},
		{Type: EffectStartTicker},
		{Type: EffectPersist},
	}
}

func stop(state TimerState, settings Settings) (TimerState, []Effect) {
	next := state.withMode(state.Mode, settings.DurationFor(state.Mode))
	next.Status = StatusIdle
	next.StartDate = time.Time{}
	next.EndDate = time.Time{}
	next.PauseDate = time.Time{}
	next.AccumulatedPause = 0
	return next, []Effect{
		{Type: EffectStopTicker},
		{Type: EffectCancelNotification},
		{Type: EffectPersist},
	}
}

// skip moves one step through the cycle without counting the skipped
// interval, leaving a fresh paused session of the next mode.
func skip(state TimerState, settings Settings, now time.Time) (TimerState, []Effect) {
	total := cycleLength(state, settings)

	next := state
	var mode Mode
	if state.Mode.IsBreak() {
		mode = ModeFocus
		if next.SessionCount >= total {
			next.SessionCount = 0
		}
	} else {
		mode = NextBreak(state.SessionCount+1, total)
	}

	duration := settings.DurationFor(mode)
	next = next.withMode(mode, duration)
	next.Status = StatusPaused
	next.StartDate = now
	next.EndDate = now.Add(duration)
	next.PauseDate = now
	next.AccumulatedPause = 0
	return next, []Effect{
		{Type: EffectStopTicker},
		{Type: EffectCancelNotification},
		{Type: EffectPersist},
	}
}

func tick(state TimerState, settings Settings, now time.Time) (TimerState, []Effect) {
	if !state.IsRunning() {
		return state, nil
	}
	if state.RemainingTime(now) > 0 {
		return state, nil
	}
	return finish(state, settings, now)
}

func finish(state TimerState, settings Settings, now time.Time) (TimerState, []Effect) {
	completed := state.Mode
	completedAt := now
	if due := state.CompletionDate(); !due.IsZero() && due.Before(now) {
		completedAt = due
	}
	total := cycleLength(state, settings)

	effects := []Effect{
		{Type: EffectStopTicker},
		{Type: EffectCancelNotification},
	}

	next := state
	var upcoming Mode
	if completed.IsBreak() {
		next.BreakCount++
		effects = append(effects, Effect{Type: EffectRecordBreak, At: completedAt, Mode: completed})
		if next.SessionCount >= total {
			next.SessionCount = 0
			effects = append(effects, Effect{Type: EffectCycleComplete, At: completedAt})
		}
		upcoming = ModeFocus
	} else {
		next.SessionCount++
		effects = append(effects, Effect{Type: EffectRecordFocus, At: completedAt, Mode: completed, Duration: state.Total()})
		upcoming = NextBreak(next.SessionCount, total)
	}
	effects = append(effects, Effect{Type: EffectSessionFinished, At: completedAt, Mode: completed, Duration: state.Total()})

	next = next.withMode(upcoming, settings.DurationFor(upcoming))
	next.Status = StatusIdle
	next.StartDate = time.Time{}
	next.EndDate = time.Time{}
	next.PauseDate = time.Time{}
	next.AccumulatedPause = 0

	if settings.Continuous {
		started, startEffects := startInterval(next, upcoming, settings, now)
		return started, append(effects, startEffects...)
	}
	return next, append(effects, Effect{Type: EffectPersist})
}

func cycleLength(state TimerState, settings Settings) int {
	if state.TotalSessions > 0 {
		return state.TotalSessions
	}
	if settings.SessionsBeforeLongBreak > 0 {
		return settings.SessionsBeforeLongBreak
	}
	return 1
}

// CompletionMessage is the alert text for an interval of mode running out.
func CompletionMessage(mode Mode) (title, body string) {
	switch mode {
	case ModeShortBreak:
		return "Break is over", "Ready for the next focus session?"
	case ModeLongBreak:
		return "Long break is over", "A new cycle starts with the next focus session."
	default:
		return "Focus session complete", "Time to take a break."
	}
}
