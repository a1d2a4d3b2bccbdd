package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func runningState(start time.Time, duration time.Duration) TimerState {
	return TimerState{
		Status:    StatusFocus,
		Mode:      ModeFocus,
		StartDate: start,
		EndDate:   start.Add(duration),
		Duration:  duration,
	}
}

func TestFractionCompleted_Unscheduled(t *testing.T) {
	state := NewIdleState(ModeFocus, DefaultSettings())

	require.Zero(t, state.FractionCompleted(t0))
	require.Zero(t, state.RemainingTime(t0))
	require.Equal(t, 25*time.Minute, state.DisplayRemaining(t0), "idle shows the upcoming full duration")
}

func TestFractionCompleted_ZeroDurationIsDone(t *testing.T) {
	state := runningState(t0, 0)

	require.Equal(t, 1.0, state.FractionCompleted(t0))
	require.Zero(t, state.RemainingTime(t0))
}

func TestFractionCompleted_Clamped(t *testing.T) {
	state := runningState(t0, 100*time.Second)

	require.Zero(t, state.FractionCompleted(t0.Add(-time.Hour)), "before start clamps to 0")
	require.Equal(t, 1.0, state.FractionCompleted(t0.Add(time.Hour)), "after end clamps to 1")
	require.Zero(t, state.RemainingTime(t0.Add(time.Hour)))
}

// Scenario A: halfway through a 1500s session.
func TestProgress_Halfway(t *testing.T) {
	state := runningState(t0, 1500*time.Second)
	at := t0.Add(750 * time.Second)

	require.InDelta(t, 0.5, state.FractionCompleted(at), 1e-9)
	require.InDelta(t, 750, state.RemainingTime(at).Seconds(), 1e-6)
}

// Scenario B: paused at 30s of 100s stays at 0.30 however long the pause lasts.
func TestProgress_FrozenWhilePaused(t *testing.T) {
	state, _ := HandleEvent(runningState(t0, 100*time.Second), Event{Type: EventPause}, DefaultSettings(), t0.Add(30*time.Second))
	require.Equal(t, StatusPaused, state.Status)

	for _, x := range []time.Duration{0, time.Second, 10 * time.Minute, 72 * time.Hour} {
		at := t0.Add(30*time.Second + x)
		require.InDelta(t, 0.30, state.FractionCompleted(at), 1e-9, "x=%s", x)
		require.InDelta(t, 70, state.RemainingTime(at).Seconds(), 1e-6, "x=%s", x)
	}
}

// Scenario C: 20s pause is excluded from elapsed time.
func TestProgress_AccumulatedPauseExcluded(t *testing.T) {
	settings := DefaultSettings()
	state, _ := HandleEvent(runningState(t0, 100*time.Second), Event{Type: EventPause}, settings, t0.Add(30*time.Second))
	state, _ = HandleEvent(state, Event{Type: EventResume}, settings, t0.Add(50*time.Second))

	require.Equal(t, 20*time.Second, state.AccumulatedPause)
	require.Equal(t, t0.Add(100*time.Second), state.EndDate, "pauses never move endDate")
	require.Equal(t, t0.Add(120*time.Second), state.CompletionDate())
	require.InDelta(t, 0.40, state.FractionCompleted(t0.Add(90*time.Second)), 1e-9)
}

func genState(r *rapid.T) TimerState {
	duration := time.Duration(rapid.Int64Range(1, int64(3*time.Hour)).Draw(r, "duration"))
	start := t0.Add(time.Duration(rapid.Int64Range(-int64(24*time.Hour), int64(24*time.Hour)).Draw(r, "startOffset")))
	pause := time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(r, "accumulatedPause"))
	state := runningState(start, duration)
	state.AccumulatedPause = pause
	if rapid.Bool().Draw(r, "paused") {
		state.Status = StatusPaused
		state.PauseDate = start.Add(time.Duration(rapid.Int64Range(0, int64(4*time.Hour)).Draw(r, "pauseOffset")))
	}
	return state
}

func TestProperty_MonotonicWhileRunning(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		state := genState(r)
		state.Status = StatusFocus
		state.PauseDate = time.Time{}

		a := t0.Add(time.Duration(rapid.Int64Range(-int64(48*time.Hour), int64(48*time.Hour)).Draw(r, "t1")))
		b := a.Add(time.Duration(rapid.Int64Range(0, int64(48*time.Hour)).Draw(r, "delta")))

		if state.FractionCompleted(b) < state.FractionCompleted(a) {
			r.Fatalf("fraction decreased: f(%s)=%v > f(%s)=%v", a, state.FractionCompleted(a), b, state.FractionCompleted(b))
		}
	})
}

func TestProperty_ConstantWhilePaused(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		state := genState(r)
		state.Status = StatusPaused
		if state.PauseDate.IsZero() {
			state.PauseDate = state.StartDate
		}
		at := t0.Add(time.Duration(rapid.Int64Range(-int64(48*time.Hour), int64(48*time.Hour)).Draw(r, "t")))

		if got, want := state.FractionCompleted(at), state.FractionCompleted(state.PauseDate); got != want {
			r.Fatalf("paused fraction moved: %v != %v", got, want)
		}
	})
}

func TestProperty_RemainingMatchesFraction(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		state := genState(r)
		at := t0.Add(time.Duration(rapid.Int64Range(-int64(48*time.Hour), int64(48*time.Hour)).Draw(r, "t")))

		fraction := state.FractionCompleted(at)
		if fraction < 0 || fraction > 1 {
			r.Fatalf("fraction out of range: %v", fraction)
		}
		want := float64(state.Total()) * (1 - fraction)
		got := float64(state.RemainingTime(at))
		if got < 0 || math.Abs(got-want) > 1 {
			r.Fatalf("remaining %v, want %v", got, want)
		}
	})
}

func TestProperty_PublishedProjectionAgrees(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		state := genState(r)
		at := t0.Add(time.Duration(rapid.Int64Range(-int64(48*time.Hour), int64(48*time.Hour)).Draw(r, "t")))

		surface := PublishedStateOf(state, t0).Timer()
		if surface.FractionCompleted(at) != state.FractionCompleted(at) {
			r.Fatalf("surface disagrees with controller at %s", at)
		}
	})
}
