package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReconstruct_NoSnapshot(t *testing.T) {
	settings := testSettings()

	state, outcome := Reconstruct(Snapshot{}, false, settings, t0)

	require.Equal(t, RecoveredDefault, outcome)
	require.Equal(t, StatusIdle, state.Status)
	require.Equal(t, ModeFocus, state.Mode)
	require.Equal(t, settings.Focus, state.DisplayRemaining(t0))
}

// Scenario D: the session kept running while the process was suspended.
func TestReconstruct_RunningThroughSuspension(t *testing.T) {
	settings := testSettings()
	snapshot := Snapshot{
		Status:       StatusFocus,
		IsRunning:    true,
		Remaining:    40 * time.Second,
		Mode:         ModeFocus,
		Timestamp:    t0,
		Duration:     100 * time.Second,
		SessionCount: 2,
	}
	now := t0.Add(10 * time.Second)

	state, outcome := Reconstruct(snapshot, true, settings, now)

	require.Equal(t, RecoveredRunning, outcome)
	require.Equal(t, StatusFocus, state.Status)
	require.Equal(t, 2, state.SessionCount)
	require.InDelta(t, 30, state.RemainingTime(now).Seconds(), 1e-6)
	require.Equal(t, now.Add(-70*time.Second), state.StartDate)
	require.Equal(t, 100*time.Second, state.Total())
}

// Scenario E: the session ended while the process was suspended.
func TestReconstruct_FinishedDuringSuspension(t *testing.T) {
	settings := testSettings()
	snapshot := Snapshot{
		Status:       StatusFocus,
		IsRunning:    true,
		Remaining:    5 * time.Second,
		Mode:         ModeFocus,
		Timestamp:    t0,
		Duration:     100 * time.Second,
		SessionCount: 1,
	}
	now := t0.Add(20 * time.Second)

	state, outcome := Reconstruct(snapshot, true, settings, now)
	require.Equal(t, RecoveredFinished, outcome)
	require.Zero(t, state.RemainingTime(now))

	finished, effects := HandleEvent(state, Event{Type: EventTick}, settings, now)
	require.Equal(t, 2, finished.SessionCount)
	require.Equal(t, StatusIdle, finished.Status)
	require.Equal(t, t0.Add(5*time.Second), effects[2].At)

	again, effects := HandleEvent(finished, Event{Type: EventTick}, settings, now)
	require.Equal(t, finished, again)
	require.Empty(t, effects)
}

func TestReconstruct_GapSpanningManySessionsCollapses(t *testing.T) {
	settings := testSettings()
	snapshot := Snapshot{IsRunning: true, Status: StatusFocus, Remaining: 5 * time.Second, Mode: ModeFocus, Timestamp: t0, Duration: 100 * time.Second}

	state, outcome := Reconstruct(snapshot, true, settings, t0.Add(30*24*time.Hour))
	require.Equal(t, RecoveredFinished, outcome)

	state, _ = HandleEvent(state, Event{Type: EventTick}, settings, t0.Add(30*24*time.Hour))
	require.Equal(t, 1, state.SessionCount)
}

func TestReconstruct_Paused(t *testing.T) {
	settings := testSettings()
	snapshot := Snapshot{
		Status:    StatusPaused,
		Remaining: 70 * time.Second,
		Mode:      ModeShortBreak,
		Timestamp: t0,
		Duration:  100 * time.Second,
	}
	now := t0.Add(6 * time.Hour)

	state, outcome := Reconstruct(snapshot, true, settings, now)

	require.Equal(t, RecoveredPaused, outcome)
	require.Equal(t, StatusPaused, state.Status)
	require.Equal(t, ModeShortBreak, state.Mode)
	require.InDelta(t, 70, state.RemainingTime(now.Add(time.Hour)).Seconds(), 1e-6)

	resumed, _ := HandleEvent(state, Event{Type: EventResume}, settings, now.Add(time.Hour))
	require.Equal(t, StatusBreak, resumed.Status)
	require.InDelta(t, 70, resumed.RemainingTime(now.Add(time.Hour)).Seconds(), 1e-6)
}

func TestReconstruct_IdleKeepsUpcomingMode(t *testing.T) {
	settings := testSettings()
	snapshot := Snapshot{Status: StatusIdle, Mode: ModeLongBreak, Timestamp: t0, SessionCount: 4, BreakCount: 3, TotalSessions: 4}

	state, outcome := Reconstruct(snapshot, true, settings, t0.Add(time.Hour))

	require.Equal(t, RecoveredIdle, outcome)
	require.Equal(t, ModeLongBreak, state.Mode)
	require.Equal(t, 4, state.SessionCount)
	require.Equal(t, 3, state.BreakCount)
	require.Equal(t, settings.LongBreak, state.DisplayRemaining(t0))
}

func TestSnapshotOf_RoundTripsThroughReconstruct(t *testing.T) {
	settings := testSettings()
	state, _ := HandleEvent(NewIdleState(ModeFocus, settings), Event{Type: EventStartFocus}, settings, t0)
	state, _ = HandleEvent(state, Event{Type: EventPause}, settings, t0.Add(25*time.Second))

	snapshot := SnapshotOf(state, t0.Add(time.Minute))
	require.False(t, snapshot.IsRunning)
	require.Equal(t, 75*time.Second, snapshot.Remaining)

	restored, outcome := Reconstruct(snapshot, true, settings, t0.Add(time.Hour))
	require.Equal(t, RecoveredPaused, outcome)
	require.InDelta(t, 0.25, restored.FractionCompleted(t0.Add(2*time.Hour)), 1e-9)
}
