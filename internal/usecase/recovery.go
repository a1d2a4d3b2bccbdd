package usecase

import (
	"time"

	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
)

// RecoveryEngine rebuilds the timer from the durable snapshot after the
// process was suspended, killed or relaunched.
type RecoveryEngine struct {
	snapshots domain.SnapshotRepository
}

// NewRecoveryEngine creates a recovery engine reading from snapshots.
func NewRecoveryEngine(snapshots domain.SnapshotRepository) *RecoveryEngine {
	return &RecoveryEngine{snapshots: snapshots}
}

// Recover reads the last snapshot and reconstructs the state at now. An
// unreadable snapshot is treated as absent.
func (r *RecoveryEngine) Recover(settings domain.Settings, now time.Time) (domain.TimerState, domain.RecoveryOutcome) {
	var (
		snapshot domain.Snapshot
		found    bool
	)
	if r.snapshots != nil {
		var err error
		snapshot, found, err = r.snapshots.Load()
		if err != nil {
			logging.Warnf("snapshot unreadable, starting idle: %v", err)
			found = false
		}
	}

	state, outcome := domain.Reconstruct(snapshot, found, settings, now)
	logging.Debugf("recovered %s (%s, %s left)", outcome, state.Mode, state.DisplayRemaining(now).Round(time.Second))
	return state, outcome
}

// Resume reconstructs from a snapshot of the live state rather than the disk.
func (r *RecoveryEngine) Resume(current domain.TimerState, settings domain.Settings, now time.Time) (domain.TimerState, domain.RecoveryOutcome) {
	state, outcome := domain.Reconstruct(domain.SnapshotOf(current, now), true, settings, now)
	logging.Debugf("resumed %s (%s, %s left)", outcome, state.Mode, state.DisplayRemaining(now).Round(time.Second))
	return state, outcome
}
