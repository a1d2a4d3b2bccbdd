package domain

import "time"

// SnapshotRepository is a secondary port that persists the durable recovery snapshot.
type SnapshotRepository interface {
	// Load returns found=false when no snapshot has been written yet.
	Load() (snapshot Snapshot, found bool, err error)
	Save(snapshot Snapshot) error
}

// StateStore is a secondary port for the cross-process published state.
// Writers replace the whole blob; readers get the latest complete write.
type StateStore interface {
	Write(state PublishedState) error
	Read() (state PublishedState, found bool, err error)
}

// Notifier is a secondary port that raises a user-visible alert at a given time.
// Only one alert is pending at a time; Schedule replaces it.
type Notifier interface {
	Schedule(at time.Time, title, body string) error
	Cancel()
}

// StatisticsRecorder is a secondary port for the append-only day-keyed counters.
type StatisticsRecorder interface {
	RecordFocusCompletion(duration time.Duration, completedAt time.Time) error
	RecordBreakTaken(takenAt time.Time) error
}

// StatisticsReader is the read side of the statistics store.
type StatisticsReader interface {
	Day(day string) (DayStats, error)
	// Range returns the days in [from, to] that have any activity, oldest first.
	Range(from, to string) ([]DayStats, error)
}

// TaskRepository is a secondary port for the task list.
type TaskRepository interface {
	Add(title string) (Task, error)
	List() ([]Task, error)
	SetDone(id int64, done bool) (Task, error)
	Rename(id int64, title string) (Task, error)
	Delete(id int64) error
}
