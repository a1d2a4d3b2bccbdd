package usecase

import (
	"errors"
	"sync"
	"time"

	"pomotimer/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testSettings() domain.Settings {
	return domain.Settings{
		Focus:                   100 * time.Second,
		ShortBreak:              20 * time.Second,
		LongBreak:               60 * time.Second,
		SessionsBeforeLongBreak: 4,
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type memSnapshots struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	found    bool
	saves    int
	failSave bool
}

func (m *memSnapshots) Load() (domain.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, m.found, nil
}

func (m *memSnapshots) Save(snapshot domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	m.snapshot = snapshot
	m.found = true
	m.saves++
	return nil
}

func (m *memSnapshots) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memSnapshots) Last() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

type memStore struct {
	mu     sync.Mutex
	state  domain.PublishedState
	found  bool
	writes int
}

func (m *memStore) Write(state domain.PublishedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.found = true
	m.writes++
	return nil
}

func (m *memStore) Read() (domain.PublishedState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.found, nil
}

type scheduled struct {
	At    time.Time
	Title string
}

type fakeNotifier struct {
	mu        sync.Mutex
	pending   *scheduled
	schedules []scheduled
	cancels   int
	fail      bool
}

func (n *fakeNotifier) Schedule(at time.Time, title, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("notifications unavailable")
	}
	s := scheduled{At: at, Title: title}
	n.pending = &s
	n.schedules = append(n.schedules, s)
	return nil
}

func (n *fakeNotifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = nil
	n.cancels++
}

func (n *fakeNotifier) Pending() (scheduled, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == nil {
		return scheduled{}, false
	}
	return *n.pending, true
}

type focusEntry struct {
	Duration time.Duration
	At       time.Time
}

type fakeStats struct {
	mu     sync.Mutex
	focus  []focusEntry
	breaks []time.Time
	days   map[string]domain.DayStats
	reads  int
}

func newFakeStats() *fakeStats {
	return &fakeStats{days: make(map[string]domain.DayStats)}
}

func (f *fakeStats) RecordFocusCompletion(duration time.Duration, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focus = append(f.focus, focusEntry{Duration: duration, At: at})
	day := domain.DayKey(at)
	stats := f.days[day]
	stats.Day = day
	stats.FocusSessions++
	stats.FocusTime += duration
	f.days[day] = stats
	return nil
}

func (f *fakeStats) RecordBreakTaken(at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breaks = append(f.breaks, at)
	day := domain.DayKey(at)
	stats := f.days[day]
	stats.Day = day
	stats.Breaks++
	f.days[day] = stats
	return nil
}

func (f *fakeStats) Day(day string) (domain.DayStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	stats, ok := f.days[day]
	if !ok {
		return domain.DayStats{Day: day}, nil
	}
	return stats, nil
}

func (f *fakeStats) Range(from, to string) ([]domain.DayStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	var out []domain.DayStats
	start, _ := domain.ParseDay(from)
	end, _ := domain.ParseDay(to)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if stats, ok := f.days[domain.DayKey(day)]; ok {
			out = append(out, stats)
		}
	}
	return out, nil
}

func (f *fakeStats) FocusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.focus)
}

func (f *fakeStats) Focus() []focusEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]focusEntry(nil), f.focus...)
}

func (f *fakeStats) BreakCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.breaks)
}

func (f *fakeStats) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}
