package domain

import "time"

// DayLayout is the calendar-day key format used by statistics.
const DayLayout = "2006-01-02"

// DayKey returns the local calendar day t falls on.
func DayKey(t time.Time) string {
	return t.Local().Format(DayLayout)
}

// ParseDay parses a DayKey back into local midnight.
func ParseDay(key string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, time.Local)
}

// DayStats holds the counters for one calendar day.
type DayStats struct {
	Day           string
	FocusSessions int
	FocusTime     time.Duration
	Breaks        int
}

// FocusRecord is one completed focus session.
type FocusRecord struct {
	ID          string
	Day         string
	Duration    time.Duration
	CompletedAt time.Time
}
