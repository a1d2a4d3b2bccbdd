package usecase

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pomotimer/internal/domain"
)

const (
	statsCacheExpiration = 5 * time.Minute
	statsCacheCleanup    = 10 * time.Minute
)

// StatisticsStore is what the statistics service needs from storage.
type StatisticsStore interface {
	domain.StatisticsRecorder
	domain.StatisticsReader
}

// Summary aggregates a range of days.
type Summary struct {
	From          string
	To            string
	Days          []domain.DayStats
	FocusSessions int
	FocusTime     time.Duration
	Breaks        int
	Streak        int
}

// StatisticsService is the write-through front of the statistics store. Reads
// are cached and every write invalidates the day it touched.
type StatisticsService struct {
	store StatisticsStore
	cache *gocache.Cache
	now   func() time.Time
}

// NewStatisticsService wraps store. now defaults to time.Now.
func NewStatisticsService(store StatisticsStore, now func() time.Time) *StatisticsService {
	if now == nil {
		now = time.Now
	}
	return &StatisticsService{
		store: store,
		cache: gocache.New(statsCacheExpiration, statsCacheCleanup),
		now:   now,
	}
}

func (s *StatisticsService) RecordFocusCompletion(duration time.Duration, completedAt time.Time) error {
	if err := s.store.RecordFocusCompletion(duration, completedAt); err != nil {
		return err
	}
	s.invalidate(domain.DayKey(completedAt))
	return nil
}

func (s *StatisticsService) RecordBreakTaken(takenAt time.Time) error {
	if err := s.store.RecordBreakTaken(takenAt); err != nil {
		return err
	}
	s.invalidate(domain.DayKey(takenAt))
	return nil
}

// invalidate drops the day entry and every cached range.
func (s *StatisticsService) invalidate(day string) {
	s.cache.Delete(dayCacheKey(day))
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, "range:") {
			s.cache.Delete(key)
		}
	}
}

// Day returns the counters for one day; days without activity are zero.
func (s *StatisticsService) Day(day string) (domain.DayStats, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return domain.DayStats{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	key := dayCacheKey(day)
	if cached, ok := s.cache.Get(key); ok {
		if stats, ok := cached.(domain.DayStats); ok {
			return stats, nil
		}
	}
	stats, err := s.store.Day(day)
	if err != nil {
		return domain.DayStats{}, err
	}
	s.cache.SetDefault(key, stats)
	return stats, nil
}

// Today returns the counters for the current local day.
func (s *StatisticsService) Today() (domain.DayStats, error) {
	return s.Day(domain.DayKey(s.now()))
}

// Range returns the active days in [from, to], oldest first.
func (s *StatisticsService) Range(from, to string) ([]domain.DayStats, error) {
	start, err := domain.ParseDay(from)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", from, err)
	}
	end, err := domain.ParseDay(to)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", to, err)
	}
	if end.Before(start) {
		from, to = to, from
	}

	key := "range:" + from + ":" + to
	if cached, ok := s.cache.Get(key); ok {
		if days, ok := cached.([]domain.DayStats); ok {
			return days, nil
		}
	}
	days, err := s.store.Range(from, to)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, days)
	return days, nil
}

// Summary reports the last n days ending today, with the current streak.
func (s *StatisticsService) Summary(days int) (Summary, error) {
	if days < 1 {
		days = 1
	}
	today := s.now()
	from := domain.DayKey(today.AddDate(0, 0, -(days - 1)))
	to := domain.DayKey(today)

	active, err := s.Range(from, to)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{From: from, To: to, Days: active}
	for _, day := range active {
		summary.FocusSessions += day.FocusSessions
		summary.FocusTime += day.FocusTime
		summary.Breaks += day.Breaks
	}
	streak, err := s.Streak()
	if err != nil {
		return Summary{}, err
	}
	summary.Streak = streak
	return summary, nil
}

// Streak counts consecutive days with at least one focus session, ending
// today, or yesterday when nothing has been completed yet today.
func (s *StatisticsService) Streak() (int, error) {
	day := s.now()
	stats, err := s.Day(domain.DayKey(day))
	if err != nil {
		return 0, err
	}
	streak := 0
	if stats.FocusSessions > 0 {
		streak = 1
	}
	for {
		day = day.AddDate(0, 0, -1)
		stats, err := s.Day(domain.DayKey(day))
		if err != nil {
			return 0, err
		}
		if stats.FocusSessions == 0 {
			return streak, nil
		}
		streak++
	}
}

func dayCacheKey(day string) string {
	return "day:" + day
}
