package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pomotimer/internal/domain"
)

// RecordFocusCompletion logs the session and bumps the counters of the day it
// completed on.
func (d *DB) RecordFocusCompletion(duration time.Duration, completedAt time.Time) error {
	day := domain.DayKey(completedAt)

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("record focus: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO focus_sessions (id, day, duration_seconds, completed_at) VALUES (?, ?, ?, ?);`,
		uuid.NewString(), day, duration.Seconds(), formatTime(completedAt),
	); err != nil {
		return fmt.Errorf("record focus: insert session: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO daily_stats (day, focus_sessions, focus_seconds, breaks) VALUES (?, 1, ?, 0)
		ON CONFLICT(day) DO UPDATE SET
			focus_sessions = focus_sessions + 1,
			focus_seconds = focus_seconds + excluded.focus_seconds;`,
		day, duration.Seconds(),
	); err != nil {
		return fmt.Errorf("record focus: update day: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record focus: commit: %w", err)
	}
	return nil
}

// RecordBreakTaken bumps the break counter of the day the break ended on.
func (d *DB) RecordBreakTaken(takenAt time.Time) error {
	_, err := d.db.Exec(`
		INSERT INTO daily_stats (day, focus_sessions, focus_seconds, breaks) VALUES (?, 0, 0, 1)
		ON CONFLICT(day) DO UPDATE SET breaks = breaks + 1;`,
		domain.DayKey(takenAt),
	)
	if err != nil {
		return fmt.Errorf("record break: %w", err)
	}
	return nil
}

// Day returns one day's counters; a day without activity is all zeros.
func (d *DB) Day(day string) (domain.DayStats, error) {
	row := d.db.QueryRow(
		`SELECT day, focus_sessions, focus_seconds, breaks FROM daily_stats WHERE day = ?;`, day,
	)
	stats, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DayStats{Day: day}, nil
	}
	if err != nil {
		return domain.DayStats{}, fmt.Errorf("read day %s: %w", day, err)
	}
	return stats, nil
}

// Range returns the active days between from and to inclusive, oldest first.
func (d *DB) Range(from, to string) ([]domain.DayStats, error) {
	rows, err := d.db.Query(`
		SELECT day, focus_sessions, focus_seconds, breaks FROM daily_stats
		WHERE day BETWEEN ? AND ? ORDER BY day;`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("read range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []domain.DayStats
	for rows.Next() {
		stats, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, stats)
	}
	return days, rows.Err()
}

// FocusSessions lists the sessions completed on day, in completion order.
func (d *DB) FocusSessions(day string) ([]domain.FocusRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, day, duration_seconds, completed_at FROM focus_sessions
		WHERE day = ? ORDER BY completed_at;`, day,
	)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.FocusRecord
	for rows.Next() {
		var (
			record    domain.FocusRecord
			seconds   float64
			completed string
		)
		if err := rows.Scan(&record.ID, &record.Day, &seconds, &completed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		record.Duration = time.Duration(seconds * float64(time.Second))
		if record.CompletedAt, err = parseTime(completed); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(row scanner) (domain.DayStats, error) {
	var (
		stats   domain.DayStats
		seconds float64
	)
	if err := row.Scan(&stats.Day, &stats.FocusSessions, &seconds, &stats.Breaks); err != nil {
		return domain.DayStats{}, err
	}
	stats.FocusTime = time.Duration(seconds * float64(time.Second))
	return stats, nil
}
