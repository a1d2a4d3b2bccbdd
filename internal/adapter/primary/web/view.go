package web

import (
	"math"
	"time"

	"pomotimer/internal/domain"
)

// StateView is the JSON shape of the timer. It carries the absolute dates so
// clients can compute progress against their own clock, plus the values the
// server computed at ServerTime for clients that do not.
type StateView struct {
	Status           domain.Status `json:"status"`
	Mode             domain.Mode   `json:"mode"`
	ModeName         string        `json:"modeName"`
	ModeColorName    string        `json:"modeColorName"`
	StartDate        *time.Time    `json:"startDate,omitempty"`
	EndDate          *time.Time    `json:"endDate,omitempty"`
	PauseDate        *time.Time    `json:"pauseDate,omitempty"`
	AccumulatedPause float64       `json:"accumulatedPause"`
	Duration         float64       `json:"duration"`
	SessionCount     int           `json:"sessionCount"`
	TotalSessions    int           `json:"totalSessions"`

	IsRunning         bool      `json:"isRunning"`
	FractionCompleted float64   `json:"fractionCompleted"`
	Remaining         float64   `json:"remaining"`
	ServerTime        time.Time `json:"serverTime"`
}

// StateViewOf renders state as seen at now.
func StateViewOf(state domain.TimerState, now time.Time) StateView {
	return StateView{
		Status:            state.Status,
		Mode:              state.Mode,
		ModeName:          state.ModeName,
		ModeColorName:     state.ModeColorName,
		StartDate:         optionalTime(state.StartDate),
		EndDate:           optionalTime(state.EndDate),
		PauseDate:         optionalTime(state.PauseDate),
		AccumulatedPause:  state.AccumulatedPause.Seconds(),
		Duration:          state.Duration.Seconds(),
		SessionCount:      state.SessionCount,
		TotalSessions:     state.TotalSessions,
		IsRunning:         state.IsRunning(),
		FractionCompleted: state.FractionCompleted(now),
		Remaining:         state.DisplayRemaining(now).Seconds(),
		ServerTime:        now,
	}
}

// Timer rebuilds the timing fields so a client can recompute progress locally.
func (v StateView) Timer() domain.TimerState {
	return domain.TimerState{
		Status:           v.Status,
		Mode:             v.Mode,
		StartDate:        derefTime(v.StartDate),
		EndDate:          derefTime(v.EndDate),
		PauseDate:        derefTime(v.PauseDate),
		AccumulatedPause: seconds(v.AccumulatedPause),
		Duration:         seconds(v.Duration),
		SessionCount:     v.SessionCount,
		TotalSessions:    v.TotalSessions,
		ModeName:         v.ModeName,
		ModeColorName:    v.ModeColorName,
	}
}

type taskView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func taskToView(task domain.Task) taskView {
	return taskView{
		ID:        task.ID,
		Title:     task.Title,
		Done:      task.Done,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

type dayView struct {
	Day           string  `json:"day"`
	FocusSessions int     `json:"focusSessions"`
	FocusSeconds  float64 `json:"focusSeconds"`
	Breaks        int     `json:"breaks"`
}

func dayToView(day domain.DayStats) dayView {
	return dayView{
		Day:           day.Day,
		FocusSessions: day.FocusSessions,
		FocusSeconds:  day.FocusTime.Seconds(),
		Breaks:        day.Breaks,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
