package domain

import (
	"fmt"
	"time"
)

// Status is the phase the timer is in right now.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusFocus  Status = "focus"
	StatusBreak  Status = "break"
	StatusPaused Status = "paused"
)

// Mode identifies which kind of interval is active (or up next, while idle).
type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// ParseMode converts user or persisted text to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFocus, ModeShortBreak, ModeLongBreak:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// IsBreak reports whether the mode is a short or long break.
func (m Mode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// RunningStatus is the status the timer has while this mode is ticking.
func (m Mode) RunningStatus() Status {
	if m.IsBreak() {
		return StatusBreak
	}
	return StatusFocus
}

// DisplayName is the label shown by presentation surfaces.
func (m Mode) DisplayName() string {
	switch m {
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// ColorName is a symbolic color surfaces map to their own palette.
func (m Mode) ColorName() string {
	switch m {
	case ModeShortBreak:
		return "green"
	case ModeLongBreak:
		return "blue"
	default:
		return "red"
	}
}

// Settings are the user preferences the session controller reads.
// They are owned outside the controller and only affect newly started sessions.
type Settings struct {
	Focus                   time.Duration
	ShortBreak              time.Duration
	LongBreak               time.Duration
	SessionsBeforeLongBreak int
	Continuous              bool
}

// DefaultSettings returns the classic 25/5/15 cycle of four sessions.
func DefaultSettings() Settings {
	return Settings{
		Focus:                   25 * time.Minute,
		ShortBreak:              5 * time.Minute,
		LongBreak:               15 * time.Minute,
		SessionsBeforeLongBreak: 4,
	}
}

// Validate checks if the settings values are usable.
func (s Settings) Validate() error {
	if s.Focus <= 0 || s.ShortBreak <= 0 || s.LongBreak <= 0 {
		return ErrInvalidDuration
	}
	if s.SessionsBeforeLongBreak < 1 {
		return ErrInvalidSessionCount
	}
	return nil
}

// DurationFor returns the configured length of an interval of the given mode.
func (s Settings) DurationFor(mode Mode) time.Duration {
	switch mode {
	case ModeShortBreak:
		return s.ShortBreak
	case ModeLongBreak:
		return s.LongBreak
	default:
		return s.Focus
	}
}
