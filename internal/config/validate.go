package config

import (
	"fmt"
	"time"
)

// Normalize fills blanks with defaults, rejects unusable values and returns a safe copy.
func Normalize(cfg Config) (Config, error) {
	defaults := Defaults()
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = defaults.TickInterval
	}

	for name, d := range map[string]time.Duration{
		"focus":       cfg.Focus,
		"short_break": cfg.ShortBreak,
		"long_break":  cfg.LongBreak,
	} {
		if d < time.Second {
			return cfg, fmt.Errorf("%s must be >=1s, got %s", name, d)
		}
	}
	if cfg.SessionsBeforeLongBreak < 1 {
		return cfg, fmt.Errorf("sessions_before_long_break must be >=1, got %d", cfg.SessionsBeforeLongBreak)
	}
	if cfg.TickInterval < 100*time.Millisecond || cfg.TickInterval > 10*time.Second {
		return cfg, fmt.Errorf("tick_interval must be between 100ms and 10s, got %s", cfg.TickInterval)
	}
	return cfg, nil
}
