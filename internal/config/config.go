// Package config loads and saves the user's timer preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pomotimer/internal/domain"
)

// Config represents the persisted user preferences.
type Config struct {
	Focus                   time.Duration `mapstructure:"focus"`
	ShortBreak              time.Duration `mapstructure:"short_break"`
	LongBreak               time.Duration `mapstructure:"long_break"`
	SessionsBeforeLongBreak int           `mapstructure:"sessions_before_long_break"`
	Continuous              bool          `mapstructure:"continuous"`
	Notifications           bool          `mapstructure:"notifications"`
	DataDir                 string        `mapstructure:"data_dir"`
	Addr                    string        `mapstructure:"addr"`
	TickInterval            time.Duration `mapstructure:"tick_interval"`
}

// DefaultAddr is where the HTTP surface listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:7878"

// Defaults returns the initial configuration.
func Defaults() Config {
	settings := domain.DefaultSettings()
	return Config{
		Focus:                   settings.Focus,
		ShortBreak:              settings.ShortBreak,
		LongBreak:               settings.LongBreak,
		SessionsBeforeLongBreak: settings.SessionsBeforeLongBreak,
		Continuous:              settings.Continuous,
		Notifications:           true,
		DataDir:                 DefaultDataDir(),
		Addr:                    DefaultAddr,
		TickInterval:            time.Second,
	}
}

// Settings extracts the part of the config the session controller reads.
func (c Config) Settings() domain.Settings {
	return domain.Settings{
		Focus:                   c.Focus,
		ShortBreak:              c.ShortBreak,
		LongBreak:               c.LongBreak,
		SessionsBeforeLongBreak: c.SessionsBeforeLongBreak,
		Continuous:              c.Continuous,
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// POMOTIMER_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetDefault("focus", defaults.Focus)
	v.SetDefault("short_break", defaults.ShortBreak)
	v.SetDefault("long_break", defaults.LongBreak)
	v.SetDefault("sessions_before_long_break", defaults.SessionsBeforeLongBreak)
	v.SetDefault("continuous", defaults.Continuous)
	v.SetDefault("notifications", defaults.Notifications)
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("tick_interval", defaults.TickInterval)

	v.SetEnvPrefix("POMOTIMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return defaults, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return defaults, fmt.Errorf("stat config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, fmt.Errorf("unmarshal config: %w", err)
	}
	return Normalize(cfg)
}

// yamlConfig is the on-disk shape; durations are written as "25m0s" text.
type yamlConfig struct {
	Focus                   string `yaml:"focus"`
	ShortBreak              string `yaml:"short_break"`
	LongBreak               string `yaml:"long_break"`
	SessionsBeforeLongBreak int    `yaml:"sessions_before_long_break"`
	Continuous              bool   `yaml:"continuous"`
	Notifications           bool   `yaml:"notifications"`
	DataDir                 string `yaml:"data_dir"`
	Addr                    string `yaml:"addr"`
	TickInterval            string `yaml:"tick_interval"`
}

// Save writes the configuration to path atomically.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("path is required")
	}
	cfg, err := Normalize(cfg)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(yamlConfig{
		Focus:                   cfg.Focus.String(),
		ShortBreak:              cfg.ShortBreak.String(),
		LongBreak:               cfg.LongBreak.String(),
		SessionsBeforeLongBreak: cfg.SessionsBeforeLongBreak,
		Continuous:              cfg.Continuous,
		Notifications:           cfg.Notifications,
		DataDir:                 cfg.DataDir,
		Addr:                    cfg.Addr,
		TickInterval:            cfg.TickInterval.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	temp, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}
