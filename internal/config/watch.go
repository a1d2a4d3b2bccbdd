package config

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"pomotimer/internal/logging"
)

// Watch calls onChange with the reloaded configuration whenever the file at
// path is rewritten. Invalid edits are logged and skipped. It does nothing
// when the file does not exist yet; there is no way to stop watching.
func Watch(path string, onChange func(Config)) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		logging.Debugf("config watch disabled: %v", err)
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			logging.Warnf("config reload (%s): %v", e.Op, err)
			return
		}
		logging.Infof("config reloaded from %s", path)
		onChange(cfg)
	})
	v.WatchConfig()
}
