// Public domain.

// Package config loads program settings from the environment and
// selection criteria from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the program settings.
type Config struct {
	Logger LoggerConfig
	// Obscodes is the path of the obscode.dat file.
	Obscodes string
	// Workers is the decode concurrency.  Zero means one per CPU.
	Workers int
}

// LoggerConfig selects the log level and output format.
type LoggerConfig struct {
	Level  string
	Format string // text or json
}

// Load reads settings from OBS80_ environment variables, with defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OBS80")

	// Defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("OBSCODES", defaultObscodes())
	v.SetDefault("WORKERS", 0)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Obscodes: v.GetString("OBSCODES"),
		Workers:  v.GetInt("WORKERS"),
	}
	switch cfg.Logger.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("OBS80_LOG_FORMAT %q: want text or json", cfg.Logger.Format)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("OBS80_WORKERS %d: must not be negative", cfg.Workers)
	}
	return cfg, nil
}

// defaultObscodes is obscode.dat in the user cache directory, or in the
// current directory if there is none.
func defaultObscodes() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "obscode.dat"
	}
	return filepath.Join(dir, "obs80", "obscode.dat")
}
