package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const appName = "cadence"

type Config struct {
	MusicDir string `koanf:"music_dir"` // root scanned by `cadence scan`
	Database string `koanf:"database"`  // SQLite file; ":memory:" for a throwaway library
	LogLevel string `koanf:"log_level"` // logrus level name
	LogFile  string `koanf:"log_file"`  // used while the terminal UI owns stdout

	// PollInterval is how often playback progress is refreshed.
	PollInterval time.Duration `koanf:"poll_interval"`
	// SaveDebounce is the quiet period before the play queue is saved.
	SaveDebounce time.Duration `koanf:"save_debounce"`

	// MPRIS enables the desktop media session on Linux.
	MPRIS bool `koanf:"mpris"`
	// Notifications shows a desktop notification on every song change.
	Notifications bool `koanf:"notifications"`
}

// Default returns the configuration used when no file sets a key.
func Default() *Config {
	return &Config{
		MusicDir:      xdg.UserDirs.Music,
		Database:      filepath.Join(xdg.DataHome, appName, appName+".db"),
		LogLevel:      "info",
		LogFile:       filepath.Join(xdg.StateHome, appName, appName+".log"),
		PollInterval:  time.Second,
		SaveDebounce:  500 * time.Millisecond,
		MPRIS:         true,
		Notifications: true,
	}
}

// Load reads the user and working directory config files.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles applies each existing file in order over the defaults; later
// files win. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.MusicDir = expandPath(cfg.MusicDir)
	cfg.Database = expandPath(cfg.Database)
	cfg.LogFile = expandPath(cfg.LogFile)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("save_debounce must not be negative, got %s", c.SaveDebounce)
	}
	if c.Database == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/cadence/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
