package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const settingsFile = "settings.toml"

// Settings are the user-level defaults read from settings.toml. Command-line
// flags take precedence.
type Settings struct {
	Color    *bool  `toml:"color"`
	LogLevel string `toml:"log_level"`
	Strict   bool   `toml:"strict"`
	CacheDir string `toml:"cache_dir"`
}

func defaultSettings() Settings {
	return Settings{LogLevel: "warn"}
}

// settingsDir is $CHARLY_CONFIG_DIR, else $XDG_CONFIG_HOME/charly, else the
// platform config directory.
func settingsDir() string {
	if dir := strings.TrimSpace(os.Getenv("CHARLY_CONFIG_DIR")); dir != "" {
		return dir
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "charly")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "charly")
	}
	return ".charly"
}

// loadSettings returns defaults when no settings file exists; a file that
// fails to parse is an error.
func loadSettings() (Settings, error) {
	path := filepath.Join(settingsDir(), settingsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %q: %w", path, err)
	}
	settings := defaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %q: %w", path, err)
	}
	return settings, nil
}

func (s Settings) colorEnabled() bool {
	return s.Color == nil || *s.Color
}

func (s Settings) logLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s.LogLevel) == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("settings: invalid log_level %q", s.LogLevel)
	}
	return level, nil
}

// resolveCacheDir picks where git dependencies are checked out: $CHARLY_HOME,
// then cache_dir from settings, then ~/.charly.
func resolveCacheDir(s Settings) (string, error) {
	for _, candidate := range []string{os.Getenv("CHARLY_HOME"), s.CacheDir} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve cache directory %q: %w", candidate, err)
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(home, ".charly"), nil
}
