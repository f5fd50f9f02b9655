//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/music", filepath.Join(home, "music")},
		{"tilde with nested path", "~/music/library/albums", filepath.Join(home, "music", "library", "albums")},
		{"absolute path unchanged", "/usr/local/music", "/usr/local/music"},
		{"relative path unchanged", "music/albums", "music/albums"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFiles_Defaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.True(t, cfg.MPRIS)
}

func TestLoadFiles_Values(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.toml", `
music_dir = "/srv/music"
database = ":memory:"
log_level = "debug"
poll_interval = "250ms"
save_debounce = "2s"
mpris = false
notifications = false
`)

	cfg, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/music", cfg.MusicDir)
	assert.Equal(t, ":memory:", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.SaveDebounce)
	assert.False(t, cfg.MPRIS)
	assert.False(t, cfg.Notifications)
}

func TestLoadFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", `
music_dir = "/home/me/Music"
log_level = "warn"
`)
	local := writeConfig(t, dir, "local.toml", `log_level = "error"`)

	cfg, err := LoadFiles(user, local)
	require.NoError(t, err)
	assert.Equal(t, "/home/me/Music", cfg.MusicDir)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadFiles_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	path := writeConfig(t, t.TempDir(), "config.toml", `music_dir = "~/tunes"`)

	cfg, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tunes"), cfg.MusicDir)
}

func TestLoadFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `music_dir = `},
		{"bad log level", `log_level = "loud"`},
		{"zero poll interval", `poll_interval = "0s"`},
		{"negative debounce", `save_debounce = "-1s"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.toml", tt.content)
			_, err := LoadFiles(path)
			require.Error(t, err)
		})
	}
}
