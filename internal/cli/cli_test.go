package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	dir      string
	config   string
	database string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`log_level = "error"`+"\n"), 0o600))
	return &env{dir: dir, config: cfg, database: filepath.Join(dir, "cadence.db")}
}

// run executes the command line and returns stdout.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.config, "--database", e.database}, args...)
	err := Run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "cadence %s", strings.Join(args, " "))
	return out
}

// library writes untagged files so songs are indexed by file name.
func (e *env) library(t *testing.T, names ...string) string {
	t.Helper()
	root := filepath.Join(e.dir, "music")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(root, n+".mp3"), bytes.Repeat([]byte("x"), 256), 0o644))
	}
	return root
}

func TestScan(t *testing.T) {
	e := newEnv(t)
	root := e.library(t, "Alpha", "Bravo", "Charlie")

	out := e.mustRun(t, "scan", root)
	assert.Contains(t, out, "3 added")

	out = e.mustRun(t, "scan", root)
	assert.Contains(t, out, "3 unchanged")

	out = e.mustRun(t, "songs", "brav")
	assert.Contains(t, out, "Bravo")
	assert.NotContains(t, out, "Alpha")
}

func TestScan_NoFolder(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("music_dir = \"\"\n"), 0o600))

	_, err := e.run(t, "scan")
	require.Error(t, err)
}

func TestPlaylistWorkflow(t *testing.T) {
	e := newEnv(t)
	root := e.library(t, "Alpha", "Bravo", "Charlie")
	e.mustRun(t, "scan", root)

	out := e.mustRun(t, "playlist", "create", "Road", "trip")
	assert.Contains(t, out, "Created playlist 1")

	// Songs are indexed in walk order: Alpha=1, Bravo=2, Charlie=3.
	out = e.mustRun(t, "playlist", "add", "1", "1", "2", "3", "2")
	assert.Contains(t, out, "Added 3 songs")

	out = e.mustRun(t, "playlist", "add", "1", "--search", "alpha")
	assert.Contains(t, out, "Added 0 songs")

	out = e.mustRun(t, "playlist", "mv", "1", "3", "0")
	assert.Contains(t, out, "Moved to position 0")

	out = e.mustRun(t, "playlist", "show", "1")
	assert.Contains(t, out, "Road trip (3 songs)")
	assert.Less(t, strings.Index(out, "Charlie"), strings.Index(out, "Alpha"))
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Bravo"))

	e.mustRun(t, "playlist", "rm", "1", "1")
	out = e.mustRun(t, "playlist", "show", "1")
	assert.Contains(t, out, "(2 songs)")
	assert.NotContains(t, out, "Alpha")

	e.mustRun(t, "playlist", "rename", "1", "Commute")
	out = e.mustRun(t, "playlist", "ls")
	assert.Contains(t, out, "Commute")
	assert.Regexp(t, `now|ago`, out)

	e.mustRun(t, "playlist", "delete", "1")
	_, err := e.run(t, "playlist", "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load playlist")
}

func TestPlaylist_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty name", []string{"playlist", "create", " "}, "Failed to create playlist"},
		{"bad playlist id", []string{"playlist", "show", "abc"}, "invalid playlist id"},
		{"bad song id", []string{"playlist", "rm", "1", "-4"}, ""},
		{"bad position", []string{"playlist", "mv", "1", "2", "x"}, "invalid position"},
		{"nothing to add", []string{"playlist", "add", "1"}, "no songs to add"},
		{"unknown playlist", []string{"playlist", "add", "9", "1"}, "Failed to add song to playlist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.args...)
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("song", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, err := parseID("song", bad)
		assert.Error(t, err, bad)
	}
}
