package mpris

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/library"
)

func TestFindAlbumArt(t *testing.T) {
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("fake"), 0o600))

	assert.Equal(t, coverPath, FindAlbumArt(filepath.Join(dir, "song.mp3")))
}

func TestFindAlbumArt_NotFound(t *testing.T) {
	assert.Empty(t, FindAlbumArt(filepath.Join(t.TempDir(), "song.mp3")))
}

func TestFindAlbumArt_Priority(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder.jpg"), []byte("fake"), 0o600))
	coverPath := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("fake"), 0o600))

	assert.Equal(t, coverPath, FindAlbumArt(filepath.Join(dir, "song.mp3")))
}

func TestArtURL_EmbeddedArtwork(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	song := library.Song{ID: 12, Path: filepath.Join(t.TempDir(), "song.mp3"), Artwork: []byte{0xff, 0xd8}}
	url := ArtURL(song)
	require.True(t, strings.HasPrefix(url, "file://"), url)

	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	require.NoError(t, err)
	assert.Equal(t, song.Artwork, data)
}

func TestArtURL_None(t *testing.T) {
	assert.Empty(t, ArtURL(library.Song{Path: filepath.Join(t.TempDir(), "song.mp3")}))
}
