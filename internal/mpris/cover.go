package mpris

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"

	"github.com/cadencefm/cadence/internal/library"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png",
}

// FindAlbumArt looks for album art in the same directory as the song.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(songPath string) string {
	dir := filepath.Dir(songPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ArtURL returns a file URL for the song's artwork. Folder art wins over
// embedded art; embedded art is written once to the user cache directory.
func ArtURL(song library.Song) string {
	if path := FindAlbumArt(song.Path); path != "" {
		return "file://" + path
	}
	if len(song.Artwork) == 0 {
		return ""
	}
	path, err := xdg.CacheFile(filepath.Join("cadence", "art", strconv.FormatInt(song.ID, 10)))
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		if err := os.WriteFile(path, song.Artwork, 0o600); err != nil {
			return ""
		}
	}
	return "file://" + path
}
