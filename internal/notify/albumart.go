package notify

import (
	"strings"

	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/mpris"
)

// iconPath returns a local image path for the song's artwork, or "".
func iconPath(song library.Song) string {
	return strings.TrimPrefix(mpris.ArtURL(song), "file://")
}
