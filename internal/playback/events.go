package playback

import (
	"time"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/library"
)

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the current song changes, whether by an
// engine transition, a new playlist or a restore on connect.
type TrackChange struct {
	Previous *library.Song
	Current  *library.Song
	Index    int
}

// QueueChange is emitted when the queue contents or order change.
type QueueChange struct {
	Songs []library.Song
	Index int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode engine.RepeatMode
	Shuffled   bool
}

// ProgressChange is emitted by the poller and by seeks.
type ProgressChange struct {
	Progress float64
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent is emitted when an error occurs during playback.
type ErrorEvent struct {
	Operation string // e.g. "play", "connect", "save"
	Path      string // song path if applicable
	Err       error
}
