package mpris

import (
	"time"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
)

// Controller is the part of playback.Manager the media session drives.
type Controller interface {
	Next()
	Previous()
	SetPlaying(playing bool)
	TogglePlaying()
	SetProgress(fraction float64)
	CommitProgress()
	SetRepeatMode(mode engine.RepeatMode) error
	SetShuffled(shuffled bool)

	State() playback.State
	Current() (library.Song, bool)
	Queue() []library.Song
	Position() time.Duration
	Duration() time.Duration
	RepeatMode() engine.RepeatMode
	Shuffled() bool
}

var _ Controller = (*playback.Manager)(nil)
