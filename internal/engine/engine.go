// Package engine defines the contract between the queue manager and an
// audio playback engine.
package engine

import (
	"context"
	"time"
)

// RestartThreshold is how far into an item Previous restarts it instead
// of moving to the item before.
const RestartThreshold = 3 * time.Second

// Item is one playable entry handed to an engine.
type Item struct {
	ID       int64
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// RepeatMode controls what happens at the end of an item or of the list.
// The numeric values are persisted and must not change.
type RepeatMode int

const (
	RepeatOff RepeatMode = 0
	RepeatAll RepeatMode = 1
	RepeatOne RepeatMode = 2
)

// Next returns the mode that follows m in the off, all, one cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Valid reports whether m is one of the defined modes.
func (m RepeatMode) Valid() bool {
	return m >= RepeatOff && m <= RepeatOne
}

func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// EventType identifies an engine notification.
type EventType int

const (
	// EventTransition is sent when the current item changes, including a
	// repeat of the same item.
	EventTransition EventType = iota
	// EventPlayingChanged is sent when the playing flag flips.
	EventPlayingChanged
	// EventEnded is sent when the last item finished and nothing follows.
	EventEnded
	// EventError is sent when the current item cannot be played.
	EventError
)

// Event is a notification from the engine. Receivers should treat the
// payload as a hint and query the engine for its current state.
type Event struct {
	Type    EventType
	Index   int
	Playing bool
	Err     error
}

// Engine is a black-box player over an ordered list of items.
//
// Implementations must be safe for concurrent use.
type Engine interface {
	SetItems(items []Item)
	ItemCount() int
	// CurrentIndex returns -1 when no items are loaded.
	CurrentIndex() int
	CurrentItem() (Item, bool)

	SeekToIndex(index int, pos time.Duration)
	SeekTo(pos time.Duration)

	SetPlaying(playing bool)
	IsPlaying() bool

	// Next and Previous honor the repeat mode. Next stops at the end of
	// the list under RepeatOff and wraps otherwise.
	Next()
	Previous()

	RepeatMode() RepeatMode
	SetRepeatMode(mode RepeatMode)

	Position() time.Duration
	Duration() time.Duration

	Events() <-chan Event
	Release() error
}

// EqualizerTarget is implemented by engines that can apply band gains.
// levels holds one gain per band in millibels.
type EqualizerTarget interface {
	SetEqualizer(enabled bool, levels []int)
}

// Connector establishes an engine connection. It may block until the
// engine is ready or ctx is done.
type Connector func(ctx context.Context) (Engine, error)
