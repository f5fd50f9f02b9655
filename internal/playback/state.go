package playback

// State represents the playback state.
type State int

const (
	// StateIdle means no queue is loaded.
	StateIdle State = iota
	// StateLoaded means a queue is loaded but nothing has played yet.
	StateLoaded
	StatePlaying
	StatePaused
	// StateEnded means the last item finished and repeat was off.
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoaded:
		return "Loaded"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// SeekMode tells whether progress follows the engine or the user.
type SeekMode int

const (
	// SeekTracking means progress is updated from the engine.
	SeekTracking SeekMode = iota
	// SeekScrubbing means the user is dragging the seek bar; the poller
	// leaves progress alone until the seek is committed.
	SeekScrubbing
)

func (m SeekMode) String() string {
	if m == SeekScrubbing {
		return "Scrubbing"
	}
	return "Tracking"
}
