package playback

import (
	"fmt"
	"time"

	"github.com/cadencefm/cadence/internal/engine"
)

// Next skips to the following song. Progress resets immediately; the
// current song changes when the engine reports the transition.
func (m *Manager) Next() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exec(engine.Engine.Next)
	m.resetProgressLocked()
}

// Previous goes back one song, or restarts the current song when it has
// played for more than a few seconds.
func (m *Manager) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exec(engine.Engine.Previous)
	m.resetProgressLocked()
}

// SetPlaying starts or pauses playback. Starting after the queue ended
// plays it again from the first song.
func (m *Manager) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPlayingLocked(playing)
}

// TogglePlaying flips between playing and paused.
func (m *Manager) TogglePlaying() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPlayingLocked(!m.playing)
}

func (m *Manager) setPlayingLocked(playing bool) {
	prev := m.stateLocked()
	if playing && m.ended && len(m.queue) > 0 {
		m.exec(func(e engine.Engine) { e.SeekToIndex(0, 0) })
		m.ended = false
	}
	m.exec(func(e engine.Engine) { e.SetPlaying(playing) })
	m.playing = playing
	if playing {
		m.started = true
		m.failures = 0
	}
	m.publishStateFrom(prev)
}

// SetProgress moves the seek bar to fraction (clamped to [0, 1]) without
// seeking. Progress stops following the engine until CommitProgress.
func (m *Manager) SetProgress(fraction float64) {
	fraction = max(0, min(1, fraction))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekMode = SeekScrubbing
	m.progress = fraction
	m.publishProgress(ProgressChange{
		Progress: fraction,
		Position: scale(m.duration, fraction),
		Duration: m.duration,
	})
}

// CommitProgress seeks to the scrubbed position and resumes tracking.
func (m *Manager) CommitProgress() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seekMode != SeekScrubbing {
		return
	}
	fraction := m.progress
	m.exec(func(e engine.Engine) { e.SeekTo(scale(e.Duration(), fraction)) })
	m.position = scale(m.duration, fraction)
	m.seekMode = SeekTracking
}

// CycleRepeatMode steps off, all, one, off and returns the new mode.
func (m *Manager) CycleRepeatMode() engine.RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setRepeatLocked(m.repeat.Next())
	return m.repeat
}

// SetRepeatMode sets the repeat mode.
func (m *Manager) SetRepeatMode(mode engine.RepeatMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid repeat mode %d", mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode != m.repeat {
		m.setRepeatLocked(mode)
	}
	return nil
}

func (m *Manager) setRepeatLocked(mode engine.RepeatMode) {
	m.repeat = mode
	m.exec(func(e engine.Engine) { e.SetRepeatMode(mode) })
	m.publishModeLocked()
	m.persistLocked()
}

func scale(d time.Duration, fraction float64) time.Duration {
	return time.Duration(float64(d) * fraction)
}
