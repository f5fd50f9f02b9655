package playback

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
)

// run connects to the engine, then serves engine events and the progress
// poller until ctx is canceled.
func (m *Manager) run(ctx context.Context, connect engine.Connector) {
	defer m.wg.Done()

	eng, err := connect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.WithError(err).Error("connecting to playback engine failed")
			m.publishError(ErrorEvent{Operation: "connect", Err: err})
		}
		return
	}
	if !m.attach(eng) {
		_ = eng.Release()
		return
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	events := eng.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(ev)
		case <-ticker.C:
			m.poll()
		}
	}
}

// attach adopts or loads state on the fresh engine, then replays the
// commands queued while disconnected. It returns false when the manager
// was closed in the meantime.
func (m *Manager) attach(eng engine.Engine) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	prevState := m.stateLocked()
	m.eng = eng
	reattached := m.restoreOnConnectLocked(eng)

	pending := m.pending
	m.pending = nil
	for _, fn := range pending {
		fn(eng)
	}
	if len(pending) > 0 {
		m.syncCurrentLocked(eng)
	}
	m.publishStateFrom(prevState)

	m.log.WithFields(logrus.Fields{
		"reattached": reattached,
		"replayed":   len(pending),
		"queue":      len(m.queue),
	}).Info("playback engine connected")
	m.mu.Unlock()

	if target, ok := eng.(engine.EqualizerTarget); ok {
		m.eq.Attach(target)
	}
	return true
}

// restoreOnConnectLocked reports whether the engine already had a session
// that was adopted. Otherwise the restored queue is loaded into it.
func (m *Manager) restoreOnConnectLocked(eng engine.Engine) bool {
	if item, ok := eng.CurrentItem(); ok && indexOf(m.queue, item.ID) >= 0 {
		m.setCurrentLocked(item.ID)
		m.playing = eng.IsPlaying()
		m.started = m.playing
		m.repeat = eng.RepeatMode()
		m.position = eng.Position()
		m.duration = eng.Duration()
		m.progress = fraction(m.position, m.duration)
		m.publishModeLocked()
		m.persistLocked()
		return true
	}

	if len(m.queue) > 0 {
		eng.SetItems(toItems(m.queue))
		if i := m.currentIndexLocked(); i >= 0 {
			eng.SeekToIndex(i, 0)
		}
	}
	eng.SetRepeatMode(m.repeat)
	return false
}

// syncCurrentLocked points current at whatever the engine is playing.
func (m *Manager) syncCurrentLocked(eng engine.Engine) {
	if item, ok := eng.CurrentItem(); ok && indexOf(m.queue, item.ID) >= 0 {
		m.setCurrentLocked(item.ID)
	}
}

func (m *Manager) handleEvent(ev engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eng == nil {
		return
	}
	prevState := m.stateLocked()

	switch ev.Type {
	case engine.EventTransition:
		m.ended = false
		prev := m.current
		m.syncCurrentLocked(m.eng)
		m.duration = m.eng.Duration()
		m.resetProgressLocked()
		if !sameSong(prev, m.current) {
			m.persistLocked()
		}

	case engine.EventPlayingChanged:
		m.playing = m.eng.IsPlaying()
		if m.playing {
			m.started = true
			m.ended = false
		}

	case engine.EventEnded:
		m.ended = true
		m.playing = false

	case engine.EventError:
		path := ""
		if m.current != nil {
			path = m.current.Path
		}
		m.log.WithError(ev.Err).WithField("path", path).Warn("playback error, skipping song")
		m.publishError(ErrorEvent{Operation: "play", Path: path, Err: ev.Err})
		m.skipFailedLocked()
	}

	m.publishStateFrom(prevState)
}

// skipFailedLocked moves past a song the engine could not play. Playback
// stops at the end of the queue under RepeatOff, and after a full lap of
// consecutive failures under any mode.
func (m *Manager) skipFailedLocked() {
	m.failures++
	if m.failures >= len(m.queue) {
		m.log.WithField("failures", m.failures).Error("no song in the queue could be played, stopping")
		m.stopLocked()
		return
	}
	before := m.eng.CurrentIndex()
	m.eng.Next()
	if m.eng.CurrentIndex() == before && m.repeat == engine.RepeatOff {
		m.stopLocked()
	}
}

// stopLocked ends the queue as if its last song finished.
func (m *Manager) stopLocked() {
	m.ended = true
	m.playing = false
	m.failures = 0
	m.eng.SetPlaying(false)
}

func (m *Manager) poll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eng == nil || m.seekMode != SeekTracking {
		return
	}
	m.position = m.eng.Position()
	m.duration = m.eng.Duration()
	m.progress = fraction(m.position, m.duration)
	if m.position > 0 {
		m.failures = 0
	}
	m.publishProgress(ProgressChange{
		Progress: m.progress,
		Position: m.position,
		Duration: m.duration,
	})
}

func fraction(pos, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	return max(0, min(1, float64(pos)/float64(dur)))
}
