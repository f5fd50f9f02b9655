package playback

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/library"
)

// SetPlaylist replaces both queues with songs and makes start current.
// A nil start selects the first song. Repeated songs keep their first
// occurrence. Shuffle is turned off.
func (m *Manager) SetPlaylist(songs []library.Song, start *library.Song) error {
	songs = dedupe(songs)
	startIndex := 0
	if start != nil {
		startIndex = indexOf(songs, start.ID)
		if startIndex < 0 {
			return fmt.Errorf("start song %d: %w", start.ID, ErrSongNotInQueue)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prevState := m.stateLocked()
	m.originalQueue = cloneSongs(songs)
	m.queue = cloneSongs(songs)
	m.ended = false
	m.failures = 0
	m.started = m.playing
	m.seekMode = SeekTracking

	items := toItems(m.queue)
	m.exec(func(e engine.Engine) {
		e.SetItems(items)
		if len(items) > 0 {
			e.SeekToIndex(startIndex, 0)
		}
	})

	if len(songs) == 0 {
		m.setCurrentLocked(0)
	} else {
		m.setCurrentLocked(songs[startIndex].ID)
	}
	m.resetProgressLocked()

	modeChanged := m.shuffled
	m.shuffled = false
	if modeChanged {
		m.publishModeLocked()
	}
	m.publishQueueLocked()
	m.publishStateFrom(prevState)
	m.persistLocked()

	m.log.WithFields(logrus.Fields{
		"songs": len(songs),
		"start": startIndex,
	}).Debug("playlist loaded")
	return nil
}

// SetShuffled shuffles the queue with the current song moved to the
// front, or restores the original order. The engine keeps playing the
// current song at its present position.
func (m *Manager) SetShuffled(shuffled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !shuffled && !m.shuffled {
		return
	}
	m.shuffled = shuffled

	if len(m.queue) > 0 {
		if shuffled {
			m.queue = m.shuffledQueueLocked()
		} else {
			m.queue = cloneSongs(m.originalQueue)
		}
		m.reloadLocked()
		m.publishQueueLocked()
	}

	m.publishModeLocked()
	m.persistLocked()
}

// shuffledQueueLocked returns a random permutation of the original queue
// with the playing song, if any, at index 0.
func (m *Manager) shuffledQueueLocked() []library.Song {
	q := cloneSongs(m.originalQueue)
	m.shuffle(q)
	playing, ok := m.playingLocked()
	if !ok {
		return q
	}
	i := indexOf(q, playing.ID)
	if i < 0 {
		panic(fmt.Sprintf("playback: current song %d missing from original queue", playing.ID))
	}
	cur := q[i]
	copy(q[1:i+1], q[:i])
	q[0] = cur
	return q
}

// SetNextSong places song right after the playing song, moving it if it
// is already queued. It does nothing when the queue is empty or song is
// the playing song.
func (m *Manager) SetNextSong(song library.Song) {
	m.editQueue(song, func(q []library.Song, playing int64) []library.Song {
		return insertAt(q, indexOf(q, playing)+1, song)
	})
}

// AddToQueue moves song to the end of the queue, adding it if needed.
// It does nothing when the queue is empty or song is the current song.
func (m *Manager) AddToQueue(song library.Song) {
	m.editQueue(song, func(q []library.Song, _ int64) []library.Song {
		return append(q, song)
	})
}

// editQueue removes song from the queue, lets place reinsert it relative
// to the playing song, and keeps the original queue consistent with the
// result.
func (m *Manager) editQueue(song library.Song, place func(q []library.Song, playing int64) []library.Song) {
	m.mu.Lock()
	defer m.mu.Unlock()

	playing, ok := m.playingLocked()
	if len(m.queue) == 0 || (ok && playing.Is(song)) {
		return
	}

	wasQueued := indexOf(m.queue, song.ID) >= 0
	m.queue = place(remove(m.queue, song.ID), playing.ID)

	switch {
	case !m.shuffled:
		m.originalQueue = cloneSongs(m.queue)
	case !wasQueued:
		m.originalQueue = append(m.originalQueue, song)
	}

	m.reloadLocked()
	m.publishQueueLocked()
	m.persistLocked()
}

func dedupe(songs []library.Song) []library.Song {
	seen := make(map[int64]bool, len(songs))
	out := make([]library.Song, 0, len(songs))
	for _, s := range songs {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// remove returns a new slice without the song with id.
func remove(songs []library.Song, id int64) []library.Song {
	out := make([]library.Song, 0, len(songs))
	for _, s := range songs {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func insertAt(songs []library.Song, i int, song library.Song) []library.Song {
	songs = append(songs, library.Song{})
	copy(songs[i+1:], songs[i:])
	songs[i] = song
	return songs
}
