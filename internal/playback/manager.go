// Package playback owns the play queue and drives a playback engine.
//
// The Manager keeps the original queue, the (possibly shuffled) playing
// queue, the current song, repeat mode and progress. It persists a
// snapshot of that state through a settings store and restores it on
// start, then connects to the engine in the background. Engine calls
// made before the connection completes are queued and replayed in order.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/equalizer"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/settings"
)

const (
	DefaultPollInterval = time.Second
	DefaultSaveDebounce = 500 * time.Millisecond
)

// ErrSongNotInQueue is returned when a start song is not part of the
// songs being loaded.
var ErrSongNotInQueue = errors.New("song not in queue")

// Resolver turns song ids into songs, dropping ids that no longer exist.
type Resolver interface {
	Resolve(ctx context.Context, ids []int64) ([]library.Song, error)
}

// Options configures a Manager.
type Options struct {
	Library   Resolver
	Settings  settings.Store
	Connector engine.Connector
	Logger    logrus.FieldLogger

	// PollInterval is how often progress is read from the engine.
	PollInterval time.Duration
	// SaveDebounce is the quiet period before a snapshot is written.
	SaveDebounce time.Duration
	// Shuffle permutes songs in place. Defaults to math/rand/v2.
	Shuffle func([]library.Song)
}

// Manager is the playback queue manager. It is safe for concurrent use.
type Manager struct {
	log          logrus.FieldLogger
	saver        *saver
	eq           *equalizer.Equalizer
	shuffle      func([]library.Song)
	pollInterval time.Duration

	mu            sync.Mutex
	eng           engine.Engine
	pending       []func(engine.Engine)
	originalQueue []library.Song
	queue         []library.Song
	current       *library.Song
	shuffled      bool
	repeat        engine.RepeatMode
	playing       bool
	started       bool
	ended         bool
	failures      int
	progress      float64
	seekMode      SeekMode
	position      time.Duration
	duration      time.Duration
	closed        bool

	subsMu     sync.Mutex
	subs       []*Subscription
	subsClosed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New restores the last snapshot and starts connecting to the engine.
// Ids in the snapshot that the library cannot resolve are dropped.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SaveDebounce <= 0 {
		opts.SaveDebounce = DefaultSaveDebounce
	}
	if opts.Shuffle == nil {
		opts.Shuffle = func(songs []library.Song) {
			rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
		}
	}

	m := &Manager{
		log:          opts.Logger,
		eq:           equalizer.New(opts.Settings),
		shuffle:      opts.Shuffle,
		pollInterval: opts.PollInterval,
	}
	m.saver = newSaver(opts.Settings, opts.SaveDebounce, opts.Logger, func(err error) {
		m.publishError(ErrorEvent{Operation: "save", Err: err})
	})

	if err := m.eq.Load(ctx); err != nil {
		return nil, err
	}
	if err := m.restore(ctx, opts.Settings, opts.Library); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.run(runCtx, opts.Connector)
	return m, nil
}

func (m *Manager) restore(ctx context.Context, store settings.Store, lib Resolver) error {
	snap, err := LoadSnapshot(ctx, store)
	if err != nil {
		return err
	}

	original, err := lib.Resolve(ctx, snap.OriginalQueue)
	if err != nil {
		return fmt.Errorf("resolve original queue: %w", err)
	}
	queue, err := lib.Resolve(ctx, snap.Queue)
	if err != nil {
		return fmt.Errorf("resolve queue: %w", err)
	}
	if len(original) == 0 {
		original = cloneSongs(queue)
	}

	m.originalQueue = original
	m.queue = queue
	m.shuffled = snap.Shuffled
	m.repeat = snap.Repeat
	if i := indexOf(queue, snap.CurrentSongID); i >= 0 {
		m.current = songAt(queue, i)
	} else if len(queue) > 0 {
		m.current = songAt(queue, 0)
	}

	m.log.WithFields(logrus.Fields{
		"queue":    len(queue),
		"dropped":  len(snap.Queue) - len(queue),
		"shuffled": snap.Shuffled,
		"repeat":   snap.Repeat,
	}).Debug("playback snapshot restored")
	return nil
}

// Close stops the background goroutine, writes the final snapshot and
// releases the engine. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	final := m.snapshotLocked()
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.eq.Attach(nil)

	var errs []error
	if err := m.saver.close(context.Background(), final); err != nil {
		errs = append(errs, fmt.Errorf("save snapshot: %w", err))
	}

	m.mu.Lock()
	eng := m.eng
	m.eng = nil
	m.mu.Unlock()
	if eng != nil {
		if err := eng.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release engine: %w", err))
		}
	}

	m.subsMu.Lock()
	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
	m.subsClosed = true
	m.subsMu.Unlock()

	return errors.Join(errs...)
}

// Subscribe creates a new event subscription.
func (m *Manager) Subscribe() *Subscription {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	sub := newSubscription()
	if m.subsClosed {
		sub.close()
		return sub
	}
	m.subs = append(m.subs, sub)
	return sub
}

// Equalizer returns the equalizer bound to this manager. Changes reach
// the engine once it is connected.
func (m *Manager) Equalizer() *equalizer.Equalizer {
	return m.eq
}

// Queries

// State returns the current playback state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Queue returns a copy of the playing queue.
func (m *Manager) Queue() []library.Song {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSongs(m.queue)
}

// OriginalQueue returns a copy of the unshuffled queue.
func (m *Manager) OriginalQueue() []library.Song {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSongs(m.originalQueue)
}

// Current returns the current song, or false when there is none.
func (m *Manager) Current() (library.Song, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return library.Song{}, false
	}
	return *m.current, true
}

func (m *Manager) Shuffled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffled
}

func (m *Manager) RepeatMode() engine.RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeat
}

// Progress returns the playhead as a fraction of the duration.
func (m *Manager) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

func (m *Manager) SeekMode() SeekMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seekMode
}

// Position returns the last polled playhead position.
func (m *Manager) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Duration returns the last polled duration of the current song.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// Connected reports whether the engine connection is established.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng != nil
}

// Snapshot returns the state that would be persisted now.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Internal helpers. Methods ending in Locked require m.mu.

func (m *Manager) stateLocked() State {
	switch {
	case len(m.queue) == 0:
		return StateIdle
	case m.ended:
		return StateEnded
	case m.playing:
		return StatePlaying
	case m.started:
		return StatePaused
	default:
		return StateLoaded
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		Shuffled:      m.shuffled,
		Repeat:        m.repeat,
		OriginalQueue: songIDs(m.originalQueue),
		Queue:         songIDs(m.queue),
	}
	if m.current != nil {
		s.CurrentSongID = m.current.ID
	}
	return s
}

func (m *Manager) persistLocked() {
	if m.closed {
		return
	}
	m.saver.save(m.snapshotLocked())
}

// exec runs fn against the engine, or queues it until the engine connects.
func (m *Manager) exec(fn func(engine.Engine)) {
	if m.closed {
		return
	}
	if m.eng == nil {
		m.pending = append(m.pending, fn)
		return
	}
	fn(m.eng)
}

// reloadLocked hands the queue to the engine and returns to the song the
// engine is on at its present position. The engine may be ahead of
// current when a transition has not been handled yet, so its item wins;
// the remembered index is only used when the engine has nothing loaded.
func (m *Manager) reloadLocked() {
	items := toItems(m.queue)
	fallback := m.currentIndexLocked()
	m.exec(func(e engine.Engine) {
		index, pos := fallback, time.Duration(0)
		if item, ok := e.CurrentItem(); ok {
			if i := itemIndex(items, item.ID); i >= 0 {
				index, pos = i, e.Position()
			}
		}
		e.SetItems(items)
		if index >= 0 {
			e.SeekToIndex(index, pos)
		}
		m.syncCurrentLocked(e)
	})
}

// playingLocked returns the song the engine is on, or current before the
// engine connects.
func (m *Manager) playingLocked() (library.Song, bool) {
	if m.eng != nil {
		if item, ok := m.eng.CurrentItem(); ok {
			if i := indexOf(m.originalQueue, item.ID); i >= 0 {
				return m.originalQueue[i], true
			}
		}
	}
	if m.current == nil {
		return library.Song{}, false
	}
	return *m.current, true
}

func (m *Manager) currentIndexLocked() int {
	if m.current == nil {
		return -1
	}
	return indexOf(m.queue, m.current.ID)
}

// setCurrentLocked points current at the queue entry with id and reports
// a TrackChange when it differs from the previous song.
func (m *Manager) setCurrentLocked(id int64) {
	prev := m.current
	index := indexOf(m.queue, id)
	m.current = songAt(m.queue, index)
	if sameSong(prev, m.current) {
		return
	}
	m.publishTrack(TrackChange{Previous: prev, Current: m.current, Index: index})
}

func (m *Manager) resetProgressLocked() {
	m.progress = 0
	m.position = 0
	m.publishProgress(ProgressChange{Duration: m.duration})
}

func (m *Manager) publishStateFrom(prev State) {
	if cur := m.stateLocked(); cur != prev {
		m.broadcast(func(s *Subscription) { offer(s.stateCh, StateChange{Previous: prev, Current: cur}) })
	}
}

func (m *Manager) publishQueueLocked() {
	e := QueueChange{Songs: cloneSongs(m.queue), Index: m.currentIndexLocked()}
	m.broadcast(func(s *Subscription) { offer(s.queueCh, e) })
}

func (m *Manager) publishModeLocked() {
	e := ModeChange{RepeatMode: m.repeat, Shuffled: m.shuffled}
	m.broadcast(func(s *Subscription) { offer(s.modeCh, e) })
}

func (m *Manager) publishTrack(e TrackChange) {
	m.broadcast(func(s *Subscription) { offer(s.trackCh, e) })
}

func (m *Manager) publishProgress(e ProgressChange) {
	m.broadcast(func(s *Subscription) { offer(s.progressCh, e) })
}

func (m *Manager) publishError(e ErrorEvent) {
	m.broadcast(func(s *Subscription) { offer(s.errorCh, e) })
}

func (m *Manager) broadcast(send func(*Subscription)) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, sub := range m.subs {
		send(sub)
	}
}

func toItems(songs []library.Song) []engine.Item {
	items := make([]engine.Item, len(songs))
	for i, s := range songs {
		items[i] = engine.Item{
			ID:       s.ID,
			Path:     s.Path,
			Title:    s.Title,
			Artist:   s.Artist,
			Album:    s.Album,
			Duration: s.Duration,
		}
	}
	return items
}

func itemIndex(items []engine.Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOf(songs []library.Song, id int64) int {
	for i := range songs {
		if songs[i].ID == id {
			return i
		}
	}
	return -1
}

func songIDs(songs []library.Song) []int64 {
	ids := make([]int64, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}

func cloneSongs(songs []library.Song) []library.Song {
	return append([]library.Song(nil), songs...)
}

// songAt returns a copy of songs[i], or nil when i is out of range.
func songAt(songs []library.Song, i int) *library.Song {
	if i < 0 || i >= len(songs) {
		return nil
	}
	s := songs[i]
	return &s
}

func sameSong(a, b *library.Song) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
