package playback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/settings"
)

// Settings keys of the persisted snapshot.
const (
	KeyShuffled      = "IS_SHUFFLED"
	KeyRepeatMode    = "REPEAT_MODE"
	KeyCurrentSongID = "CURRENT_SONG_ID"
	KeyOriginalQueue = "ORIGINAL_QUEUE"
	KeyQueue         = "QUEUE"
)

// Snapshot is the persisted part of the manager state.
// CurrentSongID is zero when there is no current song.
type Snapshot struct {
	CurrentSongID int64
	Shuffled      bool
	Repeat        engine.RepeatMode
	OriginalQueue []int64
	Queue         []int64
}

func (s Snapshot) entries() []settings.Entry {
	return []settings.Entry{
		{Key: KeyShuffled, Value: settings.Bool(s.Shuffled)},
		{Key: KeyRepeatMode, Value: settings.Int(int32(s.Repeat))},
		{Key: KeyCurrentSongID, Value: settings.Long(s.CurrentSongID)},
		{Key: KeyOriginalQueue, Value: settings.String(EncodeIDs(s.OriginalQueue))},
		{Key: KeyQueue, Value: settings.String(EncodeIDs(s.Queue))},
	}
}

// LoadSnapshot reads the snapshot from store. Missing keys yield the
// zero snapshot; an unknown repeat mode reads as RepeatOff.
func LoadSnapshot(ctx context.Context, store settings.Store) (Snapshot, error) {
	var s Snapshot
	var err error

	if s.Shuffled, err = settings.GetBool(ctx, store, KeyShuffled, false); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	repeat, err := settings.GetInt(ctx, store, KeyRepeatMode, int32(engine.RepeatOff))
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if s.Repeat = engine.RepeatMode(repeat); !s.Repeat.Valid() {
		s.Repeat = engine.RepeatOff
	}
	if s.CurrentSongID, err = settings.GetLong(ctx, store, KeyCurrentSongID, 0); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if s.CurrentSongID < 0 {
		s.CurrentSongID = 0
	}

	original, err := settings.GetString(ctx, store, KeyOriginalQueue, "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	queue, err := settings.GetString(ctx, store, KeyQueue, "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	s.OriginalQueue = DecodeIDs(original)
	s.Queue = DecodeIDs(queue)
	return s, nil
}

// EncodeIDs joins ids with single spaces.
func EncodeIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// DecodeIDs parses a space separated id list. Tokens that are not
// decimal integers are dropped.
func DecodeIDs(s string) []int64 {
	fields := strings.Fields(s)
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// saver coalesces snapshot writes and performs them after a quiet period.
type saver struct {
	store settings.Store
	delay time.Duration
	log   logrus.FieldLogger
	onErr func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *Snapshot
	closed  bool

	writeMu sync.Mutex
}

func newSaver(store settings.Store, delay time.Duration, log logrus.FieldLogger, onErr func(error)) *saver {
	return &saver{store: store, delay: delay, log: log, onErr: onErr}
}

// save schedules snap to be written, replacing any unwritten snapshot.
func (s *saver) save(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		if err := s.flush(context.Background()); err != nil {
			s.log.WithError(err).Warn("saving playback snapshot failed")
			s.onErr(err)
		}
	})
}

// flush writes the pending snapshot, if any.
func (s *saver) flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	return s.store.SetMany(ctx, pending.entries())
}

// close writes final synchronously and rejects later saves.
func (s *saver) close(ctx context.Context, final Snapshot) error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = &final
	s.mu.Unlock()

	return s.flush(ctx)
}
