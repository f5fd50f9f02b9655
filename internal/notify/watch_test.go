package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
	"github.com/cadencefm/cadence/internal/settings"
)

type recorder struct {
	mu     sync.Mutex
	sent   []Notification
	fail   bool
	nextID uint32
}

func (r *recorder) Notify(n Notification) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errors.New("no notification daemon")
	}
	r.sent = append(r.sent, n)
	r.nextID++
	return r.nextID, nil
}

func (r *recorder) Close(uint32) error { return nil }

func (r *recorder) notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

type songs map[int64]library.Song

func (s songs) Resolve(_ context.Context, ids []int64) ([]library.Song, error) {
	var out []library.Song
	for _, id := range ids {
		if song, ok := s[id]; ok {
			out = append(out, song)
		}
	}
	return out, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestWatch_TrackChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dir := t.TempDir()
		lib := songs{}
		for i := int64(1); i <= 2; i++ {
			lib[i] = library.Song{
				ID:     i,
				Path:   filepath.Join(dir, fmt.Sprintf("%d.mp3", i)),
				Title:  fmt.Sprintf("Song %d", i),
				Artist: "Artist",
				Album:  "Album",
			}
		}
		cover := filepath.Join(dir, "cover.jpg")
		require.NoError(t, os.WriteFile(cover, []byte{0xFF, 0xD8}, 0o600))

		eng := engine.NewMock()
		mgr, err := playback.New(context.Background(), playback.Options{
			Library:   lib,
			Settings:  settings.NewMemory(),
			Connector: eng.Connector(),
			Logger:    quietLogger(),
		})
		require.NoError(t, err)
		synctest.Wait()

		rec := &recorder{}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			Watch(ctx, mgr.Subscribe(), rec, quietLogger())
			close(done)
		}()
		synctest.Wait()

		require.NoError(t, mgr.SetPlaylist([]library.Song{lib[1], lib[2]}, nil))
		synctest.Wait()
		mgr.Next()
		synctest.Wait()

		sent := rec.notifications()
		require.Len(t, sent, 2)
		assert.Equal(t, "Song 1", sent[0].Title)
		assert.Equal(t, "Artist - Album", sent[0].Body)
		assert.Equal(t, cover, sent[0].Icon)
		assert.Equal(t, uint32(0), sent[0].ReplacesID)
		assert.Equal(t, "Song 2", sent[1].Title)
		assert.Equal(t, uint32(1), sent[1].ReplacesID)

		cancel()
		<-done
		require.NoError(t, mgr.Close())
	})
}

func TestWatch_StopsWhenSubscriptionCloses(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		eng := engine.NewMock()
		mgr, err := playback.New(context.Background(), playback.Options{
			Library:   songs{},
			Settings:  settings.NewMemory(),
			Connector: eng.Connector(),
			Logger:    quietLogger(),
		})
		require.NoError(t, err)

		rec := &recorder{fail: true}
		done := make(chan struct{})
		go func() {
			Watch(context.Background(), mgr.Subscribe(), rec, quietLogger())
			close(done)
		}()

		require.NoError(t, mgr.Close())
		<-done
		assert.Empty(t, rec.notifications())
	})
}

func TestUrgency_MatchesFreedesktopValues(t *testing.T) {
	assert.Equal(t, Urgency(0), UrgencyLow)
	assert.Equal(t, Urgency(1), UrgencyNormal)
	assert.Equal(t, Urgency(2), UrgencyCritical)
}

func TestTrackNotification(t *testing.T) {
	n := trackNotification(library.Song{ID: 3, Path: "/nowhere/x.mp3", Title: "Solo"})
	assert.Equal(t, "Solo", n.Title)
	assert.Empty(t, n.Body)
	assert.Empty(t, n.Icon)
	assert.Equal(t, UrgencyLow, n.Urgency)
}
