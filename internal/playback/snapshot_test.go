package playback

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/settings"
)

func TestEncodeIDs(t *testing.T) {
	assert.Equal(t, "", EncodeIDs(nil))
	assert.Equal(t, "7", EncodeIDs([]int64{7}))
	assert.Equal(t, "1 22 333", EncodeIDs([]int64{1, 22, 333}))
}

func TestDecodeIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []int64
	}{
		{"", []int64{}},
		{"1 2 3", []int64{1, 2, 3}},
		{"  4   5 ", []int64{4, 5}},
		{"1 two 3 4.5 -6", []int64{1, 3, -6}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeIDs(tt.in), "input %q", tt.in)
	}
}

func TestLoadSnapshot_Empty(t *testing.T) {
	snap, err := LoadSnapshot(context.Background(), settings.NewMemory())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{OriginalQueue: []int64{}, Queue: []int64{}}, snap)
}

func TestLoadSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemory()
	want := Snapshot{
		CurrentSongID: 9,
		Shuffled:      true,
		Repeat:        engine.RepeatOne,
		OriginalQueue: []int64{1, 9, 4},
		Queue:         []int64{9, 4, 1},
	}
	require.NoError(t, store.SetMany(ctx, want.entries()))

	got, err := LoadSnapshot(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

type failingStore struct {
	settings.Store
	err error
}

func (f failingStore) SetMany(context.Context, []settings.Entry) error { return f.err }

func TestSaver_DebouncesAndReportsErrors(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		log := logrus.New()
		log.SetLevel(logrus.PanicLevel)
		boom := errors.New("disk full")

		var got []error
		s := newSaver(failingStore{Store: settings.NewMemory(), err: boom}, time.Second, log, func(err error) {
			got = append(got, err)
		})

		s.save(Snapshot{CurrentSongID: 1})
		time.Sleep(500 * time.Millisecond)
		s.save(Snapshot{CurrentSongID: 2})
		time.Sleep(500 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, got)

		time.Sleep(500 * time.Millisecond)
		synctest.Wait()
		require.Len(t, got, 1)
		assert.ErrorIs(t, got[0], boom)
	})
}

func TestSaver_CloseFlushesAndStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		store := settings.NewMemory()
		s := newSaver(store, time.Second, logrus.New(), func(error) {})

		s.save(Snapshot{CurrentSongID: 1})
		require.NoError(t, s.close(context.Background(), Snapshot{CurrentSongID: 2}))
		assert.Equal(t, 1, store.Writes())

		s.save(Snapshot{CurrentSongID: 3})
		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, 1, store.Writes())

		id, err := settings.GetLong(context.Background(), store, KeyCurrentSongID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), id)
	})
}
