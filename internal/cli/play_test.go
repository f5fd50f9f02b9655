package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/library"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, ids []int64) ([]library.Song, error) {
	var out []library.Song
	for _, id := range ids {
		if id > 0 && id < 100 {
			out = append(out, library.Song{ID: id, Title: fmt.Sprintf("Song %d", id)})
		}
	}
	return out, nil
}

type recordingQueue struct{ calls []string }

func (r *recordingQueue) SetNextSong(s library.Song) {
	r.calls = append(r.calls, fmt.Sprintf("next %d", s.ID))
}

func (r *recordingQueue) AddToQueue(s library.Song) {
	r.calls = append(r.calls, fmt.Sprintf("add %d", s.ID))
}

func TestQueueSongs(t *testing.T) {
	q := &recordingQueue{}
	err := queueSongs(context.Background(), stubResolver{}, q, []int64{4, 500, 5}, []int64{7})
	require.NoError(t, err)

	// Next songs are inserted last first so they play in the given order.
	assert.Equal(t, []string{"next 5", "next 4", "add 7"}, q.calls)
}

func TestQueueSongs_Nothing(t *testing.T) {
	q := &recordingQueue{}
	require.NoError(t, queueSongs(context.Background(), stubResolver{}, q, nil, nil))
	assert.Empty(t, q.calls)
}
