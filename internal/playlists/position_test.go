package playlists

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMove_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		to    int
		count int
		want  int
	}{
		{name: "in range", from: 0, to: 2, count: 4, want: 2},
		{name: "negative target", from: 2, to: -3, count: 4, want: 0},
		{name: "target past end", from: 0, to: 10, count: 4, want: 3},
		{name: "exactly count", from: 1, to: 4, count: 4, want: 3},
		{name: "single row", from: 0, to: 5, count: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newMove(tt.from, tt.to, tt.count).to)
		})
	}
}

func TestMove_Noop(t *testing.T) {
	assert.True(t, newMove(3, 3, 5).noop())
	assert.True(t, newMove(4, 9, 5).noop(), "clamped onto itself")
	assert.False(t, newMove(0, 1, 5).noop())
}

func TestMove_Apply(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		ids  []int64
		want []int64
	}{
		{name: "first to last", from: 0, to: 3, ids: []int64{1, 2, 3, 4}, want: []int64{2, 3, 4, 1}},
		{name: "last to first", from: 3, to: 0, ids: []int64{1, 2, 3, 4}, want: []int64{4, 1, 2, 3}},
		{name: "middle down", from: 1, to: 2, ids: []int64{1, 2, 3, 4}, want: []int64{1, 3, 2, 4}},
		{name: "middle up", from: 2, to: 1, ids: []int64{1, 2, 3, 4}, want: []int64{1, 3, 2, 4}},
		{name: "noop", from: 2, to: 2, ids: []int64{1, 2, 3}, want: []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorder(tt.ids, newMove(tt.from, tt.to, len(tt.ids)))
			assert.Equal(t, tt.want, got)
		})
	}
}

// reorder is the in-memory reference for what MoveSong does to an ordering.
func reorder(ids []int64, m move) []int64 {
	if m.noop() || m.from < 0 || m.from >= len(ids) {
		return append([]int64(nil), ids...)
	}
	moved := ids[m.from]
	out := make([]int64, 0, len(ids))
	out = append(out, ids[:m.from]...)
	out = append(out, ids[m.from+1:]...)
	out = append(out[:m.to], append([]int64{moved}, out[m.to:]...)...)
	return out
}
