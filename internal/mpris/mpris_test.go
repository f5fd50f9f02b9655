//go:build linux

package mpris

import (
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
)

type fakeController struct {
	state    playback.State
	queue    []library.Song
	current  int
	position time.Duration
	duration time.Duration
	repeat   engine.RepeatMode
	shuffled bool

	playing   bool
	toggles   int
	nexts     int
	previous  int
	committed []float64
	progress  float64
}

func (f *fakeController) Next()                         { f.nexts++ }
func (f *fakeController) Previous()                     { f.previous++ }
func (f *fakeController) SetPlaying(p bool)             { f.playing = p }
func (f *fakeController) TogglePlaying()                { f.toggles++ }
func (f *fakeController) SetProgress(fr float64)        { f.progress = fr }
func (f *fakeController) CommitProgress()               { f.committed = append(f.committed, f.progress) }
func (f *fakeController) SetShuffled(s bool)            { f.shuffled = s }
func (f *fakeController) State() playback.State         { return f.state }
func (f *fakeController) Queue() []library.Song         { return f.queue }
func (f *fakeController) Position() time.Duration       { return f.position }
func (f *fakeController) Duration() time.Duration       { return f.duration }
func (f *fakeController) RepeatMode() engine.RepeatMode { return f.repeat }
func (f *fakeController) Shuffled() bool                { return f.shuffled }

func (f *fakeController) SetRepeatMode(m engine.RepeatMode) error {
	f.repeat = m
	return nil
}

func (f *fakeController) Current() (library.Song, bool) {
	if f.current < 0 || f.current >= len(f.queue) {
		return library.Song{}, false
	}
	return f.queue[f.current], true
}

func newFake() *fakeController {
	return &fakeController{
		queue: []library.Song{
			{ID: 1, Title: "One", Artist: "A", Duration: time.Minute},
			{ID: 2, Title: "Two", Duration: 2 * time.Minute},
		},
		duration: 2 * time.Minute,
	}
}

func TestPlayerAdapter_PlaybackStatus(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	for state, want := range map[playback.State]types.PlaybackStatus{
		playback.StatePlaying: types.PlaybackStatusPlaying,
		playback.StatePaused:  types.PlaybackStatusPaused,
		playback.StateLoaded:  types.PlaybackStatusStopped,
		playback.StateEnded:   types.PlaybackStatusStopped,
		playback.StateIdle:    types.PlaybackStatusStopped,
	} {
		f.state = state
		got, err := p.PlaybackStatus()
		require.NoError(t, err)
		assert.Equal(t, want, got, state.String())
	}
}

func TestPlayerAdapter_Controls(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	require.NoError(t, p.Play())
	assert.True(t, f.playing)
	require.NoError(t, p.Pause())
	assert.False(t, f.playing)
	require.NoError(t, p.PlayPause())
	require.NoError(t, p.Next())
	require.NoError(t, p.Previous())
	assert.Equal(t, 1, f.toggles)
	assert.Equal(t, 1, f.nexts)
	assert.Equal(t, 1, f.previous)
}

func TestPlayerAdapter_SetPositionAndSeek(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	require.NoError(t, p.SetPosition("", types.Microseconds(time.Minute.Microseconds())))
	f.position = time.Minute
	require.NoError(t, p.Seek(types.Microseconds((30 * time.Second).Microseconds())))

	assert.Equal(t, []float64{0.5, 0.75}, f.committed)
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "One", meta.Title)
	assert.Equal(t, []string{"A"}, meta.Artist)
	assert.Equal(t, types.Microseconds(time.Minute.Microseconds()), meta.Length)

	f.current = -1
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
}

func TestPlayerAdapter_LoopStatus(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	require.NoError(t, p.SetLoopStatus(types.LoopStatusTrack))
	assert.Equal(t, engine.RepeatOne, f.repeat)
	got, err := p.LoopStatus()
	require.NoError(t, err)
	assert.Equal(t, types.LoopStatusTrack, got)

	require.NoError(t, p.SetLoopStatus(types.LoopStatusPlaylist))
	assert.Equal(t, engine.RepeatAll, f.repeat)
	require.NoError(t, p.SetLoopStatus(types.LoopStatusNone))
	assert.Equal(t, engine.RepeatOff, f.repeat)
}

func TestPlayerAdapter_CanGoNext(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}

	ok, _ := p.CanGoNext()
	assert.True(t, ok)

	f.current = 1
	ok, _ = p.CanGoNext()
	assert.False(t, ok)

	f.repeat = engine.RepeatAll
	ok, _ = p.CanGoNext()
	assert.True(t, ok)
}

func TestPlayerAdapter_Shuffle(t *testing.T) {
	f := newFake()
	p := &playerAdapter{ctrl: f}
	require.NoError(t, p.SetShuffle(true))
	got, err := p.Shuffle()
	require.NoError(t, err)
	assert.True(t, got)
}
