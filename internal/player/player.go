// Package player implements engine.Engine on top of the beep speaker.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
)

const (
	sampleRate  = beep.SampleRate(44100)
	eventBuffer = 64
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Player plays a list of audio files through the default output device.
type Player struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	items    []engine.Item
	index    int
	playing  bool
	repeat   engine.RepeatMode
	released bool

	track *track
	// gen identifies the current track; end callbacks from older tracks
	// are ignored.
	gen int

	eqEnabled bool
	eqLevels  []int

	events chan engine.Event
}

// Open initializes the speaker and returns an idle player.
func Open(log logrus.FieldLogger) (*Player, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("init speaker: %w", speakerErr)
	}
	return &Player{
		log:    log,
		index:  -1,
		events: make(chan engine.Event, eventBuffer),
	}, nil
}

// Connector returns an engine.Connector that opens a Player.
func Connector(log logrus.FieldLogger) engine.Connector {
	return func(ctx context.Context) (engine.Engine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Open(log)
	}
}

func (p *Player) SetItems(items []engine.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append([]engine.Item(nil), items...)
	if len(p.items) == 0 {
		p.unload()
		p.index = -1
		return
	}

	// Keep the loaded track when it is still in the list.
	if p.track != nil {
		for i, it := range p.items {
			if it.ID == p.track.item.ID {
				p.index = i
				return
			}
		}
	}
	p.loadIndex(0)
}

func (p *Player) ItemCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Player) CurrentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *Player) CurrentItem() (engine.Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 {
		return engine.Item{}, false
	}
	return p.items[p.index], true
}

func (p *Player) SeekToIndex(index int, pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.items) {
		return
	}
	if p.track == nil || p.track.item.ID != p.items[index].ID {
		p.loadIndex(index)
	}
	p.index = index
	p.seek(pos)
}

func (p *Player) SeekTo(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek(pos)
}

func (p *Player) SetPlaying(playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPlaying(playing)
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i, ok := nextIndex(p.index, len(p.items), p.repeat); ok {
		p.loadIndex(i)
	}
}

func (p *Player) Previous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 {
		return
	}
	if p.position() > engine.RestartThreshold {
		p.seek(0)
		return
	}
	i, ok := previousIndex(p.index, len(p.items), p.repeat)
	if !ok {
		p.seek(0)
		return
	}
	p.loadIndex(i)
}

func (p *Player) RepeatMode() engine.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeat
}

func (p *Player) SetRepeatMode(mode engine.RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = mode
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position()
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return 0
	}
	if d := p.track.duration(); d > 0 {
		return d
	}
	return p.track.item.Duration
}

func (p *Player) Events() <-chan engine.Event {
	return p.events
}

// Release stops playback and closes the event channel.
func (p *Player) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	p.unload()
	p.released = true
	close(p.events)
	return nil
}

// SetEqualizer rebuilds the filter of the playing track.
func (p *Player) SetEqualizer(enabled bool, levels []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eqEnabled = enabled
	p.eqLevels = append([]int(nil), levels...)
	if p.track != nil {
		speaker.Lock()
		p.track.setFilter(enabled, p.eqLevels)
		speaker.Unlock()
	}
}

// loadIndex opens items[index] and starts streaming it, paused unless
// playing. A file that cannot be opened is reported as EventError.
func (p *Player) loadIndex(index int) {
	p.unload()
	p.index = index
	p.gen++
	item := p.items[index]

	t, err := openTrack(item)
	if err != nil {
		p.log.WithError(err).WithField("path", item.Path).Warn("cannot open track")
		p.emit(engine.Event{Type: engine.EventTransition, Index: index})
		p.emit(engine.Event{Type: engine.EventError, Index: index, Err: err})
		return
	}
	t.setFilter(p.eqEnabled, p.eqLevels)
	t.ctrl.Paused = !p.playing
	p.track = t

	gen := p.gen
	speaker.Play(beep.Seq(t.filter, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		go p.trackEnded(gen)
	})))
	p.emit(engine.Event{Type: engine.EventTransition, Index: index})
}

func (p *Player) trackEnded(gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released || gen != p.gen {
		return
	}
	if p.track != nil {
		if err := p.track.err(); err != nil {
			p.emit(engine.Event{Type: engine.EventError, Index: p.index, Err: err})
			return
		}
	}

	switch {
	case p.repeat == engine.RepeatOne:
		p.loadIndex(p.index)
	case p.index < len(p.items)-1:
		p.loadIndex(p.index + 1)
	case p.repeat == engine.RepeatAll:
		p.loadIndex(0)
	default:
		p.setPlaying(false)
		p.emit(engine.Event{Type: engine.EventEnded, Index: p.index})
	}
}

func (p *Player) unload() {
	if p.track == nil {
		return
	}
	speaker.Clear()
	if err := p.track.close(); err != nil && !errors.Is(err, os.ErrClosed) {
		p.log.WithError(err).Debug("closing track")
	}
	p.track = nil
}

func (p *Player) setPlaying(playing bool) {
	if p.playing == playing {
		return
	}
	p.playing = playing
	if p.track != nil {
		speaker.Lock()
		p.track.ctrl.Paused = !playing
		speaker.Unlock()
	}
	p.emit(engine.Event{Type: engine.EventPlayingChanged, Index: p.index, Playing: playing})
}

func (p *Player) seek(pos time.Duration) {
	if p.track == nil {
		return
	}
	speaker.Lock()
	err := p.track.seek(pos)
	speaker.Unlock()
	if err != nil {
		p.log.WithError(err).WithField("position", pos).Debug("seek failed")
	}
}

func (p *Player) position() time.Duration {
	if p.track == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.track.position()
}

func (p *Player) emit(ev engine.Event) {
	if p.released {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.log.WithField("type", ev.Type).Warn("engine event dropped")
	}
}

// nextIndex returns the item after index, wrapping unless repeat is off.
func nextIndex(index, count int, repeat engine.RepeatMode) (int, bool) {
	switch {
	case count == 0:
		return 0, false
	case index < count-1:
		return index + 1, true
	case repeat != engine.RepeatOff:
		return 0, true
	default:
		return 0, false
	}
}

// previousIndex returns the item before index, wrapping unless repeat is off.
func previousIndex(index, count int, repeat engine.RepeatMode) (int, bool) {
	switch {
	case count == 0:
		return 0, false
	case index > 0:
		return index - 1, true
	case repeat != engine.RepeatOff:
		return count - 1, true
	default:
		return 0, false
	}
}

var (
	_ engine.Engine          = (*Player)(nil)
	_ engine.EqualizerTarget = (*Player)(nil)
)
