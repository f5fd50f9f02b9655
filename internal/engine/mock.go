package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock is a deterministic in-memory Engine for tests.
type Mock struct {
	mu       sync.Mutex
	items    []Item
	index    int
	playing  bool
	repeat   RepeatMode
	position time.Duration
	duration time.Duration
	calls    []string
	released bool

	eqEnabled bool
	eqLevels  []int

	events chan Event
}

// NewMock creates an empty mock engine.
func NewMock() *Mock {
	return &Mock{
		index:  -1,
		events: make(chan Event, 256),
	}
}

// Connector returns a Connector that hands out m immediately.
func (m *Mock) Connector() Connector {
	return func(context.Context) (Engine, error) { return m, nil }
}

// GatedConnector returns a Connector that hands out m once gate is closed.
func (m *Mock) GatedConnector(gate <-chan struct{}) Connector {
	return func(ctx context.Context) (Engine, error) {
		select {
		case <-gate:
			return m, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (m *Mock) SetItems(items []Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetItems(%d)", len(items))
	m.items = append([]Item(nil), items...)
	m.position = 0
	if len(m.items) == 0 {
		m.index = -1
		return
	}
	m.index = 0
}

func (m *Mock) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Mock) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Mock) CurrentItem() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < 0 {
		return Item{}, false
	}
	return m.items[m.index], true
}

func (m *Mock) SeekToIndex(index int, pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SeekToIndex(%d,%s)", index, pos)
	if index < 0 || index >= len(m.items) {
		return
	}
	m.moveTo(index)
	m.position = pos
}

func (m *Mock) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SeekTo(%s)", pos)
	m.position = pos
}

func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetPlaying(%t)", playing)
	m.setPlaying(playing)
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Next() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Next()")
	if len(m.items) == 0 {
		return
	}
	switch {
	case m.index < len(m.items)-1:
		m.moveTo(m.index + 1)
	case m.repeat != RepeatOff:
		m.moveTo(0)
	default:
		return
	}
	m.position = 0
}

func (m *Mock) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Previous()")
	if len(m.items) == 0 {
		return
	}
	switch {
	case m.position > RestartThreshold || (m.index == 0 && m.repeat == RepeatOff):
	case m.index > 0:
		m.moveTo(m.index - 1)
	default:
		m.moveTo(len(m.items) - 1)
	}
	m.position = 0
}

func (m *Mock) RepeatMode() RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeat
}

func (m *Mock) SetRepeatMode(mode RepeatMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetRepeatMode(%s)", mode)
	m.repeat = mode
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.duration > 0 {
		return m.duration
	}
	if m.index >= 0 {
		return m.items[m.index].Duration
	}
	return 0
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

// Release closes the event channel. Calling it more than once is safe.
func (m *Mock) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil
	}
	m.record("Release()")
	m.released = true
	close(m.events)
	return nil
}

func (m *Mock) SetEqualizer(enabled bool, levels []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetEqualizer(%t)", enabled)
	m.eqEnabled = enabled
	m.eqLevels = append([]int(nil), levels...)
}

// Test helpers

// Calls returns every recorded call in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ResetCalls clears the call record.
func (m *Mock) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Items returns the loaded items.
func (m *Mock) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...)
}

// Equalizer returns the last equalizer settings applied.
func (m *Mock) Equalizer() (bool, []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eqEnabled, append([]int(nil), m.eqLevels...)
}

// SetPosition moves the playhead without recording a call.
func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// SetDuration overrides the duration of every item.
func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// SimulateItemEnded plays out the current item the way a real engine
// would: repeat it, advance, or stop at the end of the list.
func (m *Mock) SimulateItemEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < 0 {
		return
	}
	m.position = 0
	switch {
	case m.repeat == RepeatOne:
		m.emit(Event{Type: EventTransition, Index: m.index})
	case m.index < len(m.items)-1:
		m.moveTo(m.index + 1)
	case m.repeat == RepeatAll:
		m.moveTo(0)
	default:
		m.setPlaying(false)
		m.emit(Event{Type: EventEnded, Index: m.index})
	}
}

// SimulateError reports a playback failure for the current item.
func (m *Mock) SimulateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(Event{Type: EventError, Index: m.index, Err: err})
}

func (m *Mock) moveTo(index int) {
	changed := index != m.index
	m.index = index
	if changed {
		m.emit(Event{Type: EventTransition, Index: index})
	}
}

func (m *Mock) setPlaying(playing bool) {
	if m.playing == playing {
		return
	}
	m.playing = playing
	m.emit(Event{Type: EventPlayingChanged, Index: m.index, Playing: playing})
}

func (m *Mock) emit(ev Event) {
	if m.released {
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}

func (m *Mock) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

var (
	_ Engine          = (*Mock)(nil)
	_ EqualizerTarget = (*Mock)(nil)
)
