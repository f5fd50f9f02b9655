// Package nowplaying is the terminal view of the play queue: the current
// song, a progress bar, the queue and the playback modes.
package nowplaying

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/equalizer"
	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
)

const (
	// scrubStep is the fraction moved by one seek key press.
	scrubStep = 0.05
	// bandStep is the gain change of one equalizer key press, in millibels.
	bandStep = 100
)

// Controller is the part of playback.Manager the view drives.
type Controller interface {
	Subscribe() *playback.Subscription
	Equalizer() *equalizer.Equalizer

	Next()
	Previous()
	TogglePlaying()
	SetShuffled(shuffled bool)
	SetNextSong(song library.Song)
	AddToQueue(song library.Song)
	CycleRepeatMode() engine.RepeatMode
	SetProgress(fraction float64)
	CommitProgress()

	State() playback.State
	Current() (library.Song, bool)
	Queue() []library.Song
	Shuffled() bool
	RepeatMode() engine.RepeatMode
	Progress() float64
	SeekMode() playback.SeekMode
	Position() time.Duration
	Duration() time.Duration
}

var _ Controller = (*playback.Manager)(nil)

type keyMap struct {
	Toggle  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Shuffle key.Binding
	Repeat  key.Binding
	Back    key.Binding
	Forward key.Binding
	Commit  key.Binding
	Up      key.Binding
	Down    key.Binding
	PlayNxt key.Binding
	Enqueue key.Binding
	EQ      key.Binding
	Band    key.Binding
	BandUp  key.Binding
	BandDn  key.Binding
	EQReset key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	Prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
	Shuffle: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
	Repeat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
	Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "seek back")),
	Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "seek forward")),
	Commit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply seek")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
	PlayNxt: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "play next")),
	Enqueue: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "to end")),
	EQ:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "equalizer")),
	Band:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "band")),
	BandUp:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "boost")),
	BandDn:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "cut")),
	EQReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "flat")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Message types delivered from the subscription.
type (
	stateMsg    playback.StateChange
	trackMsg    playback.TrackChange
	progressMsg playback.ProgressChange
	queueMsg    playback.QueueChange
	modeMsg     playback.ModeChange
	errorMsg    struct{ text string }
	closedMsg   struct{}
)

// Model is the bubbletea model.
type Model struct {
	ctrl Controller
	sub  *playback.Subscription

	state    playback.State
	current  *library.Song
	queue    []library.Song
	index    int
	shuffled bool
	repeat   engine.RepeatMode
	// cursor is the selected queue row.
	cursor int

	eqOn     bool
	eqLevels []int
	eqBand   int

	progress  float64
	position  time.Duration
	duration  time.Duration
	scrubbing bool

	lastErr string
	bar     progress.Model
	width   int
	height  int
}

// New creates a model showing ctrl's current state.
func New(ctrl Controller) Model {
	m := Model{
		ctrl:     ctrl,
		sub:      ctrl.Subscribe(),
		state:    ctrl.State(),
		queue:    ctrl.Queue(),
		shuffled: ctrl.Shuffled(),
		repeat:   ctrl.RepeatMode(),
		eqOn:     ctrl.Equalizer().Enabled(),
		eqLevels: ctrl.Equalizer().Levels(),
		progress: ctrl.Progress(),
		position: ctrl.Position(),
		duration: ctrl.Duration(),
		index:    -1,
		bar: progress.New(
			progress.WithSolidFill(string(theme.Primary)),
			progress.WithoutPercentage(),
		),
		width:  80,
		height: 24,
	}
	m.scrubbing = ctrl.SeekMode() == playback.SeekScrubbing
	if song, ok := ctrl.Current(); ok {
		m.current = &song
		m.index = indexOf(m.queue, song.ID)
	}
	m.cursor = max(m.index, 0)
	return m
}

// Init starts listening for playback events.
func (m Model) Init() tea.Cmd {
	return listen(m.sub)
}

// listen waits for the next event on any subscription channel.
func listen(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return stateMsg(e)
		case e := <-sub.TrackChanged:
			return trackMsg(e)
		case e := <-sub.ProgressChanged:
			return progressMsg(e)
		case e := <-sub.QueueChanged:
			return queueMsg(e)
		case e := <-sub.ModeChanged:
			return modeMsg(e)
		case e := <-sub.Error:
			return errorMsg{text: formatError(e)}
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

func formatError(e playback.ErrorEvent) string {
	return errmsg.FormatWith(errmsg.ForEvent(e.Operation), e.Path, e.Err)
}

// Update handles keys and playback events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = msg.Current
		return m, listen(m.sub)

	case trackMsg:
		m.current = msg.Current
		m.index = msg.Index
		return m, listen(m.sub)

	case progressMsg:
		if !m.scrubbing {
			m.progress = msg.Progress
			m.position = msg.Position
			m.duration = msg.Duration
		}
		return m, listen(m.sub)

	case queueMsg:
		m.queue = msg.Songs
		m.index = msg.Index
		m.cursor = min(m.cursor, max(len(m.queue)-1, 0))
		return m, listen(m.sub)

	case modeMsg:
		m.repeat = msg.RepeatMode
		m.shuffled = msg.Shuffled
		return m, listen(m.sub)

	case errorMsg:
		m.lastErr = msg.text
		return m, listen(m.sub)

	case eqMsg:
		if msg.err != "" {
			m.lastErr = msg.err
		}
		m.eqOn = msg.enabled
		m.eqLevels = msg.levels
		return m, nil

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

// eqMsg carries the equalizer settings after a change, and the error
// when the change could not be saved.
type eqMsg struct {
	enabled bool
	levels  []int
	err     string
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Toggle):
		m.ctrl.TogglePlaying()
	case key.Matches(msg, keys.Next):
		m.ctrl.Next()
	case key.Matches(msg, keys.Prev):
		m.ctrl.Previous()
	case key.Matches(msg, keys.Shuffle):
		m.shuffled = !m.shuffled
		m.ctrl.SetShuffled(m.shuffled)
	case key.Matches(msg, keys.Repeat):
		m.repeat = m.ctrl.CycleRepeatMode()
	case key.Matches(msg, keys.Back):
		m.scrub(-scrubStep)
	case key.Matches(msg, keys.Forward):
		m.scrub(scrubStep)
	case key.Matches(msg, keys.Commit):
		if m.scrubbing {
			m.ctrl.CommitProgress()
			m.scrubbing = false
		}
	case key.Matches(msg, keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.queue)-1, 0))
	case key.Matches(msg, keys.PlayNxt):
		if s, ok := m.selected(); ok {
			m.ctrl.SetNextSong(s)
		}
	case key.Matches(msg, keys.Enqueue):
		if s, ok := m.selected(); ok {
			m.ctrl.AddToQueue(s)
		}
	case key.Matches(msg, keys.EQ):
		return m, m.toggleEqualizer()
	case key.Matches(msg, keys.Band):
		m.eqBand = (m.eqBand + 1) % len(equalizer.Bands)
	case key.Matches(msg, keys.BandUp):
		cmd := m.adjustBand(bandStep)
		return m, cmd
	case key.Matches(msg, keys.BandDn):
		cmd := m.adjustBand(-bandStep)
		return m, cmd
	case key.Matches(msg, keys.EQReset):
		return m, m.resetEqualizer()
	}
	return m, nil
}

func (m Model) selected() (library.Song, bool) {
	if m.cursor < 0 || m.cursor >= len(m.queue) {
		return library.Song{}, false
	}
	return m.queue[m.cursor], true
}

func (m *Model) scrub(delta float64) {
	if m.current == nil {
		return
	}
	m.progress = min(max(m.progress+delta, 0), 1)
	m.position = time.Duration(float64(m.duration) * m.progress)
	m.scrubbing = true
	m.ctrl.SetProgress(m.progress)
}

func (m Model) toggleEqualizer() tea.Cmd {
	enabled := !m.eqOn
	return m.saveEqualizer(func(ctx context.Context, eq *equalizer.Equalizer) error {
		return eq.SetEnabled(ctx, enabled)
	})
}

// adjustBand moves the selected band by delta. The model shows the new
// level right away so repeated presses accumulate.
func (m *Model) adjustBand(delta int) tea.Cmd {
	if m.eqBand >= len(m.eqLevels) {
		return nil
	}
	band := m.eqBand
	level := min(max(m.eqLevels[band]+delta, equalizer.MinLevel), equalizer.MaxLevel)
	m.eqLevels = append([]int(nil), m.eqLevels...)
	m.eqLevels[band] = level
	return m.saveEqualizer(func(ctx context.Context, eq *equalizer.Equalizer) error {
		_, err := eq.SetBandLevel(ctx, band, level)
		return err
	})
}

func (m Model) resetEqualizer() tea.Cmd {
	return m.saveEqualizer(func(ctx context.Context, eq *equalizer.Equalizer) error {
		return eq.Reset(ctx)
	})
}

// saveEqualizer runs change off the update loop and reports the settings
// that took effect.
func (m Model) saveEqualizer(change func(context.Context, *equalizer.Equalizer) error) tea.Cmd {
	eq := m.ctrl.Equalizer()
	return func() tea.Msg {
		msg := eqMsg{}
		if err := change(context.Background(), eq); err != nil {
			msg.err = errmsg.Format(errmsg.OpEqualizerSave, err)
		}
		msg.enabled = eq.Enabled()
		msg.levels = eq.Levels()
		return msg
	}
}

func indexOf(songs []library.Song, id int64) int {
	for i, s := range songs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
