//go:build linux

package mpris

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/playback"
)

// Adapter exposes a playback.Manager over D-Bus as an MPRIS player.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	log    logrus.FieldLogger
}

// New creates and starts a new MPRIS adapter.
func New(ctrl Controller, log logrus.FieldLogger) (*Adapter, error) {
	srv := server.NewServer("cadence", &rootAdapter{}, &playerAdapter{ctrl: ctrl})
	a := &Adapter{
		server: srv,
		events: events.NewEventHandler(srv),
		log:    log,
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithError(err).Warn("mpris server stopped")
		}
	}()
	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// Follow emits PropertiesChanged signals for playback events on sub
// until ctx is done or the subscription closes.
func (a *Adapter) Follow(ctx context.Context, sub *playback.Subscription) {
	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case <-sub.StateChanged:
			err = a.events.Player.OnPlayPause()
		case <-sub.TrackChanged:
			err = a.events.Player.OnTitle()
		case <-sub.ModeChanged:
			err = a.events.Player.OnOptions()
		case <-sub.QueueChanged:
			err = a.events.Player.OnOptions()
		}
		if err != nil {
			a.log.WithError(err).Debug("mpris signal failed")
		}
	}
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error            { return nil }
func (r *rootAdapter) Quit() error             { return nil }
func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Cadence", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter plus the
// LoopStatus and Shuffle extensions.
type playerAdapter struct {
	ctrl Controller
}

func (p *playerAdapter) Next() error {
	p.ctrl.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.ctrl.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.ctrl.SetPlaying(false)
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.ctrl.TogglePlaying()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.ctrl.SetPlaying(false)
	return nil
}

func (p *playerAdapter) Play() error {
	p.ctrl.SetPlaying(true)
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	target := p.ctrl.Position() + time.Duration(offset)*time.Microsecond
	p.seekTo(target)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.seekTo(time.Duration(position) * time.Microsecond)
	return nil
}

func (p *playerAdapter) seekTo(pos time.Duration) {
	dur := p.ctrl.Duration()
	if dur <= 0 {
		return
	}
	p.ctrl.SetProgress(float64(pos) / float64(dur))
	p.ctrl.CommitProgress()
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.ctrl.State() {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error)    { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error   { return nil }
func (p *playerAdapter) Volume() (float64, error)  { return 1.0, nil }
func (p *playerAdapter) SetVolume(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	song, ok := p.ctrl.Current()
	if !ok {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(song.ID)),
		Length:  types.Microseconds(song.Duration.Microseconds()),
		Title:   song.Title,
		Album:   song.Album,
	}
	if song.Artist != "" {
		meta.Artist = []string{song.Artist}
	}
	if art := ArtURL(song); art != "" {
		meta.ArtUrl = art
	}
	return meta, nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctrl.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	i, n := p.currentIndex()
	return n > 0 && (i < n-1 || p.ctrl.RepeatMode() != engine.RepeatOff), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, n := p.currentIndex()
	return n > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.ctrl.Queue()) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error)   { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.ctrl.RepeatMode() {
	case engine.RepeatOne:
		return types.LoopStatusTrack, nil
	case engine.RepeatAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		return p.ctrl.SetRepeatMode(engine.RepeatOff)
	case types.LoopStatusTrack:
		return p.ctrl.SetRepeatMode(engine.RepeatOne)
	case types.LoopStatusPlaylist:
		return p.ctrl.SetRepeatMode(engine.RepeatAll)
	}
	return fmt.Errorf("unknown loop status %q", status)
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.ctrl.Shuffled(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.ctrl.SetShuffled(shuffle)
	return nil
}

func (p *playerAdapter) currentIndex() (int, int) {
	queue := p.ctrl.Queue()
	song, ok := p.ctrl.Current()
	if !ok {
		return -1, len(queue)
	}
	for i, s := range queue {
		if s.ID == song.ID {
			return i, len(queue)
		}
	}
	return -1, len(queue)
}

func formatTrackID(id int64) string {
	return fmt.Sprintf("/org/cadence/Track/%d", id)
}
