package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/mpris"
	"github.com/cadencefm/cadence/internal/notify"
	"github.com/cadencefm/cadence/internal/playback"
	"github.com/cadencefm/cadence/internal/player"
	"github.com/cadencefm/cadence/internal/stderr"
	"github.com/cadencefm/cadence/internal/ui/nowplaying"
)

const playCmdName = "play"

func newPlayCmd(a *app) *cobra.Command {
	var (
		playlistID int64
		shuffle    bool
		next       []int64
		enqueue    []int64
	)

	cmd := &cobra.Command{
		Use:   playCmdName,
		Short: "Open the player, resuming the saved queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := stderr.Start(a.log); err != nil {
				a.log.WithError(err).Warn("stderr capture unavailable")
			}
			defer stderr.Stop()

			lib := a.library()
			mgr, err := playback.New(ctx, playback.Options{
				Library:      lib,
				Settings:     a.settings(),
				Connector:    player.Connector(a.log),
				Logger:       a.log,
				PollInterval: a.cfg.PollInterval,
				SaveDebounce: a.cfg.SaveDebounce,
			})
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpQueueRestore, err))
			}
			defer func() {
				err = errors.Join(err, mgr.Close())
			}()

			if playlistID != 0 {
				if err := loadPlaylist(cmd, a, mgr, playlistID, shuffle); err != nil {
					return err
				}
			}
			if err := queueSongs(ctx, lib, mgr, next, enqueue); err != nil {
				return err
			}

			if a.cfg.MPRIS {
				session, err := mpris.New(mgr, a.log)
				if err != nil {
					a.log.WithError(err).Warn(errmsg.Format(errmsg.OpMediaKeys, err))
				} else {
					defer session.Close()
					go session.Follow(ctx, mgr.Subscribe())
				}
			}

			if a.cfg.Notifications {
				go notify.Watch(ctx, mgr.Subscribe(), notify.New(a.log), a.log)
			}

			p := tea.NewProgram(nowplaying.New(mgr), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&playlistID, "playlist", "p", 0, "replace the queue with this playlist")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle the loaded playlist")
	cmd.Flags().Int64SliceVar(&next, "next", nil, "song ids to play after the current song")
	cmd.Flags().Int64SliceVar(&enqueue, "enqueue", nil, "song ids to move to the end of the queue")
	return cmd
}

// loadPlaylist replaces the queue with the songs of a playlist.
func loadPlaylist(cmd *cobra.Command, a *app, mgr *playback.Manager, id int64, shuffle bool) error {
	ids, err := a.playlists().Songs(cmd.Context(), id)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpPlaylistLoad, err))
	}
	songs, err := a.library().Resolve(cmd.Context(), ids)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	if err := mgr.SetPlaylist(songs, nil); err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueueSet, err))
	}
	if shuffle {
		mgr.SetShuffled(true)
	}
	return nil
}

// queueEditor is the part of playback.Manager that edits the queue.
type queueEditor interface {
	SetNextSong(song library.Song)
	AddToQueue(song library.Song)
}

// queueSongs places next right after the current song, in the given
// order, and moves enqueue to the end. Unknown ids are skipped.
func queueSongs(ctx context.Context, lib playback.Resolver, q queueEditor, next, enqueue []int64) error {
	if len(next) == 0 && len(enqueue) == 0 {
		return nil
	}
	nextSongs, err := lib.Resolve(ctx, next)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	tail, err := lib.Resolve(ctx, enqueue)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	for _, s := range slices.Backward(nextSongs) {
		q.SetNextSong(s)
	}
	for _, s := range tail {
		q.AddToQueue(s)
	}
	return nil
}
