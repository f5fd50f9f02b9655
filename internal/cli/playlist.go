package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/cadencefm/cadence/internal/errmsg"
)

func newPlaylistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlist",
		Aliases: []string{"pl"},
		Short:   "Manage playlists",
	}
	cmd.AddCommand(
		newPlaylistCreateCmd(a),
		newPlaylistListCmd(a),
		newPlaylistShowCmd(a),
		newPlaylistRenameCmd(a),
		newPlaylistDeleteCmd(a),
		newPlaylistAddCmd(a),
		newPlaylistRemoveCmd(a),
		newPlaylistMoveCmd(a),
	)
	return cmd
}

func newPlaylistCreateCmd(a *app) *cobra.Command {
	var cover string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty playlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			id, err := a.playlists().Create(cmd.Context(), name, cover)
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpPlaylistCreate, name, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&cover, "cover", "", "cover image URI")
	return cmd
}

func newPlaylistListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List playlists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.playlists()
			lists, err := store.List(cmd.Context())
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistLoad, err))
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"ID", "Name", "Songs", "Created"})
			for _, p := range lists {
				n, err := store.Count(cmd.Context(), p.ID)
				if err != nil {
					return errors.New(errmsg.FormatWith(errmsg.OpPlaylistLoad, p.Name, err))
				}
				t.AppendRow(table.Row{p.ID, p.Name, humanize.Comma(int64(n)), humanize.Time(time.Unix(p.CreatedAt, 0))})
			}
			t.Render()
			return nil
		},
	}
}

func newPlaylistShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show PLAYLIST",
		Short: "List the songs of a playlist in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			store := a.playlists()
			p, err := store.Get(cmd.Context(), pid)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistLoad, err))
			}
			ids, err := store.Songs(cmd.Context(), pid)
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpPlaylistLoad, p.Name, err))
			}
			songs, err := a.library().Resolve(cmd.Context(), ids)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d songs)\n", p.Name, len(ids))
			t := newTable(cmd.OutOrStdout(), songHeader)
			// Rows are numbered by playlist position, starting at 0.
			for i, s := range songs {
				t.AppendRow(songRow(i, s))
			}
			t.Render()
			return nil
		},
	}
}

func newPlaylistRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PLAYLIST NAME",
		Short: "Rename a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			store := a.playlists()
			p, err := store.Get(cmd.Context(), pid)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistRename, err))
			}
			p.Name = strings.Join(args[1:], " ")
			if err := store.Update(cmd.Context(), p); err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpPlaylistRename, p.Name, err))
			}
			return nil
		},
	}
}

func newPlaylistDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PLAYLIST",
		Short: "Delete a playlist and its song list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			if err := a.playlists().Delete(cmd.Context(), pid); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistDelete, err))
			}
			return nil
		},
	}
}

func newPlaylistAddCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "add PLAYLIST [SONG_ID...]",
		Short: "Append songs to a playlist",
		Long:  "Appends the given song ids, or every song matching --search, in order. Songs already in the playlist are skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			if query != "" {
				found, err := a.library().Search(cmd.Context(), query)
				if err != nil {
					return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
				}
				for _, s := range found {
					ids = append(ids, s.ID)
				}
			}
			if len(ids) == 0 {
				return errors.New("no songs to add")
			}

			store := a.playlists()
			before, err := store.Count(cmd.Context(), pid)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistAddSong, err))
			}
			if err := store.AddSongs(cmd.Context(), pid, ids); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistAddSong, err))
			}
			after, err := store.Count(cmd.Context(), pid)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistAddSong, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d songs\n", after-before)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "add every song matching this query")
	return cmd
}

func newPlaylistRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PLAYLIST SONG_ID",
		Short: "Remove a song from a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			sid, err := parseID("song", args[1])
			if err != nil {
				return err
			}
			if err := a.playlists().DeleteSong(cmd.Context(), pid, sid); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistRemove, err))
			}
			return nil
		},
	}
}

func newPlaylistMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv PLAYLIST SONG_ID POSITION",
		Short: "Move a song to a position (0-based, clamped)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parseID("playlist", args[0])
			if err != nil {
				return err
			}
			sid, err := parseID("song", args[1])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[2])
			}
			pos, err := a.playlists().MoveSong(cmd.Context(), pid, sid, to)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistMove, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved to position %d\n", pos)
			return nil
		},
	}
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID("song", arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
