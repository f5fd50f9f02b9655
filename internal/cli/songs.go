package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
)

func newSongsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "songs [QUERY...]",
		Short: "List indexed songs, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := a.library()

			var songs []library.Song
			var err error
			if len(args) == 0 {
				songs, err = lib.All(cmd.Context())
			} else {
				songs, err = lib.Search(cmd.Context(), strings.Join(args, " "))
			}
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
			}

			t := newTable(cmd.OutOrStdout(), songHeader)
			for i, s := range songs {
				t.AppendRow(songRow(i+1, s))
			}
			t.Render()
			return nil
		},
	}
}
