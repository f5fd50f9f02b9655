package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
)

func newScanCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Index the music folder",
		Long:  "Walks DIR (default: music_dir from the config), reads tags of new or changed files and drops songs whose files are gone.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := a.cfg.MusicDir
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				return errors.New("no music folder: pass DIR or set music_dir")
			}

			scanner := library.NewScanner(a.library(), a.log)
			stats, err := scanner.Scan(cmd.Context(), root)
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpLibraryScan, root, err))
			}
			printStats(cmd.OutOrStdout(), stats)

			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, press Ctrl+C to stop\n", root)
			err = scanner.Watch(ctx, root, func(stats library.ScanStats, err error) {
				if err != nil {
					a.log.WithError(err).Error(errmsg.FormatWith(errmsg.OpLibraryScan, root, err))
					return
				}
				printStats(cmd.OutOrStdout(), stats)
			})
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpLibraryWatch, root, err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and rescan when files change")
	return cmd
}

func printStats(w io.Writer, s library.ScanStats) {
	fmt.Fprintf(w, "%s added, %s updated, %s unchanged, %s removed, %s failed\n",
		humanize.Comma(int64(s.Added)),
		humanize.Comma(int64(s.Updated)),
		humanize.Comma(int64(s.Unchanged)),
		humanize.Comma(int64(s.Removed)),
		humanize.Comma(int64(s.Failed)),
	)
}
