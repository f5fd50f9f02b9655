// Package cli wires the cadence command tree.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cadencefm/cadence/internal/config"
	"github.com/cadencefm/cadence/internal/db"
	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/logging"
	"github.com/cadencefm/cadence/internal/playlists"
	"github.com/cadencefm/cadence/internal/settings"
)

// app holds what every subcommand shares. It is filled by the root
// command's pre-run hook.
type app struct {
	configPath string
	database   string
	logLevel   string

	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
	conn   *sql.DB
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cadence",
		Short:         "A terminal music player with ordered playlists and a persistent queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/cadence/config.toml)")
	root.PersistentFlags().StringVar(&a.database, "database", "", "database file, overrides the config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides the config")

	root.AddCommand(
		newScanCmd(a),
		newSongsCmd(a),
		newPlaylistCmd(a),
		newPlayCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// Run executes args against a fresh command tree.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown())
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFiles(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if a.database != "" {
		a.cfg.Database = a.database
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}

	// The player owns the terminal, so its log goes to a file.
	if cmd.Name() == playCmdName {
		a.log, a.closer, err = logging.NewFile(a.cfg.LogLevel, a.cfg.LogFile)
	} else {
		a.log, err = logging.New(a.cfg.LogLevel, cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}

	a.conn, err = db.Open(cmd.Context(), a.cfg.Database)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpDatabase, err))
	}
	return nil
}

func (a *app) teardown() error {
	var errs []error
	if a.conn != nil {
		errs = append(errs, a.conn.Close())
		a.conn = nil
	}
	if a.closer != nil {
		errs = append(errs, a.closer.Close())
		a.closer = nil
	}
	return errors.Join(errs...)
}

func (a *app) library() *library.Library {
	return library.New(a.conn)
}

func (a *app) playlists() *playlists.Store {
	return playlists.New(a.conn, a.log)
}

func (a *app) settings() settings.Store {
	return settings.NewSQLite(a.conn)
}
