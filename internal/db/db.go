// Package db opens the cadence SQLite database and owns its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// Memory is the path that opens a private in-memory database.
const Memory = ":memory:"

const currentSchemaVersion = 1

// Open opens (or creates) the database at path and applies the schema.
//
// The pool is limited to a single connection: SQLite serializes writers
// anyway, and an in-memory database only exists on the connection that
// created it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path +
			"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := initSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return conn, nil
}

func initSchema(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			artwork BLOB,
			mtime INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			cover_uri TEXT,
			created_at INTEGER NOT NULL
		);

		-- position is dense per playlist: {0..n-1}. It is not UNIQUE because
		-- reindexing shifts whole ranges in a single UPDATE.
		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			song_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (playlist_id, song_id)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_songs_position
			ON playlist_songs(playlist_id, position);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			kind INTEGER NOT NULL,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
