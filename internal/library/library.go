// Package library indexes audio files on disk and resolves song ids.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	dbutil "github.com/cadencefm/cadence/internal/db"
)

// ErrNotFound is returned when a song id does not exist.
var ErrNotFound = errors.New("song not found")

// Song is an indexed audio file. It is a value type; two songs are the
// same song when their IDs match.
type Song struct {
	ID       int64
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	// Artwork holds embedded cover bytes. Only Get and the scanner fill
	// it; bulk queries leave it nil to keep queue loads light.
	Artwork []byte
}

// Is reports whether s and other refer to the same song.
func (s Song) Is(other Song) bool {
	return s.ID == other.ID
}

// Library provides database operations for indexed songs.
type Library struct {
	db *sql.DB
}

// New creates a Library backed by db.
func New(db *sql.DB) *Library {
	return &Library{db: db}
}

// Upsert inserts a song or updates the row with the same path, returning its id.
func (l *Library) Upsert(ctx context.Context, s Song, mtime int64) (int64, error) {
	var id int64
	err := l.db.QueryRowContext(ctx, `
		INSERT INTO songs (path, title, artist, album, duration_ms, artwork, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration_ms = excluded.duration_ms,
			artwork = excluded.artwork,
			mtime = excluded.mtime
		RETURNING id
	`, s.Path, s.Title, s.Artist, s.Album, s.Duration.Milliseconds(), s.Artwork, mtime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert song %s: %w", s.Path, err)
	}
	return id, nil
}

// Get returns the song with the given id, including artwork.
func (l *Library) Get(ctx context.Context, id int64) (Song, error) {
	var s Song
	var durationMs int64
	err := l.db.QueryRowContext(ctx, `
		SELECT id, path, title, artist, album, duration_ms, artwork
		FROM songs WHERE id = ?
	`, id).Scan(&s.ID, &s.Path, &s.Title, &s.Artist, &s.Album, &durationMs, &s.Artwork)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Song{}, err
	}
	s.Duration = time.Duration(durationMs) * time.Millisecond
	return s, nil
}

// All returns every indexed song ordered by title.
func (l *Library) All(ctx context.Context) ([]Song, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, path, title, artist, album, duration_ms
		FROM songs
		ORDER BY title COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongs(rows)
}

// resolveBatch is the most ids bound to one query, well under SQLite's
// host parameter limit.
const resolveBatch = 500

// Resolve maps ids to songs, preserving the order of ids. Ids that no
// longer exist are dropped silently: a queue restored after files were
// deleted simply gets shorter.
func (l *Library) Resolve(ctx context.Context, ids []int64) ([]Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[int64]Song, len(ids))
	for batch := range slices.Chunk(ids, resolveBatch) {
		if err := l.resolveChunk(ctx, batch, byID); err != nil {
			return nil, err
		}
	}

	result := make([]Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

func (l *Library) resolveChunk(ctx context.Context, ids []int64, into map[int64]Song) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // placeholders are generated, not user input
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, path, title, artist, album, duration_ms
		FROM songs WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	found, err := scanSongs(rows)
	if err != nil {
		return err
	}
	for _, s := range found {
		into[s.ID] = s
	}
	return nil
}

// RemoveMissing deletes songs whose file no longer exists on disk.
// Returns the number of removed songs.
func (l *Library) RemoveMissing(ctx context.Context) (int, error) {
	songs, err := l.All(ctx)
	if err != nil {
		return 0, err
	}

	var missing []int64
	for _, s := range songs {
		if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, s.ID)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	err = dbutil.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM songs WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range missing {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(missing), nil
}

// mtimes returns the stored modification time per path.
func (l *Library) mtimes(ctx context.Context) (map[string]int64, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT path, mtime FROM songs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		result[path] = mtime
	}
	return result, rows.Err()
}

func scanSongs(rows *sql.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		var s Song
		var durationMs int64
		if err := rows.Scan(&s.ID, &s.Path, &s.Title, &s.Artist, &s.Album, &durationMs); err != nil {
			return nil, err
		}
		s.Duration = time.Duration(durationMs) * time.Millisecond
		songs = append(songs, s)
	}
	return songs, rows.Err()
}
