// Package playlists stores user playlists and their dense song ordering.
//
// For every playlist the membership positions are exactly {0, ..., n-1}
// after each committed transaction. Structural mutations of one playlist
// are serialized; different playlists proceed independently.
package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	dbutil "github.com/cadencefm/cadence/internal/db"
)

var (
	// ErrNotFound is returned when a playlist id does not exist.
	ErrNotFound = errors.New("playlist not found")
	// ErrEmptyName is returned when creating or renaming to a blank name.
	ErrEmptyName = errors.New("playlist name is empty")
	// ErrSongNotInPlaylist is returned when moving a song that is not a member.
	ErrSongNotInPlaylist = errors.New("song not in playlist")
)

// Playlist represents playlist metadata (without songs).
type Playlist struct {
	ID        int64
	Name      string
	CoverURI  string
	CreatedAt int64
}

// Store provides database operations for playlists and their songs.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger

	locks playlistLocks

	cacheMu sync.Mutex
	cache   map[int64][]int64
}

// New creates a Store backed by db.
func New(db *sql.DB, log logrus.FieldLogger) *Store {
	return &Store{
		db:    db,
		log:   log,
		locks: playlistLocks{m: make(map[int64]*sync.Mutex)},
		cache: make(map[int64][]int64),
	}
}

// Create inserts a playlist and returns its id.
func (s *Store) Create(ctx context.Context, name, coverURI string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (name, cover_uri, created_at)
		VALUES (?, ?, ?)
	`, name, dbutil.NullString(coverURI), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("create playlist %q: %w", name, err)
	}
	return result.LastInsertId()
}

// Update renames a playlist and replaces its cover.
func (s *Store) Update(ctx context.Context, p Playlist) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE playlists SET name = ?, cover_uri = ? WHERE id = ?
	`, name, dbutil.NullString(p.CoverURI), p.ID)
	if err != nil {
		return fmt.Errorf("update playlist %d: %w", p.ID, err)
	}
	return requireAffected(result, p.ID)
}

// Delete deletes a playlist; its membership rows cascade.
func (s *Store) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.lock(id)
	defer unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete playlist %d: %w", id, err)
	}
	s.invalidate(id)
	return requireAffected(result, id)
}

// List returns all playlists ordered by name.
func (s *Store) List(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cover_uri, created_at
		FROM playlists
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		var cover sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &cover, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CoverURI = dbutil.NullStringValue(cover)
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// Get returns a playlist by its id.
func (s *Store) Get(ctx context.Context, id int64) (Playlist, error) {
	var p Playlist
	var cover sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, cover_uri, created_at FROM playlists WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &cover, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Playlist{}, err
	}
	p.CoverURI = dbutil.NullStringValue(cover)
	return p, nil
}

func requireAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}
	return nil
}

// playlistLocks hands out one mutex per playlist id.
type playlistLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (l *playlistLocks) lock(id int64) (unlock func()) {
	l.mu.Lock()
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
