package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	dbutil "github.com/cadencefm/cadence/internal/db"
)

// Songs returns the song ids of a playlist ordered by position.
// Results are cached per playlist until the next mutation of it.
func (s *Store) Songs(ctx context.Context, playlistID int64) ([]int64, error) {
	if ids, ok := s.cached(playlistID); ok {
		return ids, nil
	}

	// Fetch under the playlist lock so a concurrent mutation cannot
	// invalidate between our read and our cache write.
	unlock := s.locks.lock(playlistID)
	defer unlock()

	if ids, ok := s.cached(playlistID); ok {
		return ids, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id FROM playlist_songs
		WHERE playlist_id = ?
		ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("load playlist %d songs: %w", playlistID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[playlistID] = ids
	s.cacheMu.Unlock()
	return cloneIDs(ids), nil
}

// Count returns the number of songs in a playlist.
func (s *Store) Count(ctx context.Context, playlistID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ?
	`, playlistID).Scan(&count)
	return count, err
}

// LastPosition returns the highest position in a playlist, or false
// when the playlist is empty.
func (s *Store) LastPosition(ctx context.Context, playlistID int64) (int, bool, error) {
	return lastPosition(ctx, s.db, playlistID)
}

// AddSong appends a song to a playlist. Adding a song that is already a
// member is a no-op.
func (s *Store) AddSong(ctx context.Context, playlistID, songID int64) error {
	return s.AddSongs(ctx, playlistID, []int64{songID})
}

// AddSongs appends songs in input order within one transaction. Songs
// already in the playlist, and repeats within songIDs, are skipped.
func (s *Store) AddSongs(ctx context.Context, playlistID int64, songIDs []int64) error {
	if len(songIDs) == 0 {
		return nil
	}

	unlock := s.locks.lock(playlistID)
	defer unlock()

	added := 0
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requirePlaylist(ctx, tx, playlistID); err != nil {
			return err
		}

		existing, err := memberSet(ctx, tx, playlistID)
		if err != nil {
			return err
		}

		last, ok, err := lastPosition(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		next := 0
		if ok {
			next = last + 1
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO playlist_songs (playlist_id, song_id, position)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, songID := range songIDs {
			if existing[songID] {
				continue
			}
			if _, err := stmt.ExecContext(ctx, playlistID, songID, next); err != nil {
				return err
			}
			existing[songID] = true
			next++
			added++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add songs to playlist %d: %w", playlistID, err)
	}

	if added > 0 {
		s.invalidate(playlistID)
	}
	s.log.WithFields(logrus.Fields{
		"playlist": playlistID,
		"added":    added,
		"skipped":  len(songIDs) - added,
	}).Debug("songs added to playlist")
	return nil
}

// DeleteSong removes a song and shifts every later song up by one.
// Removing a song that is not a member is a no-op.
func (s *Store) DeleteSong(ctx context.Context, playlistID, songID int64) error {
	unlock := s.locks.lock(playlistID)
	defer unlock()

	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// The subquery must still see the target row, so shift first.
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlist_songs
			SET position = position - 1
			WHERE playlist_id = ? AND position > (
				SELECT position FROM playlist_songs
				WHERE playlist_id = ? AND song_id = ?
			)
		`, playlistID, playlistID, songID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?
		`, playlistID, songID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete song %d from playlist %d: %w", songID, playlistID, err)
	}

	s.invalidate(playlistID)
	return nil
}

// MoveSong moves a song to toPosition and returns the position it ended
// at. Targets outside [0, n-1] are clamped to the nearest end.
func (s *Store) MoveSong(ctx context.Context, playlistID, songID int64, toPosition int) (int, error) {
	unlock := s.locks.lock(playlistID)
	defer unlock()

	var final int
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var from int
		err := tx.QueryRowContext(ctx, `
			SELECT position FROM playlist_songs WHERE playlist_id = ? AND song_id = ?
		`, playlistID, songID).Scan(&from)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("song %d: %w", songID, ErrSongNotInPlaylist)
		}
		if err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ?
		`, playlistID).Scan(&count); err != nil {
			return err
		}

		m := newMove(from, toPosition, count)
		final = m.to
		if m.noop() {
			return nil
		}

		// Close the gap at the old position.
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlist_songs SET position = position - 1
			WHERE playlist_id = ? AND position > ?
		`, playlistID, m.from); err != nil {
			return err
		}
		// Open a gap at the destination.
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlist_songs SET position = position + 1
			WHERE playlist_id = ? AND position >= ? AND song_id != ?
		`, playlistID, m.to, songID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE playlist_songs SET position = ?
			WHERE playlist_id = ? AND song_id = ?
		`, m.to, playlistID, songID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("move song %d in playlist %d: %w", songID, playlistID, err)
	}

	s.invalidate(playlistID)
	return final, nil
}

func (s *Store) cached(playlistID int64) ([]int64, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	ids, ok := s.cache[playlistID]
	if !ok {
		return nil, false
	}
	return cloneIDs(ids), true
}

func (s *Store) invalidate(playlistID int64) {
	s.cacheMu.Lock()
	delete(s.cache, playlistID)
	s.cacheMu.Unlock()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func lastPosition(ctx context.Context, q querier, playlistID int64) (int, bool, error) {
	var maxPos sql.NullInt64
	err := q.QueryRowContext(ctx, `
		SELECT MAX(position) FROM playlist_songs WHERE playlist_id = ?
	`, playlistID).Scan(&maxPos)
	if err != nil {
		return 0, false, err
	}
	return int(maxPos.Int64), maxPos.Valid, nil
}

func memberSet(ctx context.Context, q querier, playlistID int64) (map[int64]bool, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT song_id FROM playlist_songs WHERE playlist_id = ?
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}

func requirePlaylist(ctx context.Context, q querier, playlistID int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, playlistID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("playlist %d: %w", playlistID, ErrNotFound)
	}
	return err
}

func cloneIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
