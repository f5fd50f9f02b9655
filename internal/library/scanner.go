package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/sirupsen/logrus"
)

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	Added     int
	Updated   int
	Unchanged int
	Failed    int
	Removed   int
}

// Scanner indexes a directory tree into a Library.
type Scanner struct {
	lib *Library
	log logrus.FieldLogger
}

// NewScanner creates a scanner writing into lib.
func NewScanner(lib *Library, log logrus.FieldLogger) *Scanner {
	return &Scanner{lib: lib, log: log}
}

// Scan walks root, reads tags of new or modified files and upserts them.
// Songs whose files disappeared are removed afterwards.
func (s *Scanner) Scan(ctx context.Context, root string) (ScanStats, error) {
	var stats ScanStats

	known, err := s.lib.mtimes(ctx)
	if err != nil {
		return stats, err
	}

	for _, f := range discoverFiles(root) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		prev, exists := known[f.path]
		if exists && prev == f.mtime {
			stats.Unchanged++
			continue
		}

		song, err := readSong(f.path)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"path":  f.path,
				"error": err,
			}).Warn("skipping unreadable file")
			stats.Failed++
			continue
		}

		if _, err := s.lib.Upsert(ctx, song, f.mtime); err != nil {
			return stats, err
		}
		if exists {
			stats.Updated++
		} else {
			stats.Added++
		}
	}

	removed, err := s.lib.RemoveMissing(ctx)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	s.log.WithFields(logrus.Fields{
		"root":      root,
		"added":     stats.Added,
		"updated":   stats.Updated,
		"unchanged": stats.Unchanged,
		"failed":    stats.Failed,
		"removed":   stats.Removed,
	}).Info("library scan complete")

	return stats, nil
}

// readSong builds a Song from the file's tags, falling back to the file
// name when the file carries no usable metadata.
func readSong(path string) (Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return Song{}, err
	}
	defer f.Close()

	song := Song{
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	md, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged WAV files are common; index them by name.
		if errors.Is(err, tag.ErrNoTagsFound) {
			return song, nil
		}
		return Song{}, err
	}

	if title := strings.TrimSpace(md.Title()); title != "" {
		song.Title = title
	}
	song.Artist = strings.TrimSpace(md.Artist())
	song.Album = strings.TrimSpace(md.Album())
	if pic := md.Picture(); pic != nil {
		song.Artwork = pic.Data
	}
	return song, nil
}
