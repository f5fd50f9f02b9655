package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const watchDebounce = 2 * time.Second

// Watch rescans root whenever music files below it change, until ctx is
// done. Bursts of events are coalesced into one scan. onScan is called
// after every rescan.
func (s *Scanner) Watch(ctx context.Context, root string, onScan func(ScanStats, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirs(w, root); err != nil {
		return err
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New folders need their own watch.
				_ = addDirs(w, ev.Name)
			}
			if IsMusicFile(ev.Name) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("library watcher error")

		case <-timer.C:
			stats, err := s.Scan(ctx, root)
			if onScan != nil {
				onScan(stats, err)
			}
		}
	}
}

// addDirs registers root and every directory below it.
func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable folders
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			logrus.WithField("path", path).WithError(err).Debug("cannot watch folder")
		}
		return nil
	})
}
