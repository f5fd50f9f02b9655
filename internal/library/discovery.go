package library

import (
	"os"
	"path/filepath"
	"strings"
)

// musicExtensions lists the file types the player adapter can decode.
var musicExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
}

// IsMusicFile reports whether path has a playable audio extension.
func IsMusicFile(path string) bool {
	return musicExtensions[strings.ToLower(filepath.Ext(path))]
}

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path  string
	mtime int64
}

// discoverFiles walks root and returns all music files found.
func discoverFiles(root string) []fileInfo {
	var files []fileInfo
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		// Unreadable entries are skipped so one bad folder does not stop the scan.
		if walkErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.IsDir() || !IsMusicFile(path) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}

		files = append(files, fileInfo{path: path, mtime: info.ModTime().Unix()})
		return nil
	})
	return files
}
