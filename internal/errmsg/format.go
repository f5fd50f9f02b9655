// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan  Op = "scan library"
	OpLibraryLoad  Op = "load library"
	OpLibraryWatch Op = "watch music folder"

	// Playlist operations
	OpPlaylistCreate  Op = "create playlist"
	OpPlaylistRename  Op = "rename playlist"
	OpPlaylistDelete  Op = "delete playlist"
	OpPlaylistLoad    Op = "load playlist"
	OpPlaylistAddSong Op = "add song to playlist"
	OpPlaylistRemove  Op = "remove song from playlist"
	OpPlaylistMove    Op = "move playlist song"

	// Queue operations
	OpQueueRestore Op = "restore play queue"
	OpQueueSave    Op = "save play queue"
	OpQueueSet     Op = "load songs into queue"

	// Playback operations
	OpPlaybackConnect Op = "connect to audio output"
	OpPlaybackStart   Op = "play song"

	// Equalizer
	OpEqualizerSave Op = "save equalizer settings"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpDatabase   Op = "open database"
	OpMediaKeys  Op = "register media keys"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// ForEvent maps a playback error event operation to an Op.
func ForEvent(operation string) Op {
	switch operation {
	case "connect":
		return OpPlaybackConnect
	case "save":
		return OpQueueSave
	default:
		return OpPlaybackStart
	}
}
