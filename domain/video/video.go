// Package video provides domain types for the on-disk video library.
package video

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ErrNotFound indicates the requested video does not exist in the library.
var ErrNotFound = errors.New("video not found")

// extensions lists the file extensions recognised as videos.
var extensions = []string{".mp4", ".mkv", ".avi", ".mov"}

// Extensions returns the recognised video file extensions.
func Extensions() []string {
	return slices.Clone(extensions)
}

// IsVideoFile reports whether name carries a recognised video extension.
// Matching is case-insensitive.
func IsVideoFile(name string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(name)))
}

// Video is a single streamable file in the library. Immutable value object.
type Video struct {
	name    string
	size    int64
	modTime time.Time
}

// NewVideo creates a Video from its file name, byte length and modification time.
func NewVideo(name string, size int64, modTime time.Time) Video {
	return Video{
		name:    name,
		size:    size,
		modTime: modTime,
	}
}

// Name returns the file name, unique within the library.
func (v Video) Name() string { return v.name }

// Size returns the byte length observed when the video was looked up.
func (v Video) Size() int64 { return v.size }

// ModTime returns the last modification time.
func (v Video) ModTime() time.Time { return v.modTime }

// Title returns the file name without its extension.
func (v Video) Title() string {
	return strings.TrimSuffix(v.name, filepath.Ext(v.name))
}
