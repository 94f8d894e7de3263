package video

import (
	"context"
	"io"
)

// Store provides read-only access to the video library.
type Store interface {
	// List returns every video in the library, sorted by name.
	List(ctx context.Context) ([]Video, error)

	// Stat returns the current metadata for a video.
	// Returns ErrNotFound if no such video exists.
	Stat(ctx context.Context, name string) (Video, error)

	// Open returns a read handle positioned at the start of the video.
	// The caller must close the handle.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)
}
