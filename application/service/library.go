package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"

	"github.com/helixml/vodcast/domain/video"
)

// DefaultStreamPrefix is the route prefix under which videos are streamed.
const DefaultStreamPrefix = "/api/v1/vods/stream/"

// Stream is a single video ready to be served. It satisfies the byte source
// contract of the streaming responder.
type Stream struct {
	video       video.Video
	contentType string
	store       video.Store
}

// Video returns the metadata observed when the stream was resolved.
func (s Stream) Video() video.Video { return s.video }

// Size returns the length observed when the stream was resolved.
func (s Stream) Size() int64 { return s.video.Size() }

// ContentType returns the Content-Type advertised for the stream.
func (s Stream) ContentType() string { return s.contentType }

// Open acquires a fresh read handle for the video.
func (s Stream) Open(ctx context.Context) (io.ReadSeekCloser, error) {
	return s.store.Open(ctx, s.video.Name())
}

// Library lists and resolves videos held in a video.Store.
type Library struct {
	store        video.Store
	contentType  string
	streamPrefix string
	logger       *slog.Logger
}

// LibraryOption is a functional option for Library.
type LibraryOption func(*Library)

// WithContentType sets the Content-Type advertised for every stream.
func WithContentType(contentType string) LibraryOption {
	return func(l *Library) {
		if contentType != "" {
			l.contentType = contentType
		}
	}
}

// WithStreamPrefix sets the path prefix used to build stream URLs.
func WithStreamPrefix(prefix string) LibraryOption {
	return func(l *Library) {
		if prefix != "" {
			l.streamPrefix = prefix
		}
	}
}

// WithLibraryLogger sets the logger.
func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLibrary creates a new Library service.
func NewLibrary(store video.Store, opts ...LibraryOption) *Library {
	l := &Library{
		store:        store,
		contentType:  "video/mp4",
		streamPrefix: DefaultStreamPrefix,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns every video in the library, sorted by name.
func (l *Library) List(ctx context.Context) ([]video.Video, error) {
	videos, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Name() < videos[j].Name()
	})
	return videos, nil
}

// Stream resolves name to a Stream. Unknown names return an error wrapping
// video.ErrNotFound.
func (l *Library) Stream(ctx context.Context, name string) (Stream, error) {
	v, err := l.store.Stat(ctx, name)
	if err != nil {
		return Stream{}, fmt.Errorf("resolve video %q: %w", name, err)
	}
	return Stream{
		video:       v,
		contentType: l.contentType,
		store:       l.store,
	}, nil
}

// StreamURL returns the path at which the named video is streamed.
func (l *Library) StreamURL(name string) string {
	return l.streamPrefix + url.PathEscape(name)
}

// ContentType returns the Content-Type advertised for streams.
func (l *Library) ContentType() string { return l.contentType }
