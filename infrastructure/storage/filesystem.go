// Package storage provides the local filesystem backing for the video library.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/helixml/vodcast/domain/video"
)

// FileSystemStore implements video.Store over a single directory.
// All access goes through an os.Root so names cannot escape the directory.
type FileSystemStore struct {
	dir    string
	root   *os.Root
	logger *slog.Logger
}

var _ video.Store = (*FileSystemStore)(nil)

// NewFileSystemStore opens dir as the library root.
func NewFileSystemStore(dir string, logger *slog.Logger) (*FileSystemStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open library root %s: %w", dir, err)
	}
	return &FileSystemStore{
		dir:    dir,
		root:   root,
		logger: logger,
	}, nil
}

// Dir returns the library directory.
func (s *FileSystemStore) Dir() string { return s.dir }

// Close releases the library root.
func (s *FileSystemStore) Close() error {
	return s.root.Close()
}

// List returns the videos in the library directory, sorted by name.
// Subdirectories and files without a video extension are skipped.
func (s *FileSystemStore) List(ctx context.Context) ([]video.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("read library directory: %w", err)
	}

	videos := make([]video.Video, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !video.IsVideoFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			s.logger.Debug("skipping video", slog.String("name", entry.Name()), slog.Any("error", err))
			continue
		}
		videos = append(videos, video.NewVideo(entry.Name(), info.Size(), info.ModTime()))
	}
	return videos, nil
}

// Stat returns the current size and modification time of a video.
func (s *FileSystemStore) Stat(ctx context.Context, name string) (video.Video, error) {
	if err := ctx.Err(); err != nil {
		return video.Video{}, err
	}
	if !validName(name) {
		return video.Video{}, fmt.Errorf("%s: %w", name, video.ErrNotFound)
	}

	info, err := s.root.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return video.Video{}, fmt.Errorf("%s: %w", name, video.ErrNotFound)
		}
		return video.Video{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return video.Video{}, fmt.Errorf("%s: %w", name, video.ErrNotFound)
	}
	return video.NewVideo(name, info.Size(), info.ModTime()), nil
}

// Open returns a read handle for a video. The caller must close it.
func (s *FileSystemStore) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, fmt.Errorf("%s: %w", name, video.ErrNotFound)
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, video.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// validName reports whether name is a single path element.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
