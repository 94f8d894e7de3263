// Package vodcast provides a library for serving a directory of recorded
// videos over HTTP byte ranges and proxying an Owncast live broadcast.
//
// Basic usage:
//
//	client, err := vodcast.New(
//	    vodcast.WithVODDir("videos"),
//	    vodcast.WithOwncast("http://localhost:8080", os.Getenv("OWNCAST_ADMIN_TOKEN")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// List the library
//	videos, err := client.Videos.List(ctx)
//
//	// Serve one file honoring the Range header
//	stream, err := client.Videos.Stream(ctx, "intro.mp4")
//	outcome := byterange.Resolve(stream.Size(), r.Header.Get("Range"))
//	_, err = client.Streams.Respond(w, r, outcome, stream)
//
//	// Check whether the broadcast is online
//	info := client.Live.Info(ctx)
package vodcast

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/helixml/vodcast/application/service"
	"github.com/helixml/vodcast/infrastructure/owncast"
	"github.com/helixml/vodcast/infrastructure/storage"
	"github.com/helixml/vodcast/infrastructure/streaming"
	"github.com/helixml/vodcast/internal/config"
)

// Client is the main entry point for the vodcast library.
//
// Access resources via struct fields:
//
//	client.Videos.List(ctx)
//	client.Streams.Respond(w, r, outcome, stream)
//	client.Live.Status(ctx)
type Client struct {
	Videos  *service.Library
	Live    *service.Live
	Streams *streaming.Responder

	store   *storage.FileSystemStore
	owncast *owncast.Client
	closers []io.Closer

	logger  *slog.Logger
	vodDir  string
	apiKeys []string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	vodDir := cfg.vodDir
	if cfg.createVODDir {
		dir, err := config.PrepareVODDir(vodDir)
		if err != nil {
			return nil, fmt.Errorf("prepare vod dir: %w", err)
		}
		vodDir = dir
	} else if _, err := os.Stat(vodDir); err != nil {
		return nil, fmt.Errorf("stat vod dir: %w", err)
	}

	store, err := storage.NewFileSystemStore(vodDir, logger.With(slog.String("component", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open video store: %w", err)
	}

	library := service.NewLibrary(store,
		service.WithContentType(cfg.contentType),
		service.WithLibraryLogger(logger),
	)

	responder := streaming.NewResponder(
		streaming.WithBufferSize(cfg.bufferSize),
		streaming.WithRateLimit(cfg.rateLimit),
		streaming.WithLogger(logger.With(slog.String("component", "streaming"))),
	)

	owncastCfg := config.NewOwncastConfigWithOptions(
		config.WithOwncastURL(cfg.owncastURL),
		config.WithOwncastAdminToken(cfg.owncastToken),
		config.WithOwncastHLSURL(cfg.owncastHLSURL),
		config.WithOwncastTimeout(cfg.owncastTimeout),
	)

	upstream := owncast.NewClient(owncastCfg.URL(),
		owncast.WithAdminToken(owncastCfg.AdminToken()),
		owncast.WithTimeout(owncastCfg.Timeout()),
		owncast.WithTransport(cfg.owncastTransport),
		owncast.WithLogger(logger.With(slog.String("component", "owncast"))),
	)
	if !owncastCfg.IsConfigured() {
		logger.Warn("owncast url not configured, live endpoints will fail")
	}

	c := &Client{
		Videos:  library,
		Live:    service.NewLive(upstream, owncastCfg.HLSURL(), logger),
		Streams: responder,
		store:   store,
		owncast: upstream,
		closers: []io.Closer{store},
		logger:  logger,
		vodDir:  vodDir,
		apiKeys: cfg.apiKeys,
	}

	logger.Info("vodcast client created",
		slog.String("vod_dir", vodDir),
		slog.String("owncast_url", owncastCfg.URL()),
		slog.Int("buffer_size", responder.BufferSize()),
		slog.Int64("rate_limit", responder.RateLimit()),
	)

	return c, nil
}

// Close releases the library directory handle. It returns ErrClientClosed
// when called more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	c.logger.Info("vodcast client closed")
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// VODDir returns the directory the library serves.
func (c *Client) VODDir() string {
	return c.vodDir
}

// OwncastURL returns the configured Owncast base URL, or "" if unset.
func (c *Client) OwncastURL() string {
	return c.owncast.BaseURL()
}

// APIKeys returns the keys guarding mutating HTTP routes.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
