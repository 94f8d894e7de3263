package vodcast

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/helixml/vodcast/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	vodDir           string
	createVODDir     bool
	contentType      string
	bufferSize       int
	rateLimit        int64
	owncastURL       string
	owncastToken     string
	owncastHLSURL    string
	owncastTimeout   time.Duration
	owncastTransport http.RoundTripper
	logger           *slog.Logger
	apiKeys          []string
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		vodDir:         config.DefaultVODDir,
		createVODDir:   true,
		contentType:    config.DefaultStreamContentType,
		bufferSize:     config.DefaultStreamBufferSize,
		owncastTimeout: config.DefaultOwncastTimeout,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithVODDir sets the directory holding the video library.
func WithVODDir(dir string) Option {
	return func(c *clientConfig) {
		if dir != "" {
			c.vodDir = dir
		}
	}
}

// WithoutCreateVODDir makes New fail instead of creating a missing library
// directory.
func WithoutCreateVODDir() Option {
	return func(c *clientConfig) { c.createVODDir = false }
}

// WithContentType sets the Content-Type advertised for every stream.
func WithContentType(contentType string) Option {
	return func(c *clientConfig) {
		if contentType != "" {
			c.contentType = contentType
		}
	}
}

// WithBufferSize sets the chunk size used when streaming.
// Values <= 0 are ignored.
func WithBufferSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithRateLimit caps each stream at bytesPerSec. Zero means unlimited.
func WithRateLimit(bytesPerSec int64) Option {
	return func(c *clientConfig) {
		if bytesPerSec >= 0 {
			c.rateLimit = bytesPerSec
		}
	}
}

// WithOwncast sets the Owncast base URL and the access token used to relay
// chat messages.
func WithOwncast(url, adminToken string) Option {
	return func(c *clientConfig) {
		c.owncastURL = url
		c.owncastToken = adminToken
	}
}

// WithOwncastHLSURL overrides the playlist URL advertised by Live.Info.
func WithOwncastHLSURL(url string) Option {
	return func(c *clientConfig) { c.owncastHLSURL = url }
}

// WithOwncastTimeout bounds every Owncast call.
func WithOwncastTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.owncastTimeout = d
		}
	}
}

// WithOwncastTransport sets the round tripper used for Owncast calls.
func WithOwncastTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) { c.owncastTransport = rt }
}

// WithOwncastConfig applies an OwncastConfig loaded from the environment.
func WithOwncastConfig(o config.OwncastConfig) Option {
	return func(c *clientConfig) {
		c.owncastURL = o.URL()
		c.owncastToken = o.AdminToken()
		c.owncastHLSURL = o.HLSURL()
		if o.Timeout() > 0 {
			c.owncastTimeout = o.Timeout()
		}
	}
}

// WithStreamConfig applies a StreamConfig loaded from the environment.
func WithStreamConfig(s config.StreamConfig) Option {
	return func(c *clientConfig) {
		WithBufferSize(s.BufferSize())(c)
		WithRateLimit(int64(s.RateLimit()))(c)
		WithContentType(s.ContentType())(c)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithAPIKeys sets the API keys guarding mutating HTTP routes.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = append(c.apiKeys, keys...)
	}
}
