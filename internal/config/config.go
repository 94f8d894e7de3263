// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 5001
	DefaultLogLevel          = "INFO"
	DefaultVODDir            = "videos"
	DefaultStreamBufferSize  = 32 * 1024
	DefaultStreamContentType = "video/mp4"
	DefaultOwncastTimeout    = 10 * time.Second
	DefaultOwncastHLSPath    = "/hls/stream.m3u8"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// OwncastConfig configures the upstream Owncast server.
type OwncastConfig struct {
	url        string
	adminToken string
	hlsURL     string
	timeout    time.Duration
}

// NewOwncastConfig creates a new OwncastConfig with defaults.
func NewOwncastConfig() OwncastConfig {
	return OwncastConfig{
		timeout: DefaultOwncastTimeout,
	}
}

// URL returns the Owncast base URL.
func (o OwncastConfig) URL() string { return o.url }

// AdminToken returns the access token used for chat integration calls.
func (o OwncastConfig) AdminToken() string { return o.adminToken }

// HLSURL returns the public playlist URL, falling back to the Owncast
// default playlist path under URL.
func (o OwncastConfig) HLSURL() string {
	if o.hlsURL != "" {
		return o.hlsURL
	}
	if o.url == "" {
		return ""
	}
	return strings.TrimRight(o.url, "/") + DefaultOwncastHLSPath
}

// Timeout returns the upstream request timeout.
func (o OwncastConfig) Timeout() time.Duration { return o.timeout }

// IsConfigured returns true if an Owncast URL is set.
func (o OwncastConfig) IsConfigured() bool {
	return o.url != ""
}

// OwncastConfigOption is a functional option for OwncastConfig.
type OwncastConfigOption func(*OwncastConfig)

// WithOwncastURL sets the Owncast base URL.
func WithOwncastURL(url string) OwncastConfigOption {
	return func(o *OwncastConfig) { o.url = url }
}

// WithOwncastAdminToken sets the integration access token.
func WithOwncastAdminToken(token string) OwncastConfigOption {
	return func(o *OwncastConfig) { o.adminToken = token }
}

// WithOwncastHLSURL sets the public playlist URL.
func WithOwncastHLSURL(url string) OwncastConfigOption {
	return func(o *OwncastConfig) { o.hlsURL = url }
}

// WithOwncastTimeout sets the upstream request timeout.
func WithOwncastTimeout(d time.Duration) OwncastConfigOption {
	return func(o *OwncastConfig) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOwncastConfigWithOptions creates an OwncastConfig with options.
func NewOwncastConfigWithOptions(opts ...OwncastConfigOption) OwncastConfig {
	o := NewOwncastConfig()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// StreamConfig configures how video bytes are written to clients.
type StreamConfig struct {
	bufferSize  int
	rateLimit   int
	contentType string
}

// NewStreamConfig creates a new StreamConfig with defaults.
func NewStreamConfig() StreamConfig {
	return StreamConfig{
		bufferSize:  DefaultStreamBufferSize,
		contentType: DefaultStreamContentType,
	}
}

// BufferSize returns the chunk size used when copying bytes.
func (s StreamConfig) BufferSize() int { return s.bufferSize }

// RateLimit returns the per-stream limit in bytes per second. Zero means
// unlimited.
func (s StreamConfig) RateLimit() int { return s.rateLimit }

// ContentType returns the Content-Type sent with every stream.
func (s StreamConfig) ContentType() string { return s.contentType }

// WithBufferSize returns a new config with the specified chunk size.
func (s StreamConfig) WithBufferSize(n int) StreamConfig {
	if n > 0 {
		s.bufferSize = n
	}
	return s
}

// WithRateLimit returns a new config with the specified rate limit.
func (s StreamConfig) WithRateLimit(bytesPerSec int) StreamConfig {
	if bytesPerSec >= 0 {
		s.rateLimit = bytesPerSec
	}
	return s
}

// WithContentType returns a new config with the specified content type.
func (s StreamConfig) WithContentType(contentType string) StreamConfig {
	if contentType != "" {
		s.contentType = contentType
	}
	return s
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host        string
	port        int
	vodDir      string
	logLevel    string
	logFormat   LogFormat
	apiKeys     []string
	corsOrigins []string
	stream      StreamConfig
	owncast     OwncastConfig
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareVODDir creates the video directory if it does not exist and returns it.
func PrepareVODDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultVODDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create video directory: %w", err)
	}
	return dir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:        DefaultHost,
		port:        DefaultPort,
		vodDir:      DefaultVODDir,
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		apiKeys:     []string{},
		corsOrigins: []string{"*"},
		stream:      NewStreamConfig(),
		owncast:     NewOwncastConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// VODDir returns the video library directory.
func (c AppConfig) VODDir() string { return c.vodDir }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns a copy of the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// CORSOrigins returns a copy of the allowed CORS origins.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// Stream returns the streaming configuration.
func (c AppConfig) Stream() StreamConfig { return c.stream }

// Owncast returns the Owncast configuration.
func (c AppConfig) Owncast() OwncastConfig { return c.owncast }

// EnsureVODDir creates the video directory if it doesn't exist.
func (c AppConfig) EnsureVODDir() error {
	return os.MkdirAll(c.vodDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithVODDir sets the video library directory.
func WithVODDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.vodDir = dir }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		if len(origins) == 0 {
			return
		}
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithStreamConfig sets the streaming config.
func WithStreamConfig(s StreamConfig) AppConfigOption {
	return func(c *AppConfig) { c.stream = s }
}

// WithOwncastConfig sets the Owncast config.
func WithOwncastConfig(o OwncastConfig) AppConfigOption {
	return func(c *AppConfig) { c.owncast = o }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
// This copies all fields from the receiver and then applies the options,
// making it safe to use when adding new fields to AppConfig.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values like API keys are masked or shown as counts.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("vod_dir", c.vodDir),
		slog.String("log_level", c.logLevel),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.String("cors_origins", strings.Join(c.corsOrigins, ",")),
		slog.Int("stream_buffer_size", c.stream.BufferSize()),
		slog.Int("stream_rate_limit", c.stream.RateLimit()),
		slog.String("stream_content_type", c.stream.ContentType()),
		slog.String("owncast_url", c.owncastURL()),
		slog.String("owncast_admin_token", c.MaskedOwncastToken()),
		slog.Duration("owncast_timeout", c.owncast.Timeout()),
	}
}

// MaskedOwncastToken returns the admin token in a form safe to print.
func (c AppConfig) MaskedOwncastToken() string {
	token := c.owncast.AdminToken()
	if token == "" {
		return "(not configured)"
	}
	if len(token) <= 4 {
		return "***"
	}
	return token[:4] + "***"
}

func (c AppConfig) owncastURL() string {
	if !c.owncast.IsConfigured() {
		return "(not configured)"
	}
	return c.owncast.URL()
}

// ParseList parses a comma-separated string, dropping empty entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	return ParseList(s)
}
