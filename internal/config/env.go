// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., OWNCAST_ADMIN_TOKEN).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 5001)
	Port int `envconfig:"PORT" default:"5001"`

	// VODDir is the directory holding the video library.
	// Env: VOD_DIR (default: videos)
	VODDir string `envconfig:"VOD_DIR" default:"videos"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// When set, mutating routes require one of them.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Stream configures byte delivery.
	Stream StreamEnv `envconfig:"STREAM"`

	// Owncast configures the live stream proxy.
	Owncast OwncastEnv `envconfig:"OWNCAST"`
}

// StreamEnv holds streaming configuration.
type StreamEnv struct {
	// BufferSize is the chunk size in bytes.
	// Env: STREAM_BUFFER_SIZE (default: 32768)
	BufferSize int `envconfig:"BUFFER_SIZE" default:"32768"`

	// RateLimit caps each stream in bytes per second. Zero disables it.
	// Env: STREAM_RATE_LIMIT (default: 0)
	RateLimit int `envconfig:"RATE_LIMIT" default:"0"`

	// ContentType is sent with every stream response.
	// Env: STREAM_CONTENT_TYPE (default: video/mp4)
	ContentType string `envconfig:"CONTENT_TYPE" default:"video/mp4"`
}

// OwncastEnv holds Owncast configuration.
type OwncastEnv struct {
	// URL is the Owncast base URL.
	// Env: OWNCAST_URL
	URL string `envconfig:"URL"`

	// AdminToken is the integration access token used for chat.
	// Env: OWNCAST_ADMIN_TOKEN
	AdminToken string `envconfig:"ADMIN_TOKEN"`

	// HLSURL is the public playlist URL.
	// Env: OWNCAST_HLS_URL
	// Default: {OWNCAST_URL}/hls/stream.m3u8
	HLSURL string `envconfig:"HLS_URL"`

	// Timeout is the upstream request timeout in seconds.
	// Env: OWNCAST_TIMEOUT (default: 10)
	Timeout float64 `envconfig:"TIMEOUT" default:"10"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "VODCAST" would require VODCAST_VOD_DIR instead of VOD_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace and lower-cases enumerated values.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.VODDir = strings.TrimSpace(e.VODDir)
	e.LogLevel = strings.ToUpper(strings.TrimSpace(e.LogLevel))
	e.LogFormat = strings.ToLower(strings.TrimSpace(e.LogFormat))
	e.Stream.ContentType = strings.TrimSpace(e.Stream.ContentType)
	e.Owncast.URL = strings.TrimRight(strings.TrimSpace(e.Owncast.URL), "/")
	e.Owncast.HLSURL = strings.TrimSpace(e.Owncast.HLSURL)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	// Apply overrides from environment
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.VODDir != "" {
		cfg = applyOption(cfg, WithVODDir(e.VODDir))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.CORSAllowedOrigins != "" {
		cfg = applyOption(cfg, WithCORSOrigins(ParseList(e.CORSAllowedOrigins)))
	}

	cfg = applyOption(cfg, WithStreamConfig(e.Stream.ToStreamConfig()))
	cfg = applyOption(cfg, WithOwncastConfig(e.Owncast.ToOwncastConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToStreamConfig converts StreamEnv to StreamConfig.
func (s StreamEnv) ToStreamConfig() StreamConfig {
	return NewStreamConfig().
		WithBufferSize(s.BufferSize).
		WithRateLimit(s.RateLimit).
		WithContentType(s.ContentType)
}

// IsConfigured returns true if an Owncast URL is set.
func (o OwncastEnv) IsConfigured() bool {
	return o.URL != ""
}

// ToOwncastConfig converts OwncastEnv to OwncastConfig.
func (o OwncastEnv) ToOwncastConfig() OwncastConfig {
	return NewOwncastConfigWithOptions(
		WithOwncastURL(o.URL),
		WithOwncastAdminToken(o.AdminToken),
		WithOwncastHLSURL(o.HLSURL),
		WithOwncastTimeout(time.Duration(o.Timeout*float64(time.Second))),
	)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
