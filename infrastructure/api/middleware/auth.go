package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the request header carrying the API key.
const APIKeyHeader = "X-API-KEY"

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	apiKeys map[string]struct{}
	enabled bool
}

// NewAuthConfig creates a new AuthConfig with a single API key.
func NewAuthConfig(apiKey string) AuthConfig {
	return NewAuthConfigWithKeys([]string{apiKey})
}

// NewAuthConfigWithKeys creates a new AuthConfig with multiple API keys.
// Empty keys are ignored; with no keys left authentication is disabled.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return AuthConfig{enabled: false}
	}
	return AuthConfig{
		apiKeys: keys,
		enabled: true,
	}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return c.enabled }

// valid compares key against every configured key in constant time.
func (c AuthConfig) valid(key string) bool {
	ok := false
	for k := range c.apiKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			ok = true
		}
	}
	return ok
}

// authenticate returns nil when r carries a valid key.
func (c AuthConfig) authenticate(r *http.Request) error {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		return NewAuthenticationError(APIKeyHeader + " header is required")
	}
	if !c.valid(key) {
		return NewAuthenticationError("invalid API key")
	}
	return nil
}

// APIKey returns a middleware that requires X-API-KEY header authentication.
// If the config has no API keys set, the middleware passes all requests through.
func APIKey(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled {
				next.ServeHTTP(w, r)
				return
			}
			if err := config.authenticate(r); err != nil {
				WriteError(w, r, err, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIKeyAuth is a convenience function that creates auth middleware from a slice of API keys.
func APIKeyAuth(apiKeys []string) func(http.Handler) http.Handler {
	return APIKey(NewAuthConfigWithKeys(apiKeys))
}

// WriteProtect returns a middleware that lets safe methods (GET, HEAD,
// OPTIONS) through and requires a valid API key for everything else.
// If the config has no API keys set, the middleware passes all requests through.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled || safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if err := config.authenticate(r); err != nil {
				WriteError(w, r, err, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth is a convenience function that creates write-protection
// middleware from a slice of API keys.
func WriteProtectAuth(apiKeys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(apiKeys))
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
