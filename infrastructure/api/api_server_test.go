package api_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/vodcast"
	"github.com/helixml/vodcast/infrastructure/api"
)

func newTestClient(t *testing.T, opts ...vodcast.Option) *vodcast.Client {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte(strings.Repeat("x", 1000)), 0o644))

	owncast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"online":false,"viewerCount":0}`))
		case "/api/chat":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(owncast.Close)

	opts = append([]vodcast.Option{
		vodcast.WithVODDir(dir),
		vodcast.WithOwncast(owncast.URL, "token"),
	}, opts...)
	client, err := vodcast.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAPIServer_ReadEndpointsOpen_WriteEndpointsProtected(t *testing.T) {
	client := newTestClient(t, vodcast.WithAPIKeys("test-secret-key"))
	apiServer := api.NewAPIServer(client)
	router := apiServer.Router()

	apiServer.MountRoutes()

	docsRouter := apiServer.DocsRouter("/docs/openapi.json")
	router.Mount("/docs", docsRouter.Routes())

	handler := router

	t.Run("GET /docs returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET /docs/openapi.json rewrites server URL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
		req.Host = "vods.example.com"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"url": "http://vods.example.com/api/v1"`)
	})

	t.Run("GET /docs/openapi.json honours forwarded headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		req.Header.Set("X-Forwarded-Host", "cdn.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"url": "https://cdn.example.com/api/v1"`)
		assert.NotContains(t, w.Body.String(), "localhost:8080")
	})

	t.Run("GET /api/v1/vods returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vods", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET /api/v1/vods/stream returns 206 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vods/stream/clip.mp4", nil)
		req.Header.Set("Range", "bytes=0-99")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "100", w.Header().Get("Content-Length"))
	})

	t.Run("GET /api/v1/live/status returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/live/status", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("POST /api/v1/live/chat without key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/live/chat", strings.NewReader(`{"message":"hi","displayName":"me"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "body: %s", w.Body.String())
	})

	t.Run("POST /api/v1/live/chat with valid key passes auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/live/chat", strings.NewReader(`{"message":"hi","displayName":"me"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-KEY", "test-secret-key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"sent":true}`, w.Body.String())
	})
}

func TestAPIServer_ChatOpenWithoutKeys(t *testing.T) {
	client := newTestClient(t)
	handler := api.NewAPIServer(client).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/live/chat", strings.NewReader(`{"message":"hi","displayName":"me"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIServer_CORS(t *testing.T) {
	client := newTestClient(t)
	handler := api.NewAPIServer(client, api.WithCORSOrigins("https://player.example.com")).Handler()

	t.Run("preflight allows Range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/vods/stream/clip.mp4", nil)
		req.Header.Set("Origin", "https://player.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Range")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://player.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "range")
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vods", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("stream exposes Content-Range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vods/stream/clip.mp4", nil)
		req.Header.Set("Origin", "https://player.example.com")
		req.Header.Set("Range", "bytes=0-9")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusPartialContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Range")
	})
}

func TestAPIServer_StreamNotBoundByRequestTimeout(t *testing.T) {
	client := newTestClient(t, vodcast.WithBufferSize(100), vodcast.WithRateLimit(2000))
	handler := api.NewAPIServer(client, api.WithRequestTimeout(50*time.Millisecond)).Handler()

	// 1000 bytes at 2000 B/s with a 100-byte burst takes ~450ms.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vods/stream/clip.mp4", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1000, w.Body.Len())
}
