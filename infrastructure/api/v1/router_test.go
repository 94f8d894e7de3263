package v1_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/vodcast"
	v1 "github.com/helixml/vodcast/infrastructure/api/v1"
	"github.com/helixml/vodcast/infrastructure/api/v1/dto"
)

// fakeOwncast is an httptest stand-in for the Owncast API.
type fakeOwncast struct {
	server     *httptest.Server
	statusCode atomic.Int32
	chatCode   atomic.Int32
	chatAuth   atomic.Value
	chatBody   atomic.Value
}

func newFakeOwncast(t *testing.T) *fakeOwncast {
	t.Helper()

	f := &fakeOwncast{}
	f.statusCode.Store(http.StatusOK)
	f.chatCode.Store(http.StatusOK)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			code := int(f.statusCode.Load())
			if code != http.StatusOK {
				w.WriteHeader(code)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"online":true,"viewerCount":7,"lastConnectTime":"2026-10-18T12:00:00Z"}`)
		case "/api/chat":
			f.chatAuth.Store(r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			f.chatBody.Store(string(body))
			w.WriteHeader(int(f.chatCode.Load()))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

// newTestClient creates a client over a temporary library holding a
// 1000-byte video.
func newTestClient(t *testing.T, opts ...vodcast.Option) (*vodcast.Client, []byte) {
	t.Helper()

	dir := t.TempDir()
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "My Trip.MOV"), []byte("trip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755))

	opts = append([]vodcast.Option{vodcast.WithVODDir(dir), vodcast.WithBufferSize(128)}, opts...)
	client, err := vodcast.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, data
}

func newVodsHandler(client *vodcast.Client) http.Handler {
	vods := v1.NewVodsRouter(client)
	router := chi.NewRouter()
	router.Mount("/vods/stream", vods.StreamRoutes())
	router.Mount("/vods", vods.Routes())
	return router
}

func TestVodsRouter_List(t *testing.T) {
	client, _ := newTestClient(t)
	handler := newVodsHandler(client)

	req := httptest.NewRequest(http.MethodGet, "/vods", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response []dto.VODResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 2)

	assert.Equal(t, dto.VODResponse{ID: "My Trip.MOV", Title: "My Trip", URL: "/api/v1/vods/stream/My%20Trip.MOV"}, response[0])
	assert.Equal(t, dto.VODResponse{ID: "clip.mp4", Title: "clip", URL: "/api/v1/vods/stream/clip.mp4"}, response[1])
}

func TestVodsRouter_List_EmptyLibrary(t *testing.T) {
	client, err := vodcast.New(vodcast.WithVODDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	req := httptest.NewRequest(http.MethodGet, "/vods", nil)
	w := httptest.NewRecorder()
	newVodsHandler(client).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestVodsRouter_List_Failure(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Close())

	req := httptest.NewRequest(http.MethodGet, "/vods", nil)
	w := httptest.NewRecorder()
	newVodsHandler(client).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve video list."}`, w.Body.String())
}

func TestVodsRouter_Stream(t *testing.T) {
	client, data := newTestClient(t)
	handler := newVodsHandler(client)

	tests := []struct {
		name         string
		method       string
		rangeHeader  string
		wantStatus   int
		wantRange    string
		wantLength   string
		wantBody     []byte
		wantTextBody string
	}{
		{
			name:       "no range sends whole file",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantLength: "1000",
			wantBody:   data,
		},
		{
			name:        "middle window",
			method:      http.MethodGet,
			rangeHeader: "bytes=200-499",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 200-499/1000",
			wantLength:  "300",
			wantBody:    data[200:500],
		},
		{
			name:        "end clamped to length",
			method:      http.MethodGet,
			rangeHeader: "bytes=900-1500",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 900-999/1000",
			wantLength:  "100",
			wantBody:    data[900:],
		},
		{
			name:        "suffix",
			method:      http.MethodGet,
			rangeHeader: "bytes=-10",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 990-999/1000",
			wantLength:  "10",
			wantBody:    data[990:],
		},
		{
			name:        "adjacent ranges combined",
			method:      http.MethodGet,
			rangeHeader: "bytes=0-9,10-19",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 0-19/1000",
			wantLength:  "20",
			wantBody:    data[:20],
		},
		{
			name:         "start beyond end",
			method:       http.MethodGet,
			rangeHeader:  "bytes=1000-",
			wantStatus:   http.StatusRequestedRangeNotSatisfiable,
			wantTextBody: "Requested Range Not Satisfiable",
		},
		{
			name:         "malformed",
			method:       http.MethodGet,
			rangeHeader:  "bytes=abc",
			wantStatus:   http.StatusRequestedRangeNotSatisfiable,
			wantTextBody: "Requested Range Not Satisfiable",
		},
		{
			name:         "disjoint ranges",
			method:       http.MethodGet,
			rangeHeader:  "bytes=0-9,500-509",
			wantStatus:   http.StatusRequestedRangeNotSatisfiable,
			wantTextBody: "Requested Range Not Satisfiable",
		},
		{
			name:        "head reports range without body",
			method:      http.MethodHead,
			rangeHeader: "bytes=200-499",
			wantStatus:  http.StatusPartialContent,
			wantRange:   "bytes 200-499/1000",
			wantLength:  "300",
			wantBody:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/vods/stream/clip.mp4", nil)
			if tt.rangeHeader != "" {
				req.Header.Set("Range", tt.rangeHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantTextBody != "" {
				assert.Equal(t, tt.wantTextBody, w.Body.String())
				assert.Empty(t, w.Header().Get("Content-Range"))
				return
			}

			assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
			assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantLength, w.Header().Get("Content-Length"))
			assert.Equal(t, tt.wantRange, w.Header().Get("Content-Range"))
			assert.Equal(t, tt.wantBody, w.Body.Bytes())
		})
	}
}

func TestVodsRouter_Stream_EscapedName(t *testing.T) {
	client, _ := newTestClient(t)
	handler := newVodsHandler(client)

	req := httptest.NewRequest(http.MethodGet, "/vods/stream/My%20Trip.MOV", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trip", w.Body.String())
}

func TestVodsRouter_Stream_NotFound(t *testing.T) {
	client, _ := newTestClient(t)
	handler := newVodsHandler(client)

	paths := []string{
		"/vods/stream/missing.mp4",
		"/vods/stream/nested.mp4",
		"/vods/stream/..%2Fclip.mp4",
		"/vods/stream/sub%2Fclip.mp4",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			// A range is present but must never be evaluated.
			req.Header.Set("Range", "bytes=abc")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "File not found", strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestVodsRouter_Stream_RateLimited(t *testing.T) {
	client, data := newTestClient(t, vodcast.WithRateLimit(1<<20))
	handler := newVodsHandler(client)

	req := httptest.NewRequest(http.MethodGet, "/vods/stream/clip.mp4", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())
}

func TestLiveRouter_Info(t *testing.T) {
	owncast := newFakeOwncast(t)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"hlsUrl":"%s/hls/stream.m3u8","isLive":true}`, owncast.server.URL), w.Body.String())
}

func TestLiveRouter_Info_UpstreamDown(t *testing.T) {
	owncast := newFakeOwncast(t)
	owncast.statusCode.Store(http.StatusBadGateway)
	client, _ := newTestClient(t,
		vodcast.WithOwncast(owncast.server.URL, "token"),
		vodcast.WithOwncastHLSURL("https://cdn.example.com/live.m3u8"),
	)
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hlsUrl":"https://cdn.example.com/live.m3u8","isLive":false}`, w.Body.String())
}

func TestLiveRouter_Status(t *testing.T) {
	owncast := newFakeOwncast(t)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isLive":true,"viewers":7,"lastConnected":"2026-10-18T12:00:00Z"}`, w.Body.String())
}

func TestLiveRouter_Status_UpstreamFailure(t *testing.T) {
	owncast := newFakeOwncast(t)
	owncast.statusCode.Store(http.StatusInternalServerError)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch live status from Owncast"}`, w.Body.String())
}

func TestLiveRouter_Chat(t *testing.T) {
	owncast := newFakeOwncast(t)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello","displayName":"viewer"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"sent":true}`, w.Body.String())
	assert.Equal(t, "Bearer token", owncast.chatAuth.Load())
	assert.JSONEq(t, `{"body":"hello","displayName":"viewer"}`, owncast.chatBody.Load().(string))
}

func TestLiveRouter_Chat_NotSent(t *testing.T) {
	owncast := newFakeOwncast(t)
	owncast.chatCode.Store(http.StatusNoContent)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello","displayName":"viewer"}`))
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"sent":false}`, w.Body.String())
}

func TestLiveRouter_Chat_Validation(t *testing.T) {
	owncast := newFakeOwncast(t)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "token"))
	routes := v1.NewLiveRouter(client).Routes()

	bodies := []string{
		`{"message":"","displayName":"viewer"}`,
		`{"message":"hello"}`,
		`{}`,
		`not json`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
			w := httptest.NewRecorder()
			routes.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Message and displayName are required"}`, w.Body.String())
		})
	}
	assert.Nil(t, owncast.chatBody.Load(), "invalid messages must not reach the upstream")
}

func TestLiveRouter_Chat_UpstreamFailure(t *testing.T) {
	owncast := newFakeOwncast(t)
	owncast.chatCode.Store(http.StatusUnauthorized)
	client, _ := newTestClient(t, vodcast.WithOwncast(owncast.server.URL, "wrong"))
	routes := v1.NewLiveRouter(client).Routes()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello","displayName":"viewer"}`))
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to send message to stream chat."}`, w.Body.String())
}
