package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWriteProtect(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		method string
		path   string
		key    string
		want   int
	}{
		{"stream read without key", []string{"secret"}, http.MethodGet, "/vods/stream/clip.mp4", "", http.StatusOK},
		{"stream probe without key", []string{"secret"}, http.MethodHead, "/vods/stream/clip.mp4", "", http.StatusOK},
		{"cors preflight without key", []string{"secret"}, http.MethodOptions, "/live/chat", "", http.StatusOK},
		{"chat without key", []string{"secret"}, http.MethodPost, "/live/chat", "", http.StatusUnauthorized},
		{"chat with wrong key", []string{"secret"}, http.MethodPost, "/live/chat", "wrong", http.StatusUnauthorized},
		{"chat with valid key", []string{"secret"}, http.MethodPost, "/live/chat", "secret", http.StatusOK},
		{"chat with second key", []string{"secret", "other"}, http.MethodPost, "/live/chat", "other", http.StatusOK},
		{"put without key", []string{"secret"}, http.MethodPut, "/live/chat", "", http.StatusUnauthorized},
		{"delete without key", []string{"secret"}, http.MethodDelete, "/live/chat", "", http.StatusUnauthorized},
		{"chat with auth disabled", nil, http.MethodPost, "/live/chat", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WriteProtectAuth(tt.keys)(okHandler())

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestWriteProtect_RejectionBodies(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", `{"error":"authentication failed: X-API-KEY header is required"}` + "\n"},
		{"wrong", `{"error":"authentication failed: invalid API key"}` + "\n"},
	}

	handler := WriteProtectAuth([]string{"secret"})(okHandler())
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/live/chat", nil)
		if tt.key != "" {
			req.Header.Set(APIKeyHeader, tt.key)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("key %q: Content-Type = %q, want application/json", tt.key, got)
		}
		if w.Body.String() != tt.want {
			t.Errorf("key %q: body = %q, want %q", tt.key, w.Body.String(), tt.want)
		}
	}
}

func TestAPIKey_GuardsReadsToo(t *testing.T) {
	handler := APIKeyAuth([]string{"secret", ""})(okHandler())

	for key, want := range map[string]int{"": http.StatusUnauthorized, "secret": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/vods", nil)
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != want {
			t.Errorf("key %q: status = %d, want %d", key, w.Code, want)
		}
	}
}

func TestNewAuthConfig_EmptyKeyDisables(t *testing.T) {
	if NewAuthConfig("").Enabled() {
		t.Error("empty key should disable authentication")
	}
	if NewAuthConfigWithKeys([]string{"", ""}).Enabled() {
		t.Error("only empty keys should disable authentication")
	}
	if !NewAuthConfig("secret").Enabled() {
		t.Error("non-empty key should enable authentication")
	}
}
