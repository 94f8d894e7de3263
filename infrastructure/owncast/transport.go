package owncast

import (
	"net/http"
	"strings"
)

// BearerTransport is an http.RoundTripper that attaches an integration access
// token to requests whose path ends with one of the protected endpoints.
// Requests that already carry an Authorization header are left untouched.
type BearerTransport struct {
	inner     http.RoundTripper
	token     string
	endpoints []string
}

// NewBearerTransport creates a BearerTransport. If inner is nil,
// http.DefaultTransport is used. With no endpoints every request is
// authorized.
func NewBearerTransport(token string, inner http.RoundTripper, endpoints ...string) *BearerTransport {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &BearerTransport{inner: inner, token: token, endpoints: endpoints}
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" || req.Header.Get("Authorization") != "" || !t.covers(req.URL.Path) {
		return t.inner.RoundTrip(req)
	}

	// A RoundTripper must not modify the caller's request.
	authorized := req.Clone(req.Context())
	authorized.Header.Set("Authorization", "Bearer "+t.token)
	return t.inner.RoundTrip(authorized)
}

func (t *BearerTransport) covers(path string) bool {
	if len(t.endpoints) == 0 {
		return true
	}
	for _, endpoint := range t.endpoints {
		if strings.HasSuffix(path, endpoint) {
			return true
		}
	}
	return false
}
