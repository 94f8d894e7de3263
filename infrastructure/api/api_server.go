package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/helixml/vodcast"
	apimiddleware "github.com/helixml/vodcast/infrastructure/api/middleware"
	v1 "github.com/helixml/vodcast/infrastructure/api/v1"
)

// DefaultRequestTimeout bounds every JSON request. Streams are not bounded.
const DefaultRequestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by a vodcast Client.
type APIServer struct {
	client         *vodcast.Client
	apiKeys        []string
	corsOrigins    []string
	requestTimeout time.Duration
	router         chi.Router
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// Empty input keeps the default of allowing every origin.
func WithCORSOrigins(origins ...string) APIServerOption {
	return func(a *APIServer) {
		if len(origins) > 0 {
			a.corsOrigins = origins
		}
	}
}

// WithRequestTimeout sets the timeout applied to JSON routes.
func WithRequestTimeout(d time.Duration) APIServerOption {
	return func(a *APIServer) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// NewAPIServer creates a new APIServer wired to the given vodcast Client.
// The client's API keys configure write-protection: POST /api/v1/live/chat
// requires a valid key when any are set. Streams, listings and status remain
// open.
func NewAPIServer(client *vodcast.Client, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:         client,
		apiKeys:        client.APIKeys(),
		corsOrigins:    []string{"*"},
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before mounting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
func (a *APIServer) Router() chi.Router {
	if a.router == nil {
		a.router = chi.NewRouter()
	}
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	vodsRouter := v1.NewVodsRouter(c)
	liveRouter := v1.NewLiveRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(a.corsHandler())

		// Streams run for as long as the client keeps reading, so they are
		// mounted outside the timeout group.
		r.Mount("/vods/stream", vodsRouter.StreamRoutes())

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(a.requestTimeout))
			r.Mount("/vods", vodsRouter.Routes())

			// Mutating live routes require a valid API key.
			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))
				r.Mount("/live", liveRouter.Routes())
			})
		})
	})
}

func (a *APIServer) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Range", apimiddleware.APIKeyHeader, apimiddleware.CorrelationIDHeader},
		ExposedHeaders: []string{"Accept-Ranges", "Content-Length", "Content-Range", apimiddleware.CorrelationIDHeader},
		MaxAge:         300,
	})
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
