package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// DefaultStreamDrain is how long Shutdown lets open streams run before
// cancelling their request contexts.
const DefaultStreamDrain = 5 * time.Second

// Server represents the HTTP API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	logger      *slog.Logger
	addr        string
	streamDrain time.Duration
	cancelBase  context.CancelFunc
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStreamDrain sets how long Shutdown waits before aborting open streams.
func WithStreamDrain(d time.Duration) ServerOption {
	return func(s *Server) {
		if d >= 0 {
			s.streamDrain = d
		}
	}
}

// WithIdleTimeout sets the keep-alive idle timeout.
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.httpServer.IdleTimeout = d
		}
	}
}

// WithReadHeaderTimeout sets how long a client may take to send headers.
func WithReadHeaderTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.httpServer.ReadHeaderTimeout = d
		}
	}
}

// NewServer creates a new API Server.
func NewServer(addr string, logger *slog.Logger, opts ...ServerOption) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// chi's Timeout middleware is not applied here: it would cancel video
	// streams at the deadline. JSON route groups get it in mountRoutes.
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	// Every request context derives from base so Shutdown can abort streams.
	base, cancel := context.WithCancel(context.Background())

	// No WriteTimeout: a paused player may hold a stream open for hours.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	s := Server{
		router:      router,
		httpServer:  httpServer,
		addr:        addr,
		logger:      logger,
		streamDrain: DefaultStreamDrain,
		cancelBase:  cancel,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Streams still open after the drain period have their contexts cancelled,
// which ends the copy loop and lets the connection close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server", slog.Duration("stream_drain", s.streamDrain))

	abort := time.AfterFunc(s.streamDrain, s.cancelBase)
	defer abort.Stop()
	defer s.cancelBase()

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}
