package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/vodcast"
	"github.com/helixml/vodcast/infrastructure/api"
	apimiddleware "github.com/helixml/vodcast/infrastructure/api/middleware"
	"github.com/helixml/vodcast/internal/config"
	"github.com/helixml/vodcast/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight streams may drain on shutdown.
const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
		vodDir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 5001)
  VOD_DIR                      Directory holding recorded videos (default: videos)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated keys required to post chat messages
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins (default: *)

  STREAM_*                     Video streaming
    BUFFER_SIZE                Copy buffer in bytes (default: 32768)
    RATE_LIMIT                 Per-stream cap in bytes/second, 0 = unlimited (default: 0)
    CONTENT_TYPE               Content-Type of every stream (default: video/mp4)

  OWNCAST_*                    Owncast live server
    URL                        Base URL (e.g., http://localhost:8080)
    ADMIN_TOKEN                Access token used to post chat messages
    HLS_URL                    Playlist URL (default: {OWNCAST_URL}/hls/stream.m3u8)
    TIMEOUT                    Request timeout in seconds (default: 10)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, host, port, vodDir)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 5001)")
	cmd.Flags().StringVar(&vodDir, "vod-dir", "", "Directory holding recorded videos (default: videos)")

	return cmd
}

func runServe(ctx context.Context, envFile, host string, port int, vodDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Apply command line overrides (flags take precedence over env vars)
	cfg = applyServeOverrides(cfg, host, port, vodDir)

	// Ensure the library exists before serving it
	if err := cfg.EnsureVODDir(); err != nil {
		return fmt.Errorf("create video directory: %w", err)
	}

	// Setup logger and make it the process default
	logger := log.Configure(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting vodcast", attrs...)

	client, err := vodcast.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create vodcast client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close vodcast client", slog.Any("error", err))
		}
	}()

	router := newRouter(client, cfg, logger.Component("api"))

	server := api.NewServer(cfg.Addr(), logger.Component("http"))
	server.Router().Mount("/", router)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newRouter builds the application router: API routes, docs, health checks
// and the service banner.
func newRouter(client *vodcast.Client, cfg config.AppConfig, logger *slog.Logger) chi.Router {
	apiServer := api.NewAPIServer(client, api.WithCORSOrigins(cfg.CORSOrigins()...))
	router := apiServer.Router()

	// Apply custom middleware (MUST be done before MountRoutes)
	router.Use(apimiddleware.Logging(logger))
	router.Use(apimiddleware.CorrelationID)

	// Mount API routes after middleware is configured
	apiServer.MountRoutes()

	// Health check endpoints
	health := healthHandler(client)
	router.Get("/health", health)
	router.Get("/healthz", health)

	// Root endpoint with API info
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
			"name":    "vodcast",
			"version": version,
			"docs":    "/docs",
			"vods":    "/api/v1/vods",
			"live":    "/api/v1/live/info",
		})
	})

	// Documentation routes
	docsRouter := apiServer.DocsRouter("/docs/openapi.json")
	router.Mount("/docs", docsRouter.Routes())

	return router
}

type healthResponse struct {
	Status string `json:"status"`
	Live   bool   `json:"live"`
}

// healthHandler reports 503 once the client has been closed and otherwise
// whether the live proxy has an upstream.
func healthHandler(client *vodcast.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if client.Closed() {
			apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "closing"})
			return
		}
		apimiddleware.WriteJSON(w, http.StatusOK, healthResponse{
			Status: "healthy",
			Live:   client.OwncastURL() != "",
		})
	}
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int, vodDir string) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	if vodDir != "" {
		opts = append(opts, config.WithVODDir(vodDir))
	}

	return cfg.Apply(opts...)
}
