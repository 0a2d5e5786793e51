package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apikey "github.com/tendant/chi-demo/middleware"

	"github.com/tendant/simple-fileservice/internal/logging"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/api"
	"github.com/tendant/simple-fileservice/pkg/fileservice/config"
	"github.com/tendant/simple-fileservice/pkg/fileservice/events"
	"github.com/tendant/simple-fileservice/pkg/fileservice/metrics"
)

func main() {
	// Missing .env is fine
	_ = godotenv.Load()

	serverConfig, err := config.Load(config.FromFile(os.Getenv("CONFIG_FILE")), config.FromEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(serverConfig.LogLevel)
	slog.SetDefault(logging.New(os.Stderr, serverConfig.Environment, level))

	server, err := NewHTTPServer(serverConfig)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	routes, err := server.Routes()
	if err != nil {
		slog.Error("Failed to set up routes", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		storage, _ := serverConfig.Storage()
		slog.Info("File service starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"storage", storage.Type,
			"max_file_size", serverConfig.MaxFileSize)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

// HTTPServer wraps the file service for HTTP access
type HTTPServer struct {
	service  fileservice.Service
	config   *config.ServerConfig
	registry *prometheus.Registry
}

// NewHTTPServer builds the service described by serverConfig, wiring the
// event sinks and metrics it enables.
func NewHTTPServer(serverConfig *config.ServerConfig) (*HTTPServer, error) {
	s := &HTTPServer{config: serverConfig}

	var sinks events.Multi
	if serverConfig.EnableEventLogging {
		sinks = append(sinks, events.NewLoggingSink(slog.Default()))
	}
	if serverConfig.EnableMetrics {
		s.registry = prometheus.NewRegistry()
		counter, err := metrics.NewEventCounter(s.registry)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, counter)
	}

	svc, err := serverConfig.BuildService(fileservice.WithEventSink(sinks))
	if err != nil {
		return nil, err
	}
	s.service = svc

	if s.registry != nil {
		s.registry.MustRegister(metrics.NewCacheCollector(svc))
	}
	return s, nil
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	var guard func(http.Handler) http.Handler
	if s.config.APIKeySHA256 != "" {
		mw, err := apikey.ApiKeyMiddleware(apikey.ApiKeyConfig{
			APIKeys: map[string]string{
				"key1": s.config.APIKeySHA256,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		guard = mw
	}

	r.Route("/api/v1", func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Mount("/files", api.NewFilesHandler(s.service).Routes())
		r.Mount("/users", api.NewUsersHandler(s.service).Routes())
		r.Mount("/rules", api.NewRulesHandler(s.service).Routes())
	})

	return r, nil
}

// Health check endpoint
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	storage, _ := s.config.Storage()
	stats := s.service.CacheStats()
	render.JSON(w, r, map[string]any{
		"status":        "healthy",
		"environment":   s.config.Environment,
		"storage":       storage.Type,
		"cache_entries": stats.Entries,
	})
}
