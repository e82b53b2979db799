package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ACMCMC/argilla/internal/config"
	logpkg "github.com/ACMCMC/argilla/internal/logger"
	"github.com/ACMCMC/argilla/internal/metrics"
	"github.com/ACMCMC/argilla/internal/search"
	"github.com/ACMCMC/argilla/internal/search/elastic"
	"github.com/ACMCMC/argilla/internal/search/opensearch"
	"github.com/ACMCMC/argilla/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting argilla search service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_driver", cfg.Search.Driver),
		zap.Strings("search_addrs", cfg.Search.Addresses),
	)

	// Create search backend based on driver
	var backend search.Backend
	switch cfg.Search.Driver {
	case "elasticsearch":
		backend, err = elastic.New(elastic.Config{
			Addresses:          cfg.Search.Addresses,
			Username:           cfg.Search.Username,
			Password:           cfg.Search.Password,
			InsecureSkipVerify: cfg.Search.InsecureSkipVerify,
		})
	case "opensearch":
		backend, err = opensearch.New(opensearch.Config{
			Addresses:          cfg.Search.Addresses,
			Username:           cfg.Search.Username,
			Password:           cfg.Search.Password,
			InsecureSkipVerify: cfg.Search.InsecureSkipVerify,
		})
	default:
		logger.Fatal("Unknown search driver", zap.String("driver", cfg.Search.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create search backend", zap.Error(err))
	}

	// Register backend metrics explicitly (no init())
	metrics.Register()

	instrumented := search.NewInstrumentedBackend(backend, logger)

	engine := search.New(instrumented, search.Config{
		NumberOfShards:   cfg.Index.NumberOfShards,
		NumberOfReplicas: cfg.Index.NumberOfReplicas,
		MaxTermsSize:     cfg.Index.MaxTermsSize,
		MaxResultWindow:  cfg.Index.MaxResultWindow,
		TotalFieldsLimit: cfg.Index.TotalFieldsLimit,
	}, logger)

	ctx := context.Background()
	if err := engine.Ping(ctx); err != nil {
		logger.Warn("Search backend not reachable at startup", zap.Error(err))
	} else {
		logger.Info("Connected to search backend", zap.String("backend", instrumented.Name()))
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := engine.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// requestLogMiddleware emits a canonical log line per request and propagates X-Request-ID.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
			)
		})
	}
}
