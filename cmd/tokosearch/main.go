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
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tokosearch/tokosearch/internal/config"
	logpkg "github.com/tokosearch/tokosearch/internal/logger"
	"github.com/tokosearch/tokosearch/internal/metrics"
	"github.com/tokosearch/tokosearch/internal/ranking"
	catalogrepo "github.com/tokosearch/tokosearch/internal/repository/catalog"
	chiTransport "github.com/tokosearch/tokosearch/internal/transport/chi"
	searchuc "github.com/tokosearch/tokosearch/internal/usecase/search"
	"github.com/tokosearch/tokosearch/internal/version"
)

func main() {
	env := pflag.String("env", config.GetEnv(), "configuration environment (local, dev, prod)")
	catalogPath := pflag.String("catalog", "", "catalog CSV path (overrides config)")
	addr := pflag.String("addr", "", "listen address (overrides config http.port)")
	pflag.Parse()

	cfg, err := config.Load(*env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	logger, err := logpkg.New(*env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tokosearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", *env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog", cfg.Catalog.Path),
	)

	if warn := cfg.WeightSumWarning(); warn != "" {
		logger.Warn(warn)
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	cat, err := catalogrepo.New(logger).Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	ranker, err := ranking.New(cfg.Search.RankingParams())
	if err != nil {
		logger.Fatal("Failed to create ranker", zap.Error(err))
	}
	searchSvc, err := searchuc.New(ranker, searchuc.StdEvaluator{}, cfg.Search.BM25Params(), cfg.Search.DefaultK)
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	if err := searchSvc.BuildIndex(context.Background(), cat); err != nil {
		logger.Fatal("Failed to build index", zap.Error(err))
	}

	server := chiTransport.NewServer(searchSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%d", cfg.HTTP.Port)
	}
	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", listenAddr))
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
