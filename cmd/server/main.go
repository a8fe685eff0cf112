// Package main is the entry point for the stockledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"stockledger/internal/bootstrap"
	"stockledger/internal/domain/auth"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/config"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting stockledger server", "env", cfg.App.Env, "storage", cfg.App.StorageDriver)

	// W3C trace context in and out; a tracer provider is installed by the
	// deployment when spans should be exported.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	rt, err := bootstrap.Open(ctx, cfg, log, "server")
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer rt.Close()

	var pinger handlers.Pinger
	if rt.Pool != nil {
		pinger = rt.Pool
	}

	var validator middleware.JWTValidator
	if cfg.JWT.Enabled {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
		jwtCfg.Issuer = cfg.JWT.Issuer
		jwtCfg.AccessTokenTTL = cfg.JWT.TTL
		validator = auth.NewJWTService(jwtCfg)
	} else {
		log.Warnw("authentication disabled, caller taken from X-Actor header")
	}

	router := v1.NewRouter(v1.RouterConfig{
		Services:     rt.Services,
		Logger:       log,
		Metrics:      rt.Metrics,
		JWTValidator: validator,
		Health:       handlers.NewHealthHandler(pinger, cfg.App.StorageDriver, version),
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go publishPoolStats(statsCtx, rt)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}

func publishPoolStats(ctx context.Context, rt *bootstrap.Runtime) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.PublishPoolStats()
		}
	}
}
