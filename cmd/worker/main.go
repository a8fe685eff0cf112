// Package main is the entry point for the stockledger background worker.
// It periodically scans for low stock and summarises the current month.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"stockledger/internal/bootstrap"
	"stockledger/internal/worker"
	"stockledger/pkg/config"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting stockledger worker", "interval", cfg.Worker.Interval)

	rt, err := bootstrap.Open(ctx, cfg, log, "worker")
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer rt.Close()

	w := worker.New(rt.Services.Reports, rt.Notifier(), worker.Config{
		Interval:   cfg.Worker.Interval,
		RunOnStart: true,
		Tick:       rt.PublishPoolStats,
	}, log)

	// Metrics are exposed on the HTTP port; the worker serves nothing else.
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.HTTP.Addr(), Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return metricsServer.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Errorw("worker exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}
