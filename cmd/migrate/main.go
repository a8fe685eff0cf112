// Package main applies the embedded database migrations and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockledger/internal/bootstrap"
	"stockledger/internal/infrastructure/storage/postgres"
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect database", "error", err)
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatalw("migration failed", "error", err, "applied", applied)
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
		return
	}
	log.Infow("migrations applied", "versions", applied)
}
