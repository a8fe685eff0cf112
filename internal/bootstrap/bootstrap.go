// Package bootstrap assembles the runtime shared by the binaries:
// logger, storage backend, metrics and domain services.
package bootstrap

import (
	"context"
	"fmt"

	"stockledger/internal/app"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/metrics"
	"stockledger/internal/infrastructure/notify"
	"stockledger/internal/infrastructure/storage/memory"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/backend"
	"stockledger/pkg/config"
	"stockledger/pkg/logger"
)

// Runtime holds the assembled dependencies of one process.
type Runtime struct {
	Config   *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Services *app.Services
	// Pool is nil for the memory backend.
	Pool *postgres.Pool
}

// NewLogger builds the process logger from cfg and installs it as default.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	return log, nil
}

// Open connects the configured storage and wires the services.
// service names the process in metrics.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, service string) (*Runtime, error) {
	rt := &Runtime{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(metrics.DefaultConfig(service)),
	}

	var repos app.Repositories
	switch cfg.App.StorageDriver {
	case config.StorageMemory:
		log.Warnw("using in-memory storage, data is lost on exit")
		repos = memory.New().Repositories()

	case config.StoragePostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
		poolCfg.MaxConns = cfg.DB.MaxConns
		poolCfg.MinConns = cfg.DB.MinConns

		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.Pool = pool

		txOpts := postgres.DefaultTxOptions()
		txOpts.StatementTimeout = cfg.DB.StatementTimeout
		repos = backend.New(pool, txOpts)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.App.StorageDriver)
	}

	rt.Services = app.NewServices(repos, app.Options{Recorder: rt.Metrics})
	return rt, nil
}

// Notifier returns the configured notification channels: always the log,
// plus the webhook when NOTIFY_WEBHOOK_URL is set.
func (rt *Runtime) Notifier() reports.Notifier {
	channels := notify.Fanout{notify.LogNotifier{}}
	if url := rt.Config.Notify.WebhookURL; url != "" {
		wcfg := notify.DefaultWebhookConfig(url)
		wcfg.Timeout = rt.Config.Notify.Timeout
		wcfg.FailureThreshold = rt.Config.Notify.FailureThreshold
		wcfg.OpenTimeout = rt.Config.Notify.OpenTimeout
		channels = append(channels, notify.NewWebhookNotifier(wcfg, rt.Metrics))
	}
	return channels
}

// PublishPoolStats copies pool occupancy into the metrics. No-op without a pool.
func (rt *Runtime) PublishPoolStats() {
	if rt.Pool == nil {
		return
	}
	s := rt.Pool.Stats()
	rt.Metrics.SetDBConnections(s.TotalConns, s.AcquiredConns, s.IdleConns)
}

// Close releases the storage.
func (rt *Runtime) Close() {
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}
