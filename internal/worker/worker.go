// Package worker runs the periodic report jobs: the low-stock scan and the
// current-month summary of every document kind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/reports"
	"stockledger/pkg/logger"
)

// Config tunes the worker.
type Config struct {
	Interval time.Duration
	// RunOnStart runs a pass immediately instead of waiting one interval.
	RunOnStart bool
	// Tick is called after every pass; used to publish pool stats.
	Tick func()
}

// Worker schedules report jobs and sends their results to a Notifier.
type Worker struct {
	reports  *reports.Service
	notifier reports.Notifier
	cfg      Config
	log      *logger.Logger
}

// New creates a worker.
func New(svc *reports.Service, notifier reports.Notifier, cfg Config, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		reports:  svc,
		notifier: notifier,
		cfg:      cfg,
		log:      log.WithComponent("worker"),
	}
}

// Run executes passes every Interval until ctx is cancelled.
// A failed pass is logged; the schedule continues.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.Infow("worker started", "interval", w.cfg.Interval)
	if w.cfg.RunOnStart {
		w.pass(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return nil
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		w.log.Errorw("report pass failed", "error", err)
	}
	if w.cfg.Tick != nil {
		w.cfg.Tick()
	}
}

// RunOnce runs one pass: the low-stock scan and one summary per document
// kind, concurrently. Every job runs to completion; errors are joined.
func (w *Worker) RunOnce(ctx context.Context) error {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	start := time.Now()

	// Jobs report through errs rather than the group so one failure does not
	// cancel the others.
	var g errgroup.Group
	errs := make([]error, len(documents.Kinds)+1)

	g.Go(func() error {
		errs[0] = w.lowStock(ctx)
		return nil
	})
	period := w.reports.CurrentMonth()
	for i, kind := range documents.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			errs[i+1] = w.summary(ctx, kind, period)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	logger.FromContext(ctx).Infow("report pass finished",
		"period", period.Label(),
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", err != nil,
	)
	return err
}

func (w *Worker) lowStock(ctx context.Context) error {
	lines, err := w.reports.LowStock(ctx, nil)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	if err := w.notifier.NotifyLowStock(ctx, lines); err != nil {
		return fmt.Errorf("notify low stock: %w", err)
	}
	return nil
}

func (w *Worker) summary(ctx context.Context, kind documents.Kind, period reports.Period) error {
	s, err := w.reports.PeriodSummary(ctx, reports.SummaryFilter{Kind: kind, Period: period})
	if err != nil {
		return fmt.Errorf("summary %s: %w", kind, err)
	}
	if err := w.notifier.NotifySummary(ctx, s); err != nil {
		return fmt.Errorf("notify summary %s: %w", kind, err)
	}
	return nil
}
