package worker

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/analytics"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

type DashboardRefresher interface {
	Refresh(ctx context.Context) (*analytics.Dashboard, error)
	Invalidate(ctx context.Context) error
}

// OverdueTaskWorker marca como overdue as tarefas vencidas e ainda abertas.
type OverdueTaskWorker struct {
	sweeper   OverdueSweeper
	dashboard DashboardRefresher
	log       logger.Logger
}

func NewOverdueTaskWorker(sweeper OverdueSweeper, dashboard DashboardRefresher, log logger.Logger) *OverdueTaskWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &OverdueTaskWorker{sweeper: sweeper, dashboard: dashboard, log: log}
}

func (w *OverdueTaskWorker) Name() string { return "overdue_tasks" }

func (w *OverdueTaskWorker) Run(ctx context.Context) error {
	n, err := w.sweeper.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	w.log.Info("tasks marked overdue", "count", n)
	// contadores de tarefa mudaram
	if w.dashboard != nil {
		if err := w.dashboard.Invalidate(ctx); err != nil {
			w.log.Warn("failed to invalidate analytics cache", "error", err)
		}
	}
	return nil
}

// CacheWarmWorker recalcula o dashboard para o cache nunca esfriar.
type CacheWarmWorker struct {
	dashboard DashboardRefresher
}

func NewCacheWarmWorker(dashboard DashboardRefresher) *CacheWarmWorker {
	return &CacheWarmWorker{dashboard: dashboard}
}

func (w *CacheWarmWorker) Name() string { return "dashboard_cache_warm" }

func (w *CacheWarmWorker) Run(ctx context.Context) error {
	_, err := w.dashboard.Refresh(ctx)
	return err
}
