package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/ligue-crm/internal/analytics"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

const DashboardCacheKey = "crm:analytics:dashboard"

// ErrCacheMiss deve ser devolvido (ou embrulhado) por DashboardCache.GetJSON
// quando a chave não existe.
var ErrCacheMiss = errors.New("cache miss")

type DashboardCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) (int, error)
}

// AnalyticsUseCase lê os repositórios e delega o cálculo ao pacote analytics.
// Cache é opcional; falha de cache nunca falha a leitura.
type AnalyticsUseCase struct {
	Leads     entity.LeadRepositoryInterface
	Sales     entity.SaleRepositoryInterface
	Customers entity.CustomerRepositoryInterface
	Tasks     entity.TaskRepositoryInterface
	Cache     DashboardCache
	Log       logger.Logger
	Now       func() time.Time
}

func NewAnalyticsUseCase(
	leads entity.LeadRepositoryInterface,
	sales entity.SaleRepositoryInterface,
	customers entity.CustomerRepositoryInterface,
	tasks entity.TaskRepositoryInterface,
	cache DashboardCache,
	log logger.Logger,
) *AnalyticsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyticsUseCase{
		Leads:     leads,
		Sales:     sales,
		Customers: customers,
		Tasks:     tasks,
		Cache:     cache,
		Log:       log.With("usecase", "analytics"),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AnalyticsUseCase) LeadFunnel(ctx context.Context) ([]analytics.FunnelStage, error) {
	leads, err := uc.leads(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeLeadFunnel(leads), nil
}

func (uc *AnalyticsUseCase) SourcePerformance(ctx context.Context) ([]analytics.SourceStat, error) {
	leads, err := uc.leads(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeSourcePerformance(leads), nil
}

func (uc *AnalyticsUseCase) TimeToConversion(ctx context.Context) (analytics.ConversionTime, error) {
	leads, err := uc.leads(ctx)
	if err != nil {
		return analytics.ConversionTime{}, err
	}
	return analytics.ComputeTimeToConversion(leads, uc.Now()), nil
}

func (uc *AnalyticsUseCase) LeadSummary(ctx context.Context) (analytics.LeadSummary, error) {
	leads, err := uc.leads(ctx)
	if err != nil {
		return analytics.LeadSummary{}, err
	}
	return analytics.ComputeLeadSummary(leads), nil
}

func (uc *AnalyticsUseCase) SalesAnalytics(ctx context.Context) (analytics.SalesAnalytics, error) {
	sales, err := uc.sales(ctx)
	if err != nil {
		return analytics.SalesAnalytics{}, err
	}
	return analytics.ComputeSalesAnalytics(sales, uc.Now()), nil
}

func (uc *AnalyticsUseCase) CustomerAnalytics(ctx context.Context) (analytics.CustomerAnalytics, error) {
	customers, err := uc.Customers.FetchAll(ctx)
	if err != nil {
		return analytics.CustomerAnalytics{}, storeError(err, "failed to load customers")
	}
	sales, err := uc.sales(ctx)
	if err != nil {
		return analytics.CustomerAnalytics{}, err
	}
	return analytics.ComputeCustomerAnalytics(customers, sales, uc.Now()), nil
}

func (uc *AnalyticsUseCase) TaskAnalytics(ctx context.Context) (analytics.TaskAnalytics, error) {
	tasks, err := uc.Tasks.FetchAll(ctx)
	if err != nil {
		return analytics.TaskAnalytics{}, storeError(err, "failed to load tasks")
	}
	return analytics.ComputeTaskAnalytics(tasks, uc.Now()), nil
}

// Dashboard devolve a versão em cache quando houver.
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	if uc.Cache != nil {
		var cached analytics.Dashboard
		err := uc.Cache.GetJSON(ctx, DashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			uc.Log.Warn("dashboard cache read failed", "error", err)
		}
	}
	return uc.Refresh(ctx)
}

// Refresh recalcula o dashboard e regrava o cache.
func (uc *AnalyticsUseCase) Refresh(ctx context.Context) (*analytics.Dashboard, error) {
	in, err := uc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	d := analytics.BuildDashboard(in, uc.Now())
	if uc.Cache != nil {
		if err := uc.Cache.SetJSON(ctx, DashboardCacheKey, d); err != nil {
			uc.Log.Warn("dashboard cache write failed", "error", err)
		}
	}
	return &d, nil
}

func (uc *AnalyticsUseCase) Invalidate(ctx context.Context) error {
	if uc.Cache == nil {
		return nil
	}
	n, err := uc.Cache.Invalidate(ctx)
	if err != nil {
		return err
	}
	uc.Log.Debug("analytics cache invalidated", "keys", n)
	return nil
}

// Snapshot carrega as quatro coleções de uma vez.
func (uc *AnalyticsUseCase) Snapshot(ctx context.Context) (analytics.DashboardInput, error) {
	var (
		in  analytics.DashboardInput
		err error
	)
	if in.Leads, err = uc.leads(ctx); err != nil {
		return in, err
	}
	if in.Sales, err = uc.sales(ctx); err != nil {
		return in, err
	}
	if in.Customers, err = uc.Customers.FetchAll(ctx); err != nil {
		return in, storeError(err, "failed to load customers")
	}
	if in.Tasks, err = uc.Tasks.FetchAll(ctx); err != nil {
		return in, storeError(err, "failed to load tasks")
	}
	return in, nil
}

func (uc *AnalyticsUseCase) leads(ctx context.Context) ([]*entity.Lead, error) {
	leads, err := uc.Leads.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load leads")
	}
	return leads, nil
}

func (uc *AnalyticsUseCase) sales(ctx context.Context) ([]*entity.Sale, error) {
	sales, err := uc.Sales.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load sales")
	}
	return sales, nil
}
