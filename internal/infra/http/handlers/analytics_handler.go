package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AnalyticsHandler struct {
	Analytics *usecase.AnalyticsUseCase
	Log       logger.Logger
}

func NewAnalyticsHandler(uc *usecase.AnalyticsUseCase, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: uc, Log: log}
}

// serve adapta um método do use case para http.HandlerFunc.
func serve[T any](h *AnalyticsHandler, fn func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r.Context())
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *AnalyticsHandler) Funnel() http.HandlerFunc {
	return serve(h, h.Analytics.LeadFunnel)
}

func (h *AnalyticsHandler) Sources() http.HandlerFunc {
	return serve(h, h.Analytics.SourcePerformance)
}

func (h *AnalyticsHandler) ConversionTime() http.HandlerFunc {
	return serve(h, h.Analytics.TimeToConversion)
}

func (h *AnalyticsHandler) LeadSummary() http.HandlerFunc {
	return serve(h, h.Analytics.LeadSummary)
}

func (h *AnalyticsHandler) Sales() http.HandlerFunc {
	return serve(h, h.Analytics.SalesAnalytics)
}

func (h *AnalyticsHandler) Customers() http.HandlerFunc {
	return serve(h, h.Analytics.CustomerAnalytics)
}

func (h *AnalyticsHandler) Tasks() http.HandlerFunc {
	return serve(h, h.Analytics.TaskAnalytics)
}

func (h *AnalyticsHandler) Dashboard() http.HandlerFunc {
	return serve(h, h.Analytics.Dashboard)
}
