package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type Router struct {
	Leads       *LeadHandler
	Sales       *SaleHandler
	Customers   *CustomerHandler
	Tasks       *TaskHandler
	Analytics   *AnalyticsHandler
	Export      *ExportHandler
	Health      *HealthHandler
	CORSOrigins []string
}

func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", rt.Leads.List)
		r.Post("/", rt.Leads.Create)
		r.Get("/{id}", rt.Leads.Get)
		r.Patch("/{id}", rt.Leads.Update)
		r.Delete("/{id}", rt.Leads.Delete)
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", rt.Sales.List)
		r.Post("/", rt.Sales.Create)
		r.Get("/{id}", rt.Sales.Get)
		r.Patch("/{id}", rt.Sales.Update)
		r.Delete("/{id}", rt.Sales.Delete)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", rt.Customers.List)
		r.Post("/", rt.Customers.Create)
		r.Get("/{id}", rt.Customers.Get)
		r.Patch("/{id}", rt.Customers.Update)
		r.Delete("/{id}", rt.Customers.Delete)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", rt.Tasks.List)
		r.Post("/", rt.Tasks.Create)
		r.Get("/{id}", rt.Tasks.Get)
		r.Patch("/{id}", rt.Tasks.Update)
		r.Delete("/{id}", rt.Tasks.Delete)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/leads/funnel", rt.Analytics.Funnel())
		r.Get("/leads/sources", rt.Analytics.Sources())
		r.Get("/leads/conversion-time", rt.Analytics.ConversionTime())
		r.Get("/leads/summary", rt.Analytics.LeadSummary())
		r.Get("/sales", rt.Analytics.Sales())
		r.Get("/customers", rt.Analytics.Customers())
		r.Get("/tasks", rt.Analytics.Tasks())
		r.Get("/dashboard", rt.Analytics.Dashboard())
	})

	r.Get("/export/leads.xlsx", rt.Export.Leads)
	r.Get("/export/sales.xlsx", rt.Export.Sales)

	return r
}
