package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/ligue-crm/internal/app"
	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependências
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// 2. Worker da fila (invalida cache de analytics)
	if a.RabbitMQ != nil {
		w := queue.NewWorker(a.RabbitMQ.Ch, a.SalesChangedHandler(), log)
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				log.Error("queue worker failed", "error", err)
			}
		}()
	}

	// 3. Jobs agendados
	scheduler := worker.NewScheduler(log)
	if err := scheduler.Add(cfg.OverdueSweepSchedule, worker.NewOverdueTaskWorker(a.TaskUC, a.AnalyticsUC, log)); err != nil {
		return err
	}
	if a.Cache != nil {
		if err := scheduler.Add(cfg.CacheWarmSchedule, worker.NewCacheWarmWorker(a.AnalyticsUC)); err != nil {
			return err
		}
	}
	scheduler.Start()

	// 4. HTTP
	health := handlers.NewHealthHandler(a.DB, nil, nil, version)
	if a.Cache != nil {
		health.Cache = handlers.PingFunc(a.Cache.Ping)
	}
	if a.RabbitMQ != nil {
		health.RabbitMQ = a.RabbitMQ
	}

	router := handlers.Router{
		Leads:       handlers.NewLeadHandler(a.LeadUC, a.ConvertUC, log),
		Sales:       handlers.NewSaleHandler(a.SaleUC, log),
		Customers:   handlers.NewCustomerHandler(a.CustomerUC, log),
		Tasks:       handlers.NewTaskHandler(a.TaskUC, log),
		Analytics:   handlers.NewAnalyticsHandler(a.AnalyticsUC, log),
		Export:      handlers.NewExportHandler(a.LeadUC, a.SaleUC, log),
		Health:      health,
		CORSOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
