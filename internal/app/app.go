package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/events"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// App junta repositórios, use cases e integrações opcionais.
// Redis, RabbitMQ e SMTP só entram quando configurados.
type App struct {
	Config *config.Config
	Log    logger.Logger
	DB     *sql.DB
	Bus    *events.Bus

	Cache    *cache.Client
	RabbitMQ *queue.RabbitMQ

	Leads     *database.LeadRepository
	Sales     *database.SaleRepository
	Customers *database.CustomerRepository
	Tasks     *database.TaskRepository

	LeadUC      *usecase.LeadUseCase
	SaleUC      *usecase.SaleUseCase
	CustomerUC  *usecase.CustomerUseCase
	TaskUC      *usecase.TaskUseCase
	ConvertUC   *usecase.ConvertLeadUseCase
	AnalyticsUC *usecase.AnalyticsUseCase

	closers []func() error
}

func New(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Bus: events.NewBus()}

	// 1. Banco
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	a.Leads = database.NewLeadRepository(db, cfg.DBDriver)
	a.Sales = database.NewSaleRepository(db, cfg.DBDriver)
	a.Customers = database.NewCustomerRepository(db, cfg.DBDriver)
	a.Tasks = database.NewTaskRepository(db, cfg.DBDriver)

	// 2. Integrações opcionais
	var dashCache usecase.DashboardCache
	if cfg.RedisURL != "" {
		c, err := cache.NewClient(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Warn("redis unavailable, analytics cache disabled", "error", err)
		} else {
			a.Cache = c
			dashCache = c
			a.closers = append(a.closers, c.Close)
		}
	}

	if cfg.RabbitMQURL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Warn("rabbitmq unavailable, sales events stay in process", "error", err)
		} else {
			a.RabbitMQ = mq
			a.closers = append(a.closers, mq.Close)
			queue.BridgeSalesChanged(a.Bus, queue.NewProducer(mq.Ch), log)
		}
	}

	var alerter usecase.ConversionAlerter
	if cfg.Mail.Enabled() && cfg.AlertEmail != "" {
		sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass, cfg.Mail.From)
		alerter = mail.NewConversionAlerter(sender, cfg.AlertEmail, cfg.CurrencySymbol)
	}

	// 3. Use cases
	a.LeadUC = usecase.NewLeadUseCase(a.Leads)
	a.SaleUC = usecase.NewSaleUseCase(a.Sales, a.Customers, a.Bus)
	a.CustomerUC = usecase.NewCustomerUseCase(a.Customers)
	a.TaskUC = usecase.NewTaskUseCase(a.Tasks, log)
	a.ConvertUC = usecase.NewConvertLeadUseCase(a.Leads, a.Customers, a.Sales, a.Bus, alerter, middleware.ConversionMetrics{}, log)
	a.AnalyticsUC = usecase.NewAnalyticsUseCase(a.Leads, a.Sales, a.Customers, a.Tasks, dashCache, log)

	// 4. Assinantes locais de "vendas mudaram"
	a.Bus.OnSalesChanged(middleware.RecordSalesChanged)
	if a.RabbitMQ == nil {
		// sem broker o cache é invalidado aqui mesmo
		a.Bus.OnSalesChanged(func(events.SalesChanged) {
			if err := a.AnalyticsUC.Invalidate(context.Background()); err != nil {
				log.Warn("failed to invalidate analytics cache", "error", err)
			}
		})
	}

	return a, nil
}

// SalesChangedHandler é o handler do consumidor RabbitMQ: invalida o cache.
func (a *App) SalesChangedHandler() queue.SalesChangedHandler {
	return queue.HandlerFunc(func(ctx context.Context, msg queue.SalesChangedMessage) error {
		a.Log.Debug("sales changed", "reason", msg.Reason, "sale_id", msg.SaleID)
		return a.AnalyticsUC.Invalidate(ctx)
	})
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
