package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

const (
	opUpdateLead      = "update_lead"
	opResolveCustomer = "resolve_customer"
	opCreateSale      = "create_sale"
	compRestoreLead   = "restore_lead"
	compDeleteCust    = "delete_customer"
)

// ConvertLeadUseCase aplica um patch em um lead. Quando o patch leva o lead
// para "converted" pela primeira vez, grava lead, cliente e venda pendente
// como uma saga e avisa quem escuta mudanças de vendas.
type ConvertLeadUseCase struct {
	Leads     entity.LeadRepositoryInterface
	Customers entity.CustomerRepositoryInterface
	Sales     entity.SaleRepositoryInterface
	Notifier  SalesNotifier
	Alerter   ConversionAlerter
	Metrics   ConversionMetrics
	Log       logger.Logger
	Now       func() time.Time

	locks *keyedMutex
}

func NewConvertLeadUseCase(
	leads entity.LeadRepositoryInterface,
	customers entity.CustomerRepositoryInterface,
	sales entity.SaleRepositoryInterface,
	notifier SalesNotifier,
	alerter ConversionAlerter,
	metrics ConversionMetrics,
	log logger.Logger,
) *ConvertLeadUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ConvertLeadUseCase{
		Leads:     leads,
		Customers: customers,
		Sales:     sales,
		Notifier:  notifier,
		Alerter:   alerter,
		Metrics:   metrics,
		Log:       log.With("usecase", "convert_lead"),
		Now:       func() time.Time { return time.Now().UTC() },
		locks:     newKeyedMutex(),
	}
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, leadID string, patch entity.LeadPatch) (*ConvertLeadOutput, error) {
	// conversion_date é responsabilidade do workflow
	patch.ConversionDate = nil

	if errs := ValidateLeadPatch(patch); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	unlock := uc.locks.Lock(leadID)
	defer unlock()

	pre, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, storeError(err, "failed to load lead")
	}

	convertsNow := patch.Status != nil && *patch.Status == entity.LeadStatusConverted
	if pre.IsConverted() || !convertsNow {
		lead, err := uc.Leads.Update(ctx, leadID, patch)
		if err != nil {
			return nil, leadUpdateError(err)
		}
		if convertsNow {
			uc.Metrics.RecordConversion(OutcomeNoop)
		}
		return &ConvertLeadOutput{Lead: lead}, nil
	}

	return uc.convert(ctx, pre, patch)
}

func (uc *ConvertLeadUseCase) convert(ctx context.Context, pre *entity.Lead, patch entity.LeadPatch) (*ConvertLeadOutput, error) {
	now := uc.Now()

	// re-conversão mantém a primeira data
	if pre.ConversionDate == nil {
		patch.ConversionDate = &now
	}

	var (
		lead            *entity.Lead
		customer        *entity.Customer
		createdCustomer bool
		sale            *entity.Sale
	)

	txn := NewTransaction(uc.Log)

	txn.AddOperation(opUpdateLead, func(ctx context.Context) error {
		l, err := uc.Leads.Update(ctx, pre.ID, patch)
		if err != nil {
			return err
		}
		lead = l
		return nil
	})
	txn.AddCompensation(compRestoreLead, func(ctx context.Context) error {
		return uc.Leads.Replace(ctx, pre)
	})

	txn.AddOperation(opResolveCustomer, func(ctx context.Context) error {
		c, created, err := uc.resolveCustomer(ctx, lead, now)
		if err != nil {
			return err
		}
		customer, createdCustomer = c, created
		return nil
	})
	txn.AddCompensation(compDeleteCust, func(ctx context.Context) error {
		if !createdCustomer {
			return nil
		}
		_, err := uc.Customers.Delete(ctx, customer.ID)
		return err
	})

	txn.AddOperation(opCreateSale, func(ctx context.Context) error {
		customerID := ""
		if customer != nil {
			customerID = customer.ID
		}
		s, err := uc.Sales.Insert(ctx, entity.NewSaleFromLead(lead, customerID, now))
		if err != nil {
			return err
		}
		sale = s
		return nil
	})

	if err := txn.Execute(ctx); err != nil {
		return nil, uc.conversionFailed(ctx, lead, err)
	}

	uc.Notifier.EmitSalesChanged(events.SalesChanged{Sale: sale, Reason: events.ReasonLeadConverted})
	uc.Metrics.RecordConversion(OutcomeConverted)
	uc.Log.Info("lead converted", "lead_id", lead.ID, "sale_id", sale.ID, "customer_id", sale.CustomerID, "created_customer", createdCustomer)

	return &ConvertLeadOutput{Lead: lead, Sale: sale, Customer: customer}, nil
}

// resolveCustomer acha o cliente pelo e-mail do lead ou cria um novo.
// Lead sem e-mail não gera cliente.
func (uc *ConvertLeadUseCase) resolveCustomer(ctx context.Context, lead *entity.Lead, now time.Time) (*entity.Customer, bool, error) {
	if strings.TrimSpace(lead.Email) == "" {
		return nil, false, nil
	}

	c, err := uc.Customers.FindByEmail(ctx, lead.Email)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, err
	}

	c, err = uc.Customers.Insert(ctx, entity.NewCustomerFromLead(lead, now))
	if errors.Is(err, entity.ErrEmailAlreadyExists) {
		// criado por outra requisição entre o find e o insert
		c, err = uc.Customers.FindByEmail(ctx, lead.Email)
		return c, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (uc *ConvertLeadUseCase) conversionFailed(ctx context.Context, lead *entity.Lead, err error) error {
	var se *SagaError
	if !errors.As(err, &se) {
		return &TechnicalError{Code: CodePersistence, Message: "conversion failed", Err: err}
	}

	if se.Operation == opUpdateLead {
		uc.Metrics.RecordConversion(OutcomeLeadUpdateFailed)
		return leadUpdateError(se.Err)
	}

	if !se.CompensationFailed(compRestoreLead) {
		uc.Metrics.RecordConversion(OutcomeSaleFailed)
		if se.CompensationFailed(compDeleteCust) {
			uc.Log.Warn("orphan customer left after failed conversion", "lead_id", lead.ID, "error", se.CompensationErr())
		}
		return &DomainError{
			Code:    CodeSaleCreationFailed,
			Message: "failed to create sale for converted lead, lead restored",
			Err:     se.Err,
		}
	}

	uc.Metrics.RecordConversion(OutcomePartialConversion)
	perr := &PartialConversionError{Lead: lead, Err: se.Err, CompensationErr: se.CompensationErr()}
	uc.Log.Error("partial conversion", "lead_id", lead.ID, "step", se.Operation, "error", se.Err, "compensation_error", perr.CompensationErr)

	if uc.Alerter != nil {
		if aerr := uc.Alerter.SendPartialConversionAlert(context.WithoutCancel(ctx), lead, perr); aerr != nil {
			uc.Log.Warn("failed to send partial conversion alert", "lead_id", lead.ID, "error", aerr)
		}
	}
	return perr
}

func leadUpdateError(err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return storeError(err, "failed to update lead")
	}
	return &DomainError{Code: CodeLeadUpdateFailed, Message: "failed to update lead", Err: err}
}
