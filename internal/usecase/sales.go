package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
)

type SaleUseCase struct {
	Repo      entity.SaleRepositoryInterface
	Customers entity.CustomerRepositoryInterface
	Notifier  SalesNotifier
	Now       func() time.Time
}

func NewSaleUseCase(repo entity.SaleRepositoryInterface, customers entity.CustomerRepositoryInterface, notifier SalesNotifier) *SaleUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SaleUseCase{
		Repo:      repo,
		Customers: customers,
		Notifier:  notifier,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SaleUseCase) List(ctx context.Context) ([]*entity.Sale, error) {
	sales, err := uc.Repo.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list sales")
	}
	return sales, nil
}

func (uc *SaleUseCase) Get(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load sale")
	}
	return s, nil
}

// Create: com customer_id, o nome de exibição vem do cliente cadastrado.
func (uc *SaleUseCase) Create(ctx context.Context, input CreateSaleInput) (*entity.Sale, error) {
	if errs := defaultValidator.Struct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	sale := &entity.Sale{
		CustomerID: input.CustomerID,
		Customer:   strings.TrimSpace(input.Customer),
		Product:    strings.TrimSpace(input.Product),
		Amount:     input.Amount,
		Date:       uc.Now(),
		Status:     input.Status,
	}
	if input.Date != nil {
		sale.Date = input.Date.UTC()
	}
	if sale.Status == "" {
		sale.Status = entity.SaleStatusPending
	}

	if err := uc.resolveCustomerName(ctx, sale); err != nil {
		return nil, err
	}

	created, err := uc.Repo.Insert(ctx, sale)
	if err != nil {
		return nil, storeError(err, "failed to create sale")
	}
	uc.Notifier.EmitSalesChanged(events.SalesChanged{Sale: created, Reason: events.ReasonSaleCreated})
	return created, nil
}

func (uc *SaleUseCase) Update(ctx context.Context, id string, patch entity.SalePatch) (*entity.Sale, error) {
	if errs := ValidateSalePatch(patch); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if patch.CustomerID != nil && *patch.CustomerID != "" && patch.Customer == nil {
		probe := &entity.Sale{CustomerID: *patch.CustomerID}
		if err := uc.resolveCustomerName(ctx, probe); err != nil {
			return nil, err
		}
		patch.Customer = &probe.Customer
	}

	s, err := uc.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update sale")
	}
	uc.Notifier.EmitSalesChanged(events.SalesChanged{Sale: s, Reason: events.ReasonSaleUpdated})
	return s, nil
}

func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	s, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "failed to delete sale")
	}
	if _, err := uc.Repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete sale")
	}
	uc.Notifier.EmitSalesChanged(events.SalesChanged{Sale: s, Reason: events.ReasonSaleDeleted})
	return nil
}

func (uc *SaleUseCase) resolveCustomerName(ctx context.Context, sale *entity.Sale) error {
	if sale.CustomerID == "" || uc.Customers == nil {
		return nil
	}
	c, err := uc.Customers.FindByID(ctx, sale.CustomerID)
	if errors.Is(err, entity.ErrNotFound) {
		return validationFailed([]ValidationError{{Field: "customer_id", Message: "does not exist"}})
	}
	if err != nil {
		return storeError(err, "failed to load customer")
	}
	if sale.Customer == "" {
		sale.Customer = c.Name
	}
	return nil
}
