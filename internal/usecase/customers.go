package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CustomerUseCase struct {
	Repo entity.CustomerRepositoryInterface
	Now  func() time.Time
}

func NewCustomerUseCase(repo entity.CustomerRepositoryInterface) *CustomerUseCase {
	return &CustomerUseCase{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

func (uc *CustomerUseCase) List(ctx context.Context) ([]*entity.Customer, error) {
	customers, err := uc.Repo.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list customers")
	}
	return customers, nil
}

func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load customer")
	}
	return c, nil
}

func (uc *CustomerUseCase) Create(ctx context.Context, input CreateCustomerInput) (*entity.Customer, error) {
	if errs := defaultValidator.Struct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	c := &entity.Customer{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    NormalizePhone(input.Phone),
		Company:  input.Company,
		Location: input.Location,
		Status:   input.Status,
		JoinDate: uc.Now(),
	}
	if c.Status == "" {
		c.Status = entity.CustomerStatusActive
	}
	if input.JoinDate != nil {
		c.JoinDate = input.JoinDate.UTC()
	}

	created, err := uc.Repo.Insert(ctx, c)
	if err != nil {
		return nil, storeError(err, "failed to create customer")
	}
	return created, nil
}

func (uc *CustomerUseCase) Update(ctx context.Context, id string, patch entity.CustomerPatch) (*entity.Customer, error) {
	if errs := ValidateCustomerPatch(patch); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if patch.Phone != nil {
		phone := NormalizePhone(*patch.Phone)
		patch.Phone = &phone
	}

	c, err := uc.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "failed to update customer")
	}
	return c, nil
}

func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete customer")
	}
	return nil
}
