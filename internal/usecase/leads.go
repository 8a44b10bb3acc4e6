package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadUseCase struct {
	Repo entity.LeadRepositoryInterface
	Now  func() time.Time
}

func NewLeadUseCase(repo entity.LeadRepositoryInterface) *LeadUseCase {
	return &LeadUseCase{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

func (uc *LeadUseCase) List(ctx context.Context) ([]*entity.Lead, error) {
	leads, err := uc.Repo.FetchAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list leads")
	}
	return leads, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load lead")
	}
	return lead, nil
}

// Create grava um lead novo. Leads já nascem "new" quando o status não vem;
// um lead criado direto como converted recebe conversion_date na hora.
func (uc *LeadUseCase) Create(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := defaultValidator.Struct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Now()
	lead := &entity.Lead{
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.TrimSpace(input.Email),
		Phone:         NormalizePhone(input.Phone),
		Company:       input.Company,
		Location:      input.Location,
		Status:        input.Status,
		Source:        strings.TrimSpace(input.Source),
		Value:         input.Value,
		Score:         input.Score,
		AssignedTo:    input.AssignedTo,
		CreatedDate:   now,
		LastContacted: input.LastContacted,
	}
	if lead.Status == "" {
		lead.Status = entity.LeadStatusNew
	}
	if input.CreatedDate != nil {
		lead.CreatedDate = input.CreatedDate.UTC()
	}

	created, err := uc.Repo.Insert(ctx, lead)
	if err != nil {
		return nil, storeError(err, "failed to create lead")
	}
	return created, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete lead")
	}
	return nil
}
