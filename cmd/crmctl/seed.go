package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var (
	seedSources  = []string{"Website", "Referral", "LinkedIn", "Cold Call", "Trade Show", "Email Campaign"}
	seedProducts = []string{"Starter Plan", "Pro Plan", "Enterprise Plan", "Consulting Hours", "Onboarding Package"}
	seedOwners   = []string{"Ana", "Bruno", "Carla", "Diego"}
	// sem "converted": conversões passam pelo workflow
	seedStatuses = []entity.LeadStatus{
		entity.LeadStatusNew,
		entity.LeadStatusContacted,
		entity.LeadStatusQualified,
		entity.LeadStatusLost,
	}
)

type seedResult struct {
	Leads     int
	Converted int
	Sales     int
}

func (c *cli) newSeedCmd() *cobra.Command {
	var (
		leads       int
		sales       int
		convertRate float64
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Popula a base com leads e vendas fictícios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if leads < 0 || sales < 0 {
				return fmt.Errorf("--leads and --sales must be >= 0")
			}
			if convertRate < 0 || convertRate > 1 {
				return fmt.Errorf("--convert-rate must be between 0 and 1")
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			g := &seeder{
				faker:       gofakeit.New(seed),
				now:         time.Now().UTC(),
				convertRate: convertRate,
				leads:       c.app.LeadUC,
				sales:       c.app.SaleUC,
				convert:     c.app.ConvertUC,
			}
			res, err := g.run(cmd.Context(), leads, sales)
			printf(cmd.OutOrStdout(), "seeded %d leads (%d converted) and %d sales\n", res.Leads, res.Converted, res.Sales)
			return err
		},
	}

	cmd.Flags().IntVar(&leads, "leads", 50, "quantidade de leads")
	cmd.Flags().IntVar(&sales, "sales", 20, "quantidade de vendas avulsas")
	cmd.Flags().Float64Var(&convertRate, "convert-rate", 0.2, "fração dos leads convertidos pelo workflow")
	cmd.Flags().Int64Var(&seed, "seed", 0, "semente do gerador (0 = aleatória)")
	return cmd
}

type leadCreator interface {
	Create(ctx context.Context, input usecase.CreateLeadInput) (*entity.Lead, error)
}

type saleCreator interface {
	Create(ctx context.Context, input usecase.CreateSaleInput) (*entity.Sale, error)
}

type leadConverter interface {
	Execute(ctx context.Context, leadID string, patch entity.LeadPatch) (*usecase.ConvertLeadOutput, error)
}

type seeder struct {
	faker       *gofakeit.Faker
	now         time.Time
	convertRate float64

	leads   leadCreator
	sales   saleCreator
	convert leadConverter
}

func (s *seeder) run(ctx context.Context, leads, sales int) (seedResult, error) {
	var res seedResult
	converted := entity.LeadStatusConverted

	for i := 0; i < leads; i++ {
		lead, err := s.leads.Create(ctx, s.fakeLead())
		if err != nil {
			return res, fmt.Errorf("lead %d: %w", i+1, err)
		}
		res.Leads++

		if s.faker.Float64Range(0, 1) >= s.convertRate {
			continue
		}
		if _, err := s.convert.Execute(ctx, lead.ID, entity.LeadPatch{Status: &converted}); err != nil {
			return res, fmt.Errorf("convert lead %s: %w", lead.ID, err)
		}
		res.Converted++
	}

	for i := 0; i < sales; i++ {
		if _, err := s.sales.Create(ctx, s.fakeSale()); err != nil {
			return res, fmt.Errorf("sale %d: %w", i+1, err)
		}
		res.Sales++
	}
	return res, nil
}

func (s *seeder) fakeLead() usecase.CreateLeadInput {
	f := s.faker
	created := f.DateRange(s.now.AddDate(0, -6, 0), s.now).UTC()

	in := usecase.CreateLeadInput{
		Name:        f.Name(),
		Email:       f.Email(),
		Company:     f.Company(),
		Location:    f.City(),
		Status:      seedStatuses[f.Number(0, len(seedStatuses)-1)],
		Source:      f.RandomString(seedSources),
		Value:       entity.NewAmount(f.Price(500, 50000)),
		Score:       f.Number(0, 100),
		AssignedTo:  f.RandomString(seedOwners),
		CreatedDate: &created,
	}
	if in.Status != entity.LeadStatusNew {
		contacted := f.DateRange(created, s.now).UTC()
		in.LastContacted = &contacted
	}
	return in
}

func (s *seeder) fakeSale() usecase.CreateSaleInput {
	f := s.faker
	date := f.DateRange(s.now.AddDate(-1, 0, 0), s.now).UTC()
	status := entity.SaleStatusCompleted
	switch f.Number(0, 9) {
	case 0:
		status = entity.SaleStatusCancelled
	case 1, 2:
		status = entity.SaleStatusPending
	}

	return usecase.CreateSaleInput{
		Customer: f.Company(),
		Product:  f.RandomString(seedProducts),
		Amount:   entity.NewAmount(f.Price(100, 20000)),
		Date:     &date,
		Status:   status,
	}
}
