package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/app"
	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// setupEnv aponta a CLI para um sqlite em arquivo temporário.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "crm.db") + "?_foreign_keys=on&_busy_timeout=5000"
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("REDIS_URL", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("MAIL_HOST", "")
	return dsn
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	err := execute(args, &out, &errOut)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "crmctl v"+version+"\n", out)
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version 1 (sqlite3)")

	// segunda vez é no-op
	out, err = runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version 1")
}

func TestSeedThenReport(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "seed", "--leads", "6", "--sales", "4", "--convert-rate", "0", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 6 leads (0 converted) and 4 sales")

	out, err = runCLI(t, "report", "--section", "leads")
	require.NoError(t, err)

	var summary struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 6, summary.Total)

	out, err = runCLI(t, "report", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, `"funnel"`)
	assert.Contains(t, out, `"sales"`)
}

func TestSeedRejectsBadFlags(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "seed", "--leads", "-1")
	assert.Error(t, err)

	_, err = runCLI(t, "seed", "--convert-rate", "1.5")
	assert.Error(t, err)
}

func TestReportUnknownSection(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "report", "--section", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section")
}

func TestConvert(t *testing.T) {
	dsn := setupEnv(t)

	cfg := &config.Config{DBDriver: config.DriverSQLite, DatabaseURL: dsn, CacheTTL: time.Minute}
	a, err := app.New(cfg, logger.Nop())
	require.NoError(t, err)
	lead, err := a.LeadUC.Create(context.Background(), usecase.CreateLeadInput{
		Name:   "Bob Smith",
		Email:  "bob@example.com",
		Status: entity.LeadStatusQualified,
		Value:  entity.NewAmount(5000),
	})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	out, err := runCLI(t, "convert", lead.ID)
	require.NoError(t, err)

	var res usecase.ConvertLeadOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, entity.LeadStatusConverted, res.Lead.Status)
	require.NotNil(t, res.Sale)
	assert.Equal(t, entity.NewAmount(5000), res.Sale.Amount)
	assert.Equal(t, entity.SaleStatusPending, res.Sale.Status)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "bob@example.com", res.Customer.Email)
}

func TestConvertUnknownLead(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "convert", "does-not-exist")
	require.Error(t, err)
	assert.True(t, usecase.HasCode(err, usecase.CodeNotFound))
}

func TestConvertNeedsLeadID(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "convert")
	assert.Error(t, err)
}

// fakes do seeder

type fakeLeads struct{ created []usecase.CreateLeadInput }

func (f *fakeLeads) Create(_ context.Context, in usecase.CreateLeadInput) (*entity.Lead, error) {
	f.created = append(f.created, in)
	return &entity.Lead{ID: in.Email, Name: in.Name, Status: in.Status}, nil
}

type fakeSales struct {
	created []usecase.CreateSaleInput
	err     error
}

func (f *fakeSales) Create(_ context.Context, in usecase.CreateSaleInput) (*entity.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &entity.Sale{Customer: in.Customer}, nil
}

type fakeConverter struct{ ids []string }

func (f *fakeConverter) Execute(_ context.Context, id string, patch entity.LeadPatch) (*usecase.ConvertLeadOutput, error) {
	f.ids = append(f.ids, id)
	return &usecase.ConvertLeadOutput{Lead: &entity.Lead{ID: id, Status: *patch.Status}}, nil
}

func newTestSeeder(rate float64) (*seeder, *fakeLeads, *fakeSales, *fakeConverter) {
	l, s, c := &fakeLeads{}, &fakeSales{}, &fakeConverter{}
	return &seeder{
		faker:       gofakeit.New(7),
		now:         time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		convertRate: rate,
		leads:       l,
		sales:       s,
		convert:     c,
	}, l, s, c
}

func TestSeederConvertsEveryLeadAtFullRate(t *testing.T) {
	s, leads, sales, conv := newTestSeeder(1)

	res, err := s.run(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Leads: 5, Converted: 5, Sales: 2}, res)
	assert.Len(t, leads.created, 5)
	assert.Len(t, sales.created, 2)
	assert.Len(t, conv.ids, 5)
}

func TestSeederFakeData(t *testing.T) {
	s, leads, sales, conv := newTestSeeder(0)

	_, err := s.run(context.Background(), 20, 10)
	require.NoError(t, err)
	assert.Empty(t, conv.ids)

	for _, in := range leads.created {
		assert.NotEmpty(t, in.Name)
		assert.NotEmpty(t, in.Email)
		assert.NotEqual(t, entity.LeadStatusConverted, in.Status)
		assert.GreaterOrEqual(t, in.Score, 0)
		assert.LessOrEqual(t, in.Score, 100)
		assert.Positive(t, int64(in.Value))
		require.NotNil(t, in.CreatedDate)
		assert.False(t, in.CreatedDate.After(s.now))
		if in.Status == entity.LeadStatusNew {
			assert.Nil(t, in.LastContacted)
		}
	}
	for _, in := range sales.created {
		assert.NotEmpty(t, in.Customer)
		assert.Contains(t, seedProducts, in.Product)
		assert.True(t, in.Status.Valid())
	}
}

func TestSeederStopsOnError(t *testing.T) {
	s, _, sales, _ := newTestSeeder(0)
	sales.err = errors.New("boom")

	res, err := s.run(context.Background(), 2, 3)
	require.Error(t, err)
	assert.Equal(t, 2, res.Leads)
	assert.Equal(t, 0, res.Sales)
}
