package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/export"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type testServer struct {
	handler http.Handler
	bus     *events.Bus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(database.DialectSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	leadRepo := database.NewLeadRepository(db, database.DialectSQLite)
	saleRepo := database.NewSaleRepository(db, database.DialectSQLite)
	customerRepo := database.NewCustomerRepository(db, database.DialectSQLite)
	taskRepo := database.NewTaskRepository(db, database.DialectSQLite)

	log := logger.Nop()
	bus := events.NewBus()

	leads := usecase.NewLeadUseCase(leadRepo)
	sales := usecase.NewSaleUseCase(saleRepo, customerRepo, bus)
	convert := usecase.NewConvertLeadUseCase(leadRepo, customerRepo, saleRepo, bus, nil, nil, log)
	analytics := usecase.NewAnalyticsUseCase(leadRepo, saleRepo, customerRepo, taskRepo, nil, log)

	rt := Router{
		Leads:       NewLeadHandler(leads, convert, log),
		Sales:       NewSaleHandler(sales, log),
		Customers:   NewCustomerHandler(usecase.NewCustomerUseCase(customerRepo), log),
		Tasks:       NewTaskHandler(usecase.NewTaskUseCase(taskRepo, log), log),
		Analytics:   NewAnalyticsHandler(analytics, log),
		Export:      NewExportHandler(leads, sales, log),
		Health:      NewHealthHandler(db, nil, nil, "test"),
		CORSOrigins: []string{"*"},
	}
	return &testServer{handler: rt.Handler(), bus: bus}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLeadConversionEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	var notified []string
	srv.bus.OnSalesChanged(func(evt events.SalesChanged) { notified = append(notified, evt.Reason) })

	rec := srv.do(t, http.MethodPost, "/leads", map[string]any{
		"name": "Bob", "email": "bob@example.com", "value": 2000, "source": "Referral",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lead := decode[entity.Lead](t, rec)
	assert.Equal(t, entity.LeadStatusNew, lead.Status)

	rec = srv.do(t, http.MethodPatch, "/leads/"+lead.ID, map[string]any{"status": "converted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[usecase.ConvertLeadOutput](t, rec)
	require.NotNil(t, out.Sale)
	require.NotNil(t, out.Customer)
	assert.NotNil(t, out.Lead.ConversionDate)
	assert.Equal(t, entity.SaleStatusPending, out.Sale.Status)
	assert.Equal(t, entity.NewAmount(2000), out.Sale.Amount)
	assert.Equal(t, out.Customer.ID, out.Sale.CustomerID)
	assert.Equal(t, []string{events.ReasonLeadConverted}, notified)

	// Pending não entra na receita
	rec = srv.do(t, http.MethodGet, "/analytics/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, 0.0, stats["total_revenue"])
	assert.Equal(t, 2000.0, stats["pending_value"])

	rec = srv.do(t, http.MethodPatch, "/sales/"+out.Sale.ID, map[string]any{"status": "Completed", "amount": 2500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/analytics/sales", nil)
	stats = decode[map[string]any](t, rec)
	assert.Equal(t, 2500.0, stats["total_revenue"])
	assert.Equal(t, 1.0, stats["completed_orders"])

	// salvar de novo como converted não cria outra venda
	rec = srv.do(t, http.MethodPatch, "/leads/"+lead.ID, map[string]any{"status": "converted"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[usecase.ConvertLeadOutput](t, rec).Sale)

	rec = srv.do(t, http.MethodGet, "/sales", nil)
	assert.Len(t, decode[[]entity.Sale](t, rec), 1)
}

func TestCreateLeadValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/leads", map[string]any{"name": "", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, usecase.CodeValidation, resp.Error)
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "name", resp.Fields[0].Field)
	assert.Equal(t, "email", resp.Fields[1].Field)
}

func TestCreateLeadAsConvertedIsRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/leads", map[string]any{
		"name": "Carol", "email": "carol@example.com", "value": 700, "status": "converted",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, usecase.CodeValidation, resp.Error)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "status", resp.Fields[0].Field)

	// nenhum lead convertido sem venda
	rec = srv.do(t, http.MethodGet, "/leads", nil)
	assert.Empty(t, decode[[]entity.Lead](t, rec))
	rec = srv.do(t, http.MethodGet, "/sales", nil)
	assert.Empty(t, decode[[]entity.Sale](t, rec))
}

func TestInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/tasks", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode[ErrorResponse](t, rec).Error)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/leads/nope", "/sales/nope", "/customers/nope", "/tasks/nope"} {
		rec := srv.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, usecase.CodeNotFound, decode[ErrorResponse](t, rec).Error, path)
	}

	rec := srv.do(t, http.MethodPatch, "/leads/nope", map[string]any{"status": "converted"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/sales/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerEmailConflict(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]any{"name": "Alice", "email": "alice@example.com"}
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/customers", body).Code)

	body["email"] = "ALICE@example.com"
	rec := srv.do(t, http.MethodPost, "/customers", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeEmailExists, decode[ErrorResponse](t, rec).Error)
}

func TestTaskCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/tasks", map[string]any{"title": "Follow up", "estimated_hours": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[entity.Task](t, rec)
	assert.Equal(t, entity.TaskPriorityMedium, task.Priority)

	rec = srv.do(t, http.MethodPatch, "/tasks/"+task.ID, map[string]any{"status": "completed", "actual_hours": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/analytics/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, 1.0, stats["completed"])

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/tasks/"+task.ID, nil).Code)
}

func TestDashboardAndExport(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/leads", map[string]any{"name": "Carol", "email": "carol@example.com"}).Code)

	rec := srv.do(t, http.MethodGet, "/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[map[string]any](t, rec)
	assert.Contains(t, dash, "funnel")
	assert.Contains(t, dash, "sales")

	rec = srv.do(t, http.MethodGet, "/export/leads.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leads-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx é um zip")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["database"])
	assert.Equal(t, "not configured", resp.Dependencies["redis"])

	h := NewHealthHandler(nil, PingFunc(func(context.Context) error { return errors.New("refused") }), nil, "test")
	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteErrorMapping(t *testing.T) {
	lead := &entity.Lead{ID: "lead-1", Status: entity.LeadStatusConverted}

	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"partial", &usecase.PartialConversionError{Lead: lead, Err: errors.New("insert sale")}, http.StatusBadGateway, usecase.CodePartialConversion},
		{"sale failed", &usecase.DomainError{Code: usecase.CodeSaleCreationFailed, Message: "x"}, http.StatusInternalServerError, usecase.CodeSaleCreationFailed},
		{"technical", &usecase.TechnicalError{Code: usecase.CodePersistence, Message: "db"}, http.StatusInternalServerError, usecase.CodePersistence},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger.Nop(), tc.err)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.body, decode[ErrorResponse](t, rec).Error)
		})
	}

	rec := httptest.NewRecorder()
	writeError(rec, logger.Nop(), &usecase.PartialConversionError{Lead: lead, Err: errors.New("insert sale")})
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "lead-1", body["lead"].(map[string]any)["id"])
}
