package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/ligue-crm/internal/infra/export"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ExportHandler struct {
	LeadUC *usecase.LeadUseCase
	SaleUC *usecase.SaleUseCase
	Log    logger.Logger
	Now    func() time.Time
}

func NewExportHandler(leads *usecase.LeadUseCase, sales *usecase.SaleUseCase, log logger.Logger) *ExportHandler {
	return &ExportHandler{LeadUC: leads, SaleUC: sales, Log: log, Now: time.Now}
}

// Leads: GET /export/leads.xlsx
func (h *ExportHandler) Leads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.LeadUC.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLeads(&buf, leads); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.sendWorkbook(w, "leads", &buf)
}

// Sales: GET /export/sales.xlsx
func (h *ExportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.SaleUC.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSales(&buf, sales); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.sendWorkbook(w, "sales", &buf)
}

func (h *ExportHandler) sendWorkbook(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, h.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
