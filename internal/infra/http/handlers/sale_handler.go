package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type SaleHandler struct {
	Sales *usecase.SaleUseCase
	Log   logger.Logger
}

func NewSaleHandler(sales *usecase.SaleUseCase, log logger.Logger) *SaleHandler {
	return &SaleHandler{Sales: sales, Log: log}
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Sales.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sale, err := h.Sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateSaleInput
	if !decodeJSON(w, r, &input) {
		return
	}

	sale, err := h.Sales.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch entity.SalePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	sale, err := h.Sales.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Sales.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
