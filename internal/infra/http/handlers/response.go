package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
	Lead    any                       `json:"lead,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// decodeJSON limita o corpo e rejeita JSON inválido com 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeError traduz os erros dos use cases para HTTP.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var partial *usecase.PartialConversionError
	if errors.As(err, &partial) {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   usecase.CodePartialConversion,
			Message: "lead converted but sale not created; retry?",
			Lead:    partial.Lead,
		})
		return
	}

	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case usecase.CodeValidation:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		case usecase.CodeNotFound:
			writeErrorResponse(w, http.StatusNotFound, de.Code, de.Message)
		case usecase.CodeEmailExists:
			writeErrorResponse(w, http.StatusConflict, de.Code, de.Message)
		default:
			log.Error("request failed", "code", de.Code, "error", err)
			writeErrorResponse(w, http.StatusInternalServerError, de.Code, de.Message)
		}
		return
	}

	log.Error("request failed", "error", err)
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, te.Message)
		return
	}
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
