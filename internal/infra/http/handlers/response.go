package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

type ErrorPayload struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorPayload `json:"error"`
}

var statusByCode = map[string]int{
	usecase.CodeUnauthenticated:    http.StatusUnauthorized,
	usecase.CodeForbidden:          http.StatusForbidden,
	usecase.CodeValidation:         http.StatusBadRequest,
	usecase.CodeInvalidTransition:  http.StatusConflict,
	usecase.CodeInvalidCloseReason: http.StatusBadRequest,
	usecase.CodeNotFound:           http.StatusNotFound,
	usecase.CodeConflict:           http.StatusConflict,
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// respondError traduz DomainError para o status HTTP; o resto vira 500 sem vazar detalhes.
func respondError(w http.ResponseWriter, log logger.Logger, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		status, known := statusByCode[de.Code]
		if !known {
			status = http.StatusBadRequest
		}
		respondJSON(w, status, ErrorResponse{Error: ErrorPayload{Code: de.Code, Message: de.Message, Fields: de.Fields}})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log = log.WithField("code", te.Code)
	}
	log.WithField("error", err.Error()).Error("erro interno")
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorPayload{Code: "INTERNAL_ERROR", Message: "erro interno"}})
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorPayload{Code: usecase.CodeValidation, Message: msg}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "JSON inválido")
		return false
	}
	return true
}

// actorFrom devolve o ator zero quando não autenticado; os casos de uso respondem UNAUTHENTICATED.
func actorFrom(r *http.Request) auth.Actor {
	a, _ := auth.ActorFromContext(r.Context())
	return a
}
