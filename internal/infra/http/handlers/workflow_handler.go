package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

// WorkflowHandler expõe as mudanças de status, atribuições e interações de um lead.
type WorkflowHandler struct {
	ChangeStatus *usecase.ChangeStatusUseCase
	Assign       *usecase.AssignLeadUseCase
	Record       *usecase.RecordInteractionUseCase
	Amend        *usecase.AmendInteractionUseCase
	Log          logger.Logger
}

func NewWorkflowHandler(
	changeStatus *usecase.ChangeStatusUseCase,
	assign *usecase.AssignLeadUseCase,
	record *usecase.RecordInteractionUseCase,
	amend *usecase.AmendInteractionUseCase,
	log logger.Logger,
) *WorkflowHandler {
	return &WorkflowHandler{ChangeStatus: changeStatus, Assign: assign, Record: record, Amend: amend, Log: log}
}

func (h *WorkflowHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangeStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.ChangeStatus.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (h *WorkflowHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var input usecase.AssignLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Assign.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (h *WorkflowHandler) HandleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecordInteractionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	// Via HTTP quem registra é o autor quando authorId não vem no corpo. O fallback
	// responsável/registrador do caso de uso fica para chamadas internas sem usuário.
	if input.AuthorID == "" {
		input.AuthorID = actorFrom(r).ID
	}

	interaction, err := h.Record.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusCreated, interaction)
}

func (h *WorkflowHandler) HandleAmendInteraction(w http.ResponseWriter, r *http.Request) {
	var input usecase.AmendInteractionInput
	if !decodeJSON(w, r, &input) {
		return
	}

	interaction, err := h.Amend.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, interaction)
}
