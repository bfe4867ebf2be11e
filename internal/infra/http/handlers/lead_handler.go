package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

type LeadHandler struct {
	Create    *usecase.CreateLeadUseCase
	Update    *usecase.UpdateLeadUseCase
	Get       *usecase.GetLeadUseCase
	List      *usecase.ListLeadsUseCase
	CheckCNPJ *usecase.CheckCNPJUseCase
	Log       logger.Logger
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	get *usecase.GetLeadUseCase,
	list *usecase.ListLeadsUseCase,
	checkCNPJ *usecase.CheckCNPJUseCase,
	log logger.Logger,
) *LeadHandler {
	return &LeadHandler{Create: create, Update: update, Get: get, List: list, CheckCNPJ: checkCNPJ, Log: log}
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Create.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Update.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Get.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.ListLeadsInput{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	var err error
	if input.Page, err = intParam(q.Get("page")); err != nil {
		badRequest(w, "page deve ser numérico")
		return
	}
	if input.Limit, err = intParam(q.Get("limit")); err != nil {
		badRequest(w, "limit deve ser numérico")
		return
	}
	if raw := q.Get("prospeccao"); raw != "" {
		if input.Prospeccao, err = strconv.ParseBool(raw); err != nil {
			badRequest(w, "prospeccao deve ser true ou false")
			return
		}
	}

	out, err := h.List.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// HandleCheckCNPJ responde 400 com valid=false para CNPJ malformado.
func (h *LeadHandler) HandleCheckCNPJ(w http.ResponseWriter, r *http.Request) {
	out, err := h.CheckCNPJ.Execute(r.Context(), actorFrom(r), r.URL.Query().Get("cnpj"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if !out.Valid {
		respondJSON(w, http.StatusBadRequest, out)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
