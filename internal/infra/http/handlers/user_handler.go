package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

type UserHandler struct {
	List       *usecase.ListUsersUseCase
	Create     *usecase.CreateUserUseCase
	Update     *usecase.UpdateUserUseCase
	Deactivate *usecase.DeactivateUserUseCase
	Login      *usecase.LoginUseCase
	Log        logger.Logger
}

func NewUserHandler(
	list *usecase.ListUsersUseCase,
	create *usecase.CreateUserUseCase,
	update *usecase.UpdateUserUseCase,
	deactivate *usecase.DeactivateUserUseCase,
	login *usecase.LoginUseCase,
	log logger.Logger,
) *UserHandler {
	return &UserHandler{List: list, Create: create, Update: update, Deactivate: deactivate, Login: login, Log: log}
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	assignable := r.URL.Query().Get("assignable") == "true"

	users, err := h.List.Execute(r.Context(), actorFrom(r), assignable)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Create.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Update.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Deactivate.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Login.Execute(r.Context(), input)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
