package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
)

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserLookup confirma que o dono do token ainda existe e está ativo.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", msg)
}

// Authenticate resolve "Authorization: Bearer <jwt>" num auth.Actor no contexto.
// Sem header a requisição segue anônima; RequireActor decide se isso basta.
func Authenticate(tokens TokenValidator, users UserLookup, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, "token ausente ou malformado")
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(raw))
			if err != nil {
				log.WithField("error", err.Error()).Debug("token rejeitado")
				unauthorized(w, "token inválido ou expirado")
				return
			}

			actor := claims.Actor()
			if users != nil {
				u, err := users.FindByID(r.Context(), claims.UserID)
				if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
					log.WithField("error", err.Error()).Error("falha ao carregar usuário do token")
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno")
					return
				}
				if err != nil || !u.Active {
					unauthorized(w, "usuário inativo ou inexistente")
					return
				}
				// papel e nome vêm do banco; o token pode estar defasado
				actor = auth.ActorFromUser(u)
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ActorFromContext(r.Context()); !ok {
			unauthorized(w, "autenticação necessária")
			return
		}
		next.ServeHTTP(w, r)
	})
}
