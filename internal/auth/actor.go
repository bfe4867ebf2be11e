package auth

import (
	"context"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// Actor é a identidade resolvida da requisição.
type Actor struct {
	ID    string      `json:"id"`
	Role  entity.Role `json:"role"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
}

func (a Actor) Authenticated() bool {
	return a.ID != ""
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext devolve o ator e false quando nenhuma identidade foi resolvida.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || !a.Authenticated() {
		return Actor{}, false
	}
	return a, true
}

func ActorFromUser(u *entity.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Email: u.Email, Name: u.Name}
}
