package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/permission"
)

// runInTx executa fn numa transação. Erros de domínio voltam intactos; o
// resto vira TechnicalError. Não há compensação: falhou, não comita.
func runInTx(ctx context.Context, uow entity.UnitOfWork, op string, fn func(repos entity.Repositories) error) error {
	return technical(op, uow.WithinTx(ctx, fn))
}

func requireActor(actor auth.Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requirePermission(actor auth.Actor, action permission.Action) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !permission.HasPermission(actor.Role, action) {
		return forbidden("sem permissão para " + string(action))
	}
	return nil
}

// loadAccessibleLead aplica o mesmo predicado usado nas listagens.
func loadAccessibleLead(ctx context.Context, repos entity.Repositories, actor auth.Actor, leadID string) (*entity.Lead, error) {
	lead, err := repos.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, translate(err)
	}
	if !permission.CanAccessLead(actor.Role, actor.ID, lead) {
		return nil, forbidden("sem permissão para este lead")
	}
	return lead, nil
}

// translate converte sentinelas de repositório em erros de domínio.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrLeadNotFound):
		return notFound("lead não encontrado")
	case errors.Is(err, entity.ErrInteractionNotFound):
		return notFound("interação não encontrada")
	case errors.Is(err, entity.ErrUserNotFound):
		return notFound("usuário não encontrado")
	case errors.Is(err, entity.ErrCompanyNotFound):
		return notFound("empresa não encontrada")
	case errors.Is(err, entity.ErrContactNotFound):
		return notFound("contato não encontrado")
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		return conflict("já existe um usuário com este email")
	case errors.Is(err, entity.ErrCNPJAlreadyExists):
		return conflict("já existe uma empresa com este CNPJ")
	default:
		return err
	}
}
