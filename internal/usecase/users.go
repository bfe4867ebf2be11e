package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type ListUsersUseCase struct {
	UoW entity.UnitOfWork
}

func NewListUsersUseCase(uow entity.UnitOfWork) *ListUsersUseCase {
	return &ListUsersUseCase{UoW: uow}
}

// Execute com assignable=true lista só quem pode ser responsável, e também
// atende o ALIADO que precisa escolher um gerente.
func (uc *ListUsersUseCase) Execute(ctx context.Context, actor auth.Actor, assignable bool) ([]entity.User, error) {
	filter := entity.UserFilter{}
	if assignable {
		if err := requireActor(actor); err != nil {
			return nil, err
		}
		if !permission.HasPermission(actor.Role, permission.UserRead) && !permission.HasPermission(actor.Role, permission.LeadAssign) {
			return nil, forbidden("sem permissão para listar usuários")
		}
		filter = entity.UserFilter{Roles: []entity.Role{entity.RoleAdmin, entity.RoleGerente}, ActiveOnly: true}
	} else if err := requirePermission(actor, permission.UserRead); err != nil {
		return nil, err
	}

	users, err := uc.UoW.Repositories().Users.List(ctx, filter)
	if err != nil {
		return nil, technical("list users", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

type CreateUserUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
	Now func() time.Time
}

func NewCreateUserUseCase(uow entity.UnitOfWork, log logger.Logger) *CreateUserUseCase {
	return &CreateUserUseCase{UoW: uow, Log: log, Now: time.Now}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, actor auth.Actor, input CreateUserInput) (*entity.User, error) {
	if err := requirePermission(actor, permission.UserCreate); err != nil {
		return nil, err
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Role = strings.ToUpper(strings.TrimSpace(input.Role))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, technical("hash password", err)
	}
	user := entity.NewUser(input.Email, input.Name, entity.Role(input.Role), hash, uc.Now())

	err = runInTx(ctx, uc.UoW, "create user", func(repos entity.Repositories) error {
		if _, err := repos.Users.FindByEmail(ctx, user.Email); err == nil {
			return conflict("já existe um usuário com este email")
		} else if !errors.Is(err, entity.ErrUserNotFound) {
			return err
		}
		return translate(repos.Users.Create(ctx, user))
	})
	if err != nil {
		return nil, err
	}

	uc.Log.WithFields(map[string]interface{}{"user_id": user.ID, "role": user.Role}).Info("usuário criado")
	return user, nil
}

type UpdateUserUseCase struct {
	UoW entity.UnitOfWork
	Now func() time.Time
}

func NewUpdateUserUseCase(uow entity.UnitOfWork) *UpdateUserUseCase {
	return &UpdateUserUseCase{UoW: uow, Now: time.Now}
}

func (uc *UpdateUserUseCase) Execute(ctx context.Context, actor auth.Actor, userID string, input UpdateUserInput) (*entity.User, error) {
	if err := requirePermission(actor, permission.UserUpdate); err != nil {
		return nil, err
	}
	if input.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &e
	}
	if input.Role != nil {
		r := strings.ToUpper(strings.TrimSpace(*input.Role))
		input.Role = &r
	}
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs...)
	}
	if input.Active != nil && !*input.Active && userID == actor.ID {
		return nil, forbidden("não é possível desativar o próprio usuário")
	}

	var hash string
	if input.Password != nil {
		var err error
		if hash, err = auth.HashPassword(*input.Password); err != nil {
			return nil, technical("hash password", err)
		}
	}

	var user *entity.User
	err := runInTx(ctx, uc.UoW, "update user", func(repos entity.Repositories) error {
		var err error
		user, err = repos.Users.FindByID(ctx, userID)
		if err != nil {
			return translate(err)
		}

		if input.Email != nil && *input.Email != user.Email {
			other, err := repos.Users.FindByEmail(ctx, *input.Email)
			if err == nil && other.ID != user.ID {
				return conflict("já existe um usuário com este email")
			}
			if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
				return err
			}
			user.Email = *input.Email
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Role != nil {
			user.Role = entity.Role(*input.Role)
		}
		if input.Active != nil {
			user.Active = *input.Active
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		user.UpdatedAt = uc.Now()
		return translate(repos.Users.Update(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUserUseCase é o DELETE /users/{id}: o usuário é desativado e
// continua referenciado como registrador/responsável nos leads.
type DeactivateUserUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
	Now func() time.Time
}

func NewDeactivateUserUseCase(uow entity.UnitOfWork, log logger.Logger) *DeactivateUserUseCase {
	return &DeactivateUserUseCase{UoW: uow, Log: log, Now: time.Now}
}

func (uc *DeactivateUserUseCase) Execute(ctx context.Context, actor auth.Actor, userID string) error {
	if err := requirePermission(actor, permission.UserDelete); err != nil {
		return err
	}
	if userID == actor.ID {
		return forbidden("não é possível desativar o próprio usuário")
	}

	err := runInTx(ctx, uc.UoW, "deactivate user", func(repos entity.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return translate(err)
		}
		if !user.Active {
			return nil
		}
		user.Active = false
		user.UpdatedAt = uc.Now()
		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	uc.Log.WithFields(map[string]interface{}{"user_id": userID, "actor": actor.ID}).Info("usuário desativado")
	return nil
}

// EnsureAdminUseCase cria o primeiro ADMIN na subida quando não existe nenhum ativo.
type EnsureAdminUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
	Now func() time.Time
}

func NewEnsureAdminUseCase(uow entity.UnitOfWork, log logger.Logger) *EnsureAdminUseCase {
	return &EnsureAdminUseCase{UoW: uow, Log: log, Now: time.Now}
}

func (uc *EnsureAdminUseCase) Execute(ctx context.Context, email, password string) (bool, error) {
	input := CreateUserInput{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     "Administrador",
		Role:     string(entity.RoleAdmin),
		Password: password,
	}
	if errs := validateStruct(input); len(errs) > 0 {
		return false, validationFailed(errs...)
	}

	created := false
	err := runInTx(ctx, uc.UoW, "ensure admin", func(repos entity.Repositories) error {
		admins, err := repos.Users.List(ctx, entity.UserFilter{Roles: []entity.Role{entity.RoleAdmin}, ActiveOnly: true})
		if err != nil {
			return err
		}
		if len(admins) > 0 {
			return nil
		}

		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return err
		}
		user := entity.NewUser(input.Email, input.Name, entity.RoleAdmin, hash, uc.Now())
		if err := translate(repos.Users.Create(ctx, user)); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		uc.Log.WithField("email", input.Email).Info("admin inicial criado")
	}
	return created, nil
}
