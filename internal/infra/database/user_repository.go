package database

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type UserRepository struct {
	DB DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{DB: db}
}

var userColumns = []string{"id", "email", "name", "role", "active", "password_hash", "last_login_at", "created_at", "updated_at"}

func scanUser(row scanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.PasswordHash, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, email, name, role, active, password_hash, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Role, u.Active, u.PasswordHash, u.LastLoginAt, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET
			email = $2, name = $3, role = $4, active = $5, password_hash = $6, last_login_at = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Role, u.Active, u.PasswordHash, u.LastLoginAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrEmailAlreadyExists
	}
	if err != nil {
		return err
	}
	return expectOne(res, entity.ErrUserNotFound)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *UserRepository) List(ctx context.Context, f entity.UserFilter) ([]entity.User, error) {
	b := psql.Select(userColumns...).From("users").OrderBy("name ASC")
	if len(f.Roles) > 0 {
		roles := make([]string, 0, len(f.Roles))
		for _, role := range f.Roles {
			roles = append(roles, string(role))
		}
		b = b.Where(sq.Eq{"role": roles})
	}
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"active": true})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
