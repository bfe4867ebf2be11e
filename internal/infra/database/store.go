package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// DBTX é o que *sql.DB e *sql.Tx têm em comum; os repositórios não sabem se estão numa transação.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implementa entity.UnitOfWork sobre um *sql.DB.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Repositories() entity.Repositories {
	return newRepositories(s.DB)
}

func (s *Store) WithinTx(ctx context.Context, fn func(entity.Repositories) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// no-op depois do Commit
	defer tx.Rollback()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newRepositories(db DBTX) entity.Repositories {
	return entity.Repositories{
		Leads:        NewLeadRepository(db),
		Companies:    NewCompanyRepository(db),
		Contacts:     NewContactRepository(db),
		Interactions: NewInteractionRepository(db),
		History:      NewHistoryRepository(db),
		Users:        NewUserRepository(db),
		Reports:      NewReportRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// expectOne converte "nenhuma linha afetada" no sentinel de not found.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}
