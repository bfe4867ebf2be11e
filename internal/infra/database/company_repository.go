package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type CompanyRepository struct {
	DB DBTX
}

func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

const companyColumns = `id, cnpj, razao_social, nome_fantasia, city, state, segment, size, website, consentimento, created_at, updated_at`

func scanCompany(row scanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.CNPJ, &c.RazaoSocial, &c.NomeFantasia, &c.City, &c.State,
		&c.Segment, &c.Size, &c.Website, &c.Consentimento, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.CNPJ, c.RazaoSocial, c.NomeFantasia, c.City, c.State,
		c.Segment, c.Size, c.Website, c.Consentimento, c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrCNPJAlreadyExists
	}
	return err
}

func (r *CompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies SET
			razao_social = $2, nome_fantasia = $3, city = $4, state = $5,
			segment = $6, size = $7, website = $8, consentimento = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.RazaoSocial, c.NomeFantasia, c.City, c.State,
		c.Segment, c.Size, c.Website, c.Consentimento, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, entity.ErrCompanyNotFound)
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return scanCompany(row)
}

func (r *CompanyRepository) FindByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE cnpj = $1`, cnpj)
	return scanCompany(row)
}
