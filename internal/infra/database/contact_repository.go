package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type ContactRepository struct {
	DB DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (id, company_id, name, email, phone, whatsapp, position, consentimento, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.CompanyID, c.Name, c.Email, c.Phone, c.Whatsapp, c.Position,
		c.Consentimento, c.IsPrimary, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ContactRepository) Update(ctx context.Context, c *entity.Contact) error {
	query := `
		UPDATE contacts SET
			name = $2, email = $3, phone = $4, whatsapp = $5, position = $6,
			consentimento = $7, is_primary = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Whatsapp, c.Position,
		c.Consentimento, c.IsPrimary, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, entity.ErrContactNotFound)
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	query := `
		SELECT id, company_id, name, email, phone, whatsapp, position, consentimento, is_primary, created_at, updated_at
		FROM contacts WHERE id = $1
	`
	var c entity.Contact
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Whatsapp, &c.Position,
		&c.Consentimento, &c.IsPrimary, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
