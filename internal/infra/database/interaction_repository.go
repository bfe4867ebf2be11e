package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type InteractionRepository struct {
	DB DBTX
}

func NewInteractionRepository(db DBTX) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

const interactionSelect = `
	SELECT i.id, i.lead_id, i.type, i.result, i.notes, i.next_step, i.next_step_date,
		i.duration_minutes, i.author_id, COALESCE(u.name, ''), i.origin, i.occurred_at, i.created_at
	FROM interactions i
	LEFT JOIN users u ON u.id = i.author_id
`

func scanInteraction(row scanner) (*entity.Interaction, error) {
	var i entity.Interaction
	err := row.Scan(&i.ID, &i.LeadID, &i.Type, &i.Result, &i.Notes, &i.NextStep, &i.NextStepDate,
		&i.DurationMinutes, &i.AuthorID, &i.AuthorName, &i.Origin, &i.OccurredAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InteractionRepository) Create(ctx context.Context, i *entity.Interaction) error {
	query := `
		INSERT INTO interactions (id, lead_id, type, result, notes, next_step, next_step_date, duration_minutes, author_id, origin, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		i.ID, i.LeadID, i.Type, i.Result, i.Notes, i.NextStep, i.NextStepDate,
		i.DurationMinutes, i.AuthorID, i.Origin, i.OccurredAt, i.CreatedAt,
	)
	return err
}

// Update nunca toca lead, autor, origem ou datas de criação.
func (r *InteractionRepository) Update(ctx context.Context, i *entity.Interaction) error {
	query := `
		UPDATE interactions SET
			type = $2, result = $3, notes = $4, next_step = $5, next_step_date = $6, duration_minutes = $7
		WHERE id = $1 AND origin = 'USER'
	`
	res, err := r.DB.ExecContext(ctx, query,
		i.ID, i.Type, i.Result, i.Notes, i.NextStep, i.NextStepDate, i.DurationMinutes,
	)
	if err != nil {
		return err
	}
	return expectOne(res, entity.ErrInteractionNotFound)
}

func (r *InteractionRepository) FindByID(ctx context.Context, id string) (*entity.Interaction, error) {
	i, err := scanInteraction(r.DB.QueryRowContext(ctx, interactionSelect+` WHERE i.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInteractionNotFound
	}
	return i, err
}

func (r *InteractionRepository) ListByLead(ctx context.Context, leadID string) ([]entity.Interaction, error) {
	rows, err := r.DB.QueryContext(ctx, interactionSelect+` WHERE i.lead_id = $1 ORDER BY i.occurred_at DESC, i.created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Interaction{}
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}
