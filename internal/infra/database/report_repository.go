package database

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// ReportRepository concentra as agregações do dashboard e do worker de pendências.
type ReportRepository struct {
	DB DBTX
}

func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) CountByStatus(ctx context.Context, scope entity.LeadScope) (map[entity.LeadStatus]int, error) {
	query, args, err := withScope(psql.Select("l.status", "COUNT(*)").From("leads l"), scope).
		GroupBy("l.status").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[entity.LeadStatus]int)
	for rows.Next() {
		var (
			status entity.LeadStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountCreatedBetween conta leads com created_at em [from, to).
func (r *ReportRepository) CountCreatedBetween(ctx context.Context, scope entity.LeadScope, from, to time.Time) (int, error) {
	query, args, err := withScope(psql.Select("COUNT(*)").From("leads l"), scope).
		Where(sq.GtOrEq{"l.created_at": from}).
		Where(sq.Lt{"l.created_at": to}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *ReportRepository) LeadsByResponsavel(ctx context.Context, responsavelIDs []string) ([]entity.ManagerLead, error) {
	query := `
		SELECT responsavel_id, status, created_at, first_contact_at
		FROM leads
		WHERE responsavel_id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(responsavelIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.ManagerLead{}
	for rows.Next() {
		var m entity.ManagerLead
		if err := rows.Scan(&m.ResponsavelID, &m.Status, &m.CreatedAt, &m.FirstContactAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ReportRepository) CountStalePending(ctx context.Context, createdBefore time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE status = $1 AND created_at < $2`,
		entity.StatusPendente, createdBefore,
	).Scan(&n)
	return n, err
}
