package database

import (
	"context"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// HistoryRepository grava as trilhas append-only de status e atribuição.
type HistoryRepository struct {
	DB DBTX
}

func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) AppendStatus(ctx context.Context, h *entity.StatusHistory) error {
	query := `
		INSERT INTO status_history (id, lead_id, previous_status, new_status, reason, changed_by_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		h.ID, h.LeadID, h.PreviousStatus, h.NewStatus, h.Reason, h.ChangedByID, h.ChangedAt,
	)
	return err
}

func (r *HistoryRepository) AppendAssignment(ctx context.Context, a *entity.Assignment) error {
	query := `
		INSERT INTO assignments (id, lead_id, assigned_to_id, assigned_by_id, notes, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.LeadID, a.AssignedToID, a.AssignedByID, a.Notes, a.AssignedAt,
	)
	return err
}

func (r *HistoryRepository) StatusByLead(ctx context.Context, leadID string) ([]entity.StatusHistory, error) {
	query := `
		SELECT h.id, h.lead_id, h.previous_status, h.new_status, h.reason, h.changed_by_id, COALESCE(u.name, ''), h.changed_at
		FROM status_history h
		LEFT JOIN users u ON u.id = h.changed_by_id
		WHERE h.lead_id = $1
		ORDER BY h.changed_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.StatusHistory{}
	for rows.Next() {
		var h entity.StatusHistory
		if err := rows.Scan(&h.ID, &h.LeadID, &h.PreviousStatus, &h.NewStatus, &h.Reason, &h.ChangedByID, &h.ChangedByName, &h.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) AssignmentsByLead(ctx context.Context, leadID string) ([]entity.Assignment, error) {
	query := `
		SELECT a.id, a.lead_id, a.assigned_to_id, COALESCE(t.name, ''), a.assigned_by_id, COALESCE(b.name, ''), a.notes, a.assigned_at
		FROM assignments a
		LEFT JOIN users t ON t.id = a.assigned_to_id
		LEFT JOIN users b ON b.id = a.assigned_by_id
		WHERE a.lead_id = $1
		ORDER BY a.assigned_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Assignment{}
	for rows.Next() {
		var a entity.Assignment
		if err := rows.Scan(&a.ID, &a.LeadID, &a.AssignedToID, &a.AssignedToName, &a.AssignedByID, &a.AssignedByName, &a.Notes, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
