package entity

import (
	"time"

	"github.com/google/uuid"
)

type StatusHistory struct {
	ID             string      `json:"id"`
	LeadID         string      `json:"leadId"`
	PreviousStatus *LeadStatus `json:"previousStatus"`
	NewStatus      LeadStatus  `json:"newStatus"`
	Reason         *string     `json:"reason"`
	ChangedByID    string      `json:"changedById"`
	ChangedByName  string      `json:"changedByName,omitempty"`
	ChangedAt      time.Time   `json:"changedAt"`
}

func NewStatusHistory(leadID string, previous *LeadStatus, next LeadStatus, reason *string, changedBy string, at time.Time) *StatusHistory {
	return &StatusHistory{
		ID:             uuid.New().String(),
		LeadID:         leadID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         reason,
		ChangedByID:    changedBy,
		ChangedAt:      at,
	}
}

type Assignment struct {
	ID             string    `json:"id"`
	LeadID         string    `json:"leadId"`
	AssignedToID   string    `json:"assignedToId"`
	AssignedToName string    `json:"assignedToName,omitempty"`
	AssignedByID   string    `json:"assignedById"`
	AssignedByName string    `json:"assignedByName,omitempty"`
	Notes          *string   `json:"notes"`
	AssignedAt     time.Time `json:"assignedAt"`
}

func NewAssignment(leadID, assignedTo, assignedBy string, notes *string, at time.Time) *Assignment {
	return &Assignment{
		ID:           uuid.New().String(),
		LeadID:       leadID,
		AssignedToID: assignedTo,
		AssignedByID: assignedBy,
		Notes:        notes,
		AssignedAt:   at,
	}
}
