package entity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleGerente Role = "GERENTE"
	RoleAliado  Role = "ALIADO"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleGerente || r == RoleAliado
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NewUser(email, name string, role Role, passwordHash string, now time.Time) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         role,
		Active:       true,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanOwnLeads: só ADMIN e GERENTE podem ser responsáveis.
func (u *User) CanOwnLeads() bool {
	return u.Active && (u.Role == RoleAdmin || u.Role == RoleGerente)
}

type UserFilter struct {
	Roles      []Role
	ActiveOnly bool
}
