package entity

import (
	"time"

	"github.com/google/uuid"
)

type CompanySize string

const (
	SizeMicro   CompanySize = "MICRO"
	SizePequena CompanySize = "PEQUENA"
	SizeMedia   CompanySize = "MEDIA"
	SizeGrande  CompanySize = "GRANDE"
)

func (s CompanySize) Valid() bool {
	switch s {
	case SizeMicro, SizePequena, SizeMedia, SizeGrande:
		return true
	}
	return false
}

type Company struct {
	ID            string    `json:"id"`
	CNPJ          string    `json:"cnpj"`
	RazaoSocial   string    `json:"razaoSocial"`
	NomeFantasia  *string   `json:"nomeFantasia"`
	City          *string   `json:"city"`
	State         *string   `json:"state"`
	Segment       *string   `json:"segment"`
	Size          *string   `json:"size"`
	Website       *string   `json:"website"`
	Consentimento bool      `json:"consentimento"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewCompany(cnpj, razaoSocial string, now time.Time) *Company {
	return &Company{
		ID:          uuid.New().String(),
		CNPJ:        cnpj,
		RazaoSocial: razaoSocial,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type Contact struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	Name          string    `json:"name"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	Whatsapp      *string   `json:"whatsapp"`
	Position      *string   `json:"position"`
	Consentimento bool      `json:"consentimento"`
	IsPrimary     bool      `json:"isPrimary"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewContact(companyID, name string, now time.Time) *Contact {
	return &Contact{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
