package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
)

func validLeadInput(cnpj string) CreateLeadInput {
	return CreateLeadInput{
		RazaoSocial:   "Padaria Bom Pão LTDA",
		CNPJ:          cnpj,
		City:          "São Paulo",
		State:         "sp",
		Segment:       "varejo",
		Size:          "MEDIA",
		ContactName:   "Maria Souza",
		ContactEmail:  "maria@bompao.com.br",
		ContactPhone:  "(11) 98765-4321",
		Consentimento: true,
		Urgency:       "ALTA",
		Necessity:     "capital_giro",
	}
}

func newCreateLead(f *fixture, producer QueueProducerInterface) *CreateLeadUseCase {
	uc := NewCreateLeadUseCase(f.store, producer, NopMetrics, f.log)
	uc.Now = clock
	return uc
}

func TestCreateLead_AliadoWithoutResponsavelIsPending(t *testing.T) {
	f := newFixture(t)
	producer := new(MockQueueProducer)
	uc := newCreateLead(f, producer)

	lead, err := uc.Execute(context.Background(), f.aliado, validLeadInput("11.222.333/0001-81"))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendente, lead.Status)
	assert.Nil(t, lead.ResponsavelID)
	assert.Equal(t, f.aliado.ID, lead.RegistradorID)
	assert.False(t, lead.IsProspeccao)

	company, err := memCompanies{f.store}.FindByCNPJ(context.Background(), cnpjA)
	require.NoError(t, err)
	assert.Equal(t, "SP", *company.State)

	require.NotNil(t, lead.ContactID)
	contact := f.store.contacts[*lead.ContactID]
	assert.Equal(t, "11987654321", *contact.Phone)
	assert.True(t, contact.IsPrimary)

	history := f.store.historyFor(lead.ID)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].PreviousStatus)
	assert.Equal(t, entity.StatusPendente, history[0].NewStatus)
	assert.Empty(t, f.store.assignmentsFor(lead.ID))
	assert.Greater(t, lead.LeadScore, 0)

	producer.AssertNotCalled(t, "PublishLeadAssigned", mock.Anything, mock.Anything)
}

func TestCreateLead_WithResponsavelStartsAssigned(t *testing.T) {
	f := newFixture(t)
	producer := new(MockQueueProducer)
	producer.On("PublishLeadAssigned", mock.Anything, mock.MatchedBy(func(p queue.LeadAssignedPayload) bool {
		return p.ResponsavelID == f.gerente.ID && p.ResponsavelEmail == f.gerente.Email
	})).Return(nil).Once()

	input := validLeadInput(cnpjA)
	input.ResponsavelID = f.gerente.ID

	lead, err := newCreateLead(f, producer).Execute(context.Background(), f.aliado, input)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAtribuida, lead.Status)
	assert.Equal(t, f.gerente.ID, *lead.ResponsavelID)
	require.NotNil(t, lead.AssignedAt)
	assert.Equal(t, fixedNow, *lead.AssignedAt)
	assert.Len(t, f.store.assignmentsFor(lead.ID), 1)
	producer.AssertExpectations(t)
}

func TestCreateLead_QueueFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	producer := new(MockQueueProducer)
	producer.On("PublishLeadAssigned", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	input := validLeadInput(cnpjA)
	input.ResponsavelID = f.gerente.ID

	lead, err := newCreateLead(f, producer).Execute(context.Background(), f.admin, input)
	require.NoError(t, err)
	assert.Contains(t, f.store.leads, lead.ID)
}

func TestCreateLead_GerenteProspeccaoSelfAssigns(t *testing.T) {
	f := newFixture(t)
	producer := new(MockQueueProducer)

	input := validLeadInput(cnpjA)
	input.IsProspeccao = true

	lead, err := newCreateLead(f, producer).Execute(context.Background(), f.gerente, input)
	require.NoError(t, err)
	assert.True(t, lead.IsProspeccao)
	assert.Equal(t, entity.StatusAtribuida, lead.Status)
	assert.Equal(t, f.gerente.ID, *lead.ResponsavelID)
	producer.AssertNotCalled(t, "PublishLeadAssigned", mock.Anything, mock.Anything)
}

func TestCreateLead_Permissions(t *testing.T) {
	f := newFixture(t)
	uc := newCreateLead(f, nil)

	_, err := uc.Execute(context.Background(), f.gerente, validLeadInput(cnpjA))
	assert.ErrorIs(t, err, ErrForbidden, "gerente só cria prospecção")

	input := validLeadInput(cnpjB)
	input.IsProspeccao = true
	_, err = uc.Execute(context.Background(), f.aliado, input)
	assert.ErrorIs(t, err, ErrForbidden, "aliado não cria prospecção")

	_, err = uc.Execute(context.Background(), emptyActor(), validLeadInput(cnpjC))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateLead_Validation(t *testing.T) {
	f := newFixture(t)
	uc := newCreateLead(f, nil)

	input := validLeadInput("11222333000100")
	input.ContactPhone = "123"
	input.Urgency = "URGENTE"

	_, err := uc.Execute(context.Background(), f.aliado, input)
	require.ErrorIs(t, err, ErrValidation)

	de, ok := AsDomainError(err)
	require.True(t, ok)
	fields := map[string]bool{}
	for _, fe := range de.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["cnpj"])
	assert.True(t, fields["contactPhone"])
	assert.True(t, fields["urgency"])
	assert.Empty(t, f.store.leads)
}

func TestCreateLead_EnumsAcceptAnyCase(t *testing.T) {
	f := newFixture(t)
	input := validLeadInput(cnpjA)
	input.Urgency = "alta"
	input.Size = " grande "

	lead, err := newCreateLead(f, nil).Execute(context.Background(), f.aliado, input)
	require.NoError(t, err)

	require.NotNil(t, lead.Urgency)
	assert.Equal(t, entity.UrgencyAlta, *lead.Urgency)
	company := f.store.companies[lead.CompanyID]
	require.NotNil(t, company.Size)
	assert.Equal(t, "GRANDE", *company.Size)
	require.NotNil(t, company.State)
	assert.Equal(t, "SP", *company.State)
}

func TestCreateLead_ResponsavelMustOwnLeads(t *testing.T) {
	f := newFixture(t)
	input := validLeadInput(cnpjA)
	input.ResponsavelID = f.aliado.ID

	_, err := newCreateLead(f, nil).Execute(context.Background(), f.admin, input)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.store.leads)
	assert.Empty(t, f.store.companies, "empresa criada na transação deve ser desfeita")
}

func TestCreateLead_ConflictWhileCompanyHasActiveLead(t *testing.T) {
	f := newFixture(t)
	uc := newCreateLead(f, nil)

	_, err := uc.Execute(context.Background(), f.aliado, validLeadInput(cnpjA))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.admin, validLeadInput(cnpjA))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.store.leads, 1)
}

func TestCreateLead_ReusesCompanyAfterClosure(t *testing.T) {
	f := newFixture(t)
	old := f.seedLead(t, cnpjA, entity.StatusEncerrada, f.aliado.ID, ptr(f.gerente.ID), fixedNow.AddDate(0, -2, 0))

	lead, err := newCreateLead(f, nil).Execute(context.Background(), f.aliado, validLeadInput(cnpjA))
	require.NoError(t, err)

	assert.Equal(t, old.CompanyID, lead.CompanyID)
	assert.Len(t, f.store.companies, 1)
	assert.Equal(t, "Padaria Bom Pão LTDA", f.store.companies[old.CompanyID].RazaoSocial)
}

func TestCreateLead_RollsBackWhenHistoryFails(t *testing.T) {
	f := newFixture(t)
	f.store.failOn["history.append_status"] = errors.New("disk full")

	_, err := newCreateLead(f, nil).Execute(context.Background(), f.aliado, validLeadInput(cnpjA))
	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))

	assert.Empty(t, f.store.leads)
	assert.Empty(t, f.store.companies)
	assert.Empty(t, f.store.contacts)
}
