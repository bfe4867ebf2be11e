package usecase

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
)

// memStore é um UnitOfWork em memória; WithinTx restaura o snapshot se fn falhar.
type memStore struct {
	leads         map[string]entity.Lead
	companies     map[string]entity.Company
	contacts      map[string]entity.Contact
	interactions  map[string]entity.Interaction
	users         map[string]entity.User
	statusHistory []entity.StatusHistory
	assignments   []entity.Assignment

	// failOn injeta erro numa operação ("history.append_status", ...).
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		leads:        map[string]entity.Lead{},
		companies:    map[string]entity.Company{},
		contacts:     map[string]entity.Contact{},
		interactions: map[string]entity.Interaction{},
		users:        map[string]entity.User{},
		failOn:       map[string]error{},
	}
}

func (s *memStore) Repositories() entity.Repositories {
	return entity.Repositories{
		Leads:        memLeads{s},
		Companies:    memCompanies{s},
		Contacts:     memContacts{s},
		Interactions: memInteractions{s},
		History:      memHistory{s},
		Users:        memUsers{s},
		Reports:      memReports{s},
	}
}

type memSnapshot struct {
	leads         map[string]entity.Lead
	companies     map[string]entity.Company
	contacts      map[string]entity.Contact
	interactions  map[string]entity.Interaction
	users         map[string]entity.User
	statusHistory []entity.StatusHistory
	assignments   []entity.Assignment
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) WithinTx(ctx context.Context, fn func(entity.Repositories) error) error {
	snap := memSnapshot{
		leads:         copyMap(s.leads),
		companies:     copyMap(s.companies),
		contacts:      copyMap(s.contacts),
		interactions:  copyMap(s.interactions),
		users:         copyMap(s.users),
		statusHistory: append([]entity.StatusHistory(nil), s.statusHistory...),
		assignments:   append([]entity.Assignment(nil), s.assignments...),
	}
	if err := fn(s.Repositories()); err != nil {
		s.leads, s.companies, s.contacts = snap.leads, snap.companies, snap.contacts
		s.interactions, s.users = snap.interactions, snap.users
		s.statusHistory, s.assignments = snap.statusHistory, snap.assignments
		return err
	}
	return nil
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

// historyFor devolve as linhas de status de um lead em ordem de escrita.
func (s *memStore) historyFor(leadID string) []entity.StatusHistory {
	var out []entity.StatusHistory
	for _, h := range s.statusHistory {
		if h.LeadID == leadID {
			out = append(out, h)
		}
	}
	return out
}

func (s *memStore) assignmentsFor(leadID string) []entity.Assignment {
	var out []entity.Assignment
	for _, a := range s.assignments {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) interactionsFor(leadID string) []entity.Interaction {
	var out []entity.Interaction
	for _, i := range s.interactions {
		if i.LeadID == leadID {
			out = append(out, i)
		}
	}
	return out
}

type memLeads struct{ s *memStore }

func (r memLeads) Create(_ context.Context, l *entity.Lead) error {
	if err := r.s.fail("leads.create"); err != nil {
		return err
	}
	r.s.leads[l.ID] = *l
	return nil
}

func (r memLeads) Update(_ context.Context, l *entity.Lead) error {
	if err := r.s.fail("leads.update"); err != nil {
		return err
	}
	if _, ok := r.s.leads[l.ID]; !ok {
		return entity.ErrLeadNotFound
	}
	r.s.leads[l.ID] = *l
	return nil
}

func (r memLeads) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &l, nil
}

func (r memLeads) FindActiveByCompany(_ context.Context, companyID string) (*entity.Lead, error) {
	var found *entity.Lead
	for _, l := range r.s.leads {
		l := l
		if l.CompanyID == companyID && l.Status.IsActive() {
			if found == nil || l.CreatedAt.After(found.CreatedAt) {
				found = &l
			}
		}
	}
	if found == nil {
		return nil, entity.ErrLeadNotFound
	}
	return found, nil
}

func (r memLeads) List(_ context.Context, q entity.LeadQuery) ([]entity.LeadListItem, int, error) {
	search := strings.ToLower(q.Search)
	digits := OnlyDigits(q.Search)

	var items []entity.LeadListItem
	for _, l := range r.s.leads {
		l := l
		if !q.Scope.Matches(&l) {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		if q.ProspeccaoOnly && !l.IsProspeccao {
			continue
		}
		item := r.item(l)
		if search != "" {
			hit := strings.Contains(strings.ToLower(item.CompanyRazaoSocial), search) ||
				(digits != "" && strings.Contains(item.CompanyCNPJ, digits)) ||
				(item.ContactName != nil && strings.Contains(strings.ToLower(*item.ContactName), search)) ||
				(item.ContactEmail != nil && strings.Contains(strings.ToLower(*item.ContactEmail), search))
			if !hit {
				continue
			}
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	total := len(items)
	if q.Offset > 0 {
		if q.Offset >= len(items) {
			items = nil
		} else {
			items = items[q.Offset:]
		}
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, total, nil
}

func (r memLeads) item(l entity.Lead) entity.LeadListItem {
	item := entity.LeadListItem{Lead: l}
	if c, ok := r.s.companies[l.CompanyID]; ok {
		item.CompanyCNPJ = c.CNPJ
		item.CompanyRazaoSocial = c.RazaoSocial
		item.CompanyFantasia = c.NomeFantasia
		item.CompanyCity = c.City
		item.CompanyState = c.State
	}
	if l.ContactID != nil {
		if ct, ok := r.s.contacts[*l.ContactID]; ok {
			name := ct.Name
			item.ContactName = &name
			item.ContactEmail = ct.Email
			item.ContactPhone = ct.Phone
		}
	}
	if u, ok := r.s.users[l.RegistradorID]; ok {
		item.RegistradorName = u.Name
	}
	if l.ResponsavelID != nil {
		if u, ok := r.s.users[*l.ResponsavelID]; ok {
			name := u.Name
			item.ResponsavelName = &name
		}
	}
	item.InteractionCount = len(r.s.interactionsFor(l.ID))
	return item
}

type memCompanies struct{ s *memStore }

func (r memCompanies) Create(_ context.Context, c *entity.Company) error {
	for _, existing := range r.s.companies {
		if existing.CNPJ == c.CNPJ {
			return entity.ErrCNPJAlreadyExists
		}
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r memCompanies) Update(_ context.Context, c *entity.Company) error {
	r.s.companies[c.ID] = *c
	return nil
}

func (r memCompanies) FindByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := r.s.companies[id]
	if !ok {
		return nil, entity.ErrCompanyNotFound
	}
	return &c, nil
}

func (r memCompanies) FindByCNPJ(_ context.Context, cnpj string) (*entity.Company, error) {
	for _, c := range r.s.companies {
		if c.CNPJ == cnpj {
			c := c
			return &c, nil
		}
	}
	return nil, entity.ErrCompanyNotFound
}

type memContacts struct{ s *memStore }

func (r memContacts) Create(_ context.Context, c *entity.Contact) error {
	r.s.contacts[c.ID] = *c
	return nil
}

func (r memContacts) Update(_ context.Context, c *entity.Contact) error {
	r.s.contacts[c.ID] = *c
	return nil
}

func (r memContacts) FindByID(_ context.Context, id string) (*entity.Contact, error) {
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, entity.ErrContactNotFound
	}
	return &c, nil
}

type memInteractions struct{ s *memStore }

func (r memInteractions) Create(_ context.Context, i *entity.Interaction) error {
	if err := r.s.fail("interactions.create"); err != nil {
		return err
	}
	r.s.interactions[i.ID] = *i
	return nil
}

func (r memInteractions) Update(_ context.Context, i *entity.Interaction) error {
	r.s.interactions[i.ID] = *i
	return nil
}

func (r memInteractions) FindByID(_ context.Context, id string) (*entity.Interaction, error) {
	i, ok := r.s.interactions[id]
	if !ok {
		return nil, entity.ErrInteractionNotFound
	}
	return &i, nil
}

func (r memInteractions) ListByLead(_ context.Context, leadID string) ([]entity.Interaction, error) {
	out := r.s.interactionsFor(leadID)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memHistory struct{ s *memStore }

func (r memHistory) AppendStatus(_ context.Context, h *entity.StatusHistory) error {
	if err := r.s.fail("history.append_status"); err != nil {
		return err
	}
	r.s.statusHistory = append(r.s.statusHistory, *h)
	return nil
}

func (r memHistory) AppendAssignment(_ context.Context, a *entity.Assignment) error {
	if err := r.s.fail("history.append_assignment"); err != nil {
		return err
	}
	r.s.assignments = append(r.s.assignments, *a)
	return nil
}

func (r memHistory) StatusByLead(_ context.Context, leadID string) ([]entity.StatusHistory, error) {
	out := r.s.historyFor(leadID)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r memHistory) AssignmentsByLead(_ context.Context, leadID string) ([]entity.Assignment, error) {
	out := r.s.assignmentsFor(leadID)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return entity.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return entity.ErrUserNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r memUsers) List(_ context.Context, f entity.UserFilter) ([]entity.User, error) {
	var out []entity.User
	for _, u := range r.s.users {
		if f.ActiveOnly && !u.Active {
			continue
		}
		if len(f.Roles) > 0 {
			match := false
			for _, role := range f.Roles {
				if u.Role == role {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memReports struct{ s *memStore }

func (r memReports) CountByStatus(_ context.Context, scope entity.LeadScope) (map[entity.LeadStatus]int, error) {
	out := map[entity.LeadStatus]int{}
	for _, l := range r.s.leads {
		l := l
		if scope.Matches(&l) {
			out[l.Status]++
		}
	}
	return out, nil
}

func (r memReports) CountCreatedBetween(_ context.Context, scope entity.LeadScope, from, to time.Time) (int, error) {
	n := 0
	for _, l := range r.s.leads {
		l := l
		if scope.Matches(&l) && !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r memReports) LeadsByResponsavel(_ context.Context, ids []string) ([]entity.ManagerLead, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []entity.ManagerLead
	for _, l := range r.s.leads {
		if l.ResponsavelID != nil && want[*l.ResponsavelID] {
			out = append(out, entity.ManagerLead{
				ResponsavelID:  *l.ResponsavelID,
				Status:         l.Status,
				CreatedAt:      l.CreatedAt,
				FirstContactAt: l.FirstContactAt,
			})
		}
	}
	return out, nil
}

func (r memReports) CountStalePending(_ context.Context, before time.Time) (int, error) {
	n := 0
	for _, l := range r.s.leads {
		if l.Status == entity.StatusPendente && l.CreatedAt.Before(before) {
			n++
		}
	}
	return n, nil
}

// --- fixtures ---

var fixedNow = time.Date(2026, 3, 16, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const (
	cnpjA = "11222333000181"
	cnpjB = "11444777000161"
	cnpjC = "33444555000181"
)

type fixture struct {
	store   *memStore
	admin   auth.Actor
	gerente auth.Actor
	outro   auth.Actor
	aliado  auth.Actor
	log     logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), log: logger.NewTestLogger(t)}
	f.admin = f.addUser("admin-1", "Admin", entity.RoleAdmin)
	f.gerente = f.addUser("gerente-1", "Gerente Um", entity.RoleGerente)
	f.outro = f.addUser("gerente-2", "Gerente Dois", entity.RoleGerente)
	f.aliado = f.addUser("aliado-1", "Aliado Um", entity.RoleAliado)
	return f
}

func (f *fixture) addUser(id, name string, role entity.Role) auth.Actor {
	email := strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@ls.com.br"
	hash, _ := auth.HashPassword("senha-segura")
	f.store.users[id] = entity.User{
		ID: id, Email: email, Name: name, Role: role, Active: true,
		PasswordHash: hash, CreatedAt: fixedNow.AddDate(0, -6, 0),
	}
	return auth.Actor{ID: id, Role: role, Email: email, Name: name}
}

// seedLead grava um lead diretamente, sem passar pelos casos de uso.
func (f *fixture) seedLead(t *testing.T, cnpj string, status entity.LeadStatus, registrador string, responsavel *string, createdAt time.Time) *entity.Lead {
	t.Helper()
	company := entity.NewCompany(cnpj, "Empresa "+cnpj[:4], createdAt)
	require.NoError(t, memCompanies{f.store}.Create(context.Background(), company))

	contact := entity.NewContact(company.ID, "Contato "+cnpj[:4], createdAt)
	phone := "11987654321"
	contact.Phone = &phone
	contact.IsPrimary = true
	f.store.contacts[contact.ID] = *contact

	l := entity.NewLead(company.ID, registrador, false, createdAt)
	l.ContactID = &contact.ID
	l.Status = status
	l.ResponsavelID = responsavel
	f.store.leads[l.ID] = *l
	return l
}

func ptr[T any](v T) *T { return &v }

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishLeadAssigned(ctx context.Context, payload queue.LeadAssignedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) LeadCreated(kind string) { m.Called(kind) }
func (m *MockMetrics) StatusChanged(from, to entity.LeadStatus) {
	m.Called(from, to)
}
func (m *MockMetrics) LeadAssigned() { m.Called() }

func emptyActor() auth.Actor { return auth.Actor{} }
