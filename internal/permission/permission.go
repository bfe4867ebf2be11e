// Package permission guarda a tabela estática papel/ação e o predicado de
// acesso ao lead usado tanto nos endpoints de um registro quanto nas listagens.
package permission

import "github.com/xavierca1/ls-leads/internal/entity"

type Action string

const (
	LeadCreate       Action = "lead:create"
	LeadReadOwn      Action = "lead:read:own"
	LeadReadAll      Action = "lead:read:all"
	LeadUpdate       Action = "lead:update"
	LeadDelete       Action = "lead:delete"
	LeadAssign       Action = "lead:assign"
	LeadChangeStatus Action = "lead:change_status"
	LeadClose        Action = "lead:close"

	InteractionCreate Action = "interaction:create"
	InteractionRead   Action = "interaction:read"
	InteractionUpdate Action = "interaction:update"

	CompanyCreate Action = "company:create"
	CompanyRead   Action = "company:read"
	CompanyUpdate Action = "company:update"

	ProspeccaoCreate Action = "prospeccao:create"
	ProspeccaoRead   Action = "prospeccao:read"

	ContactCreate Action = "contact:create"
	ContactRead   Action = "contact:read"
	ContactUpdate Action = "contact:update"

	UserCreate Action = "user:create"
	UserRead   Action = "user:read"
	UserUpdate Action = "user:update"
	UserDelete Action = "user:delete"

	ConfigRead   Action = "config:read"
	ConfigUpdate Action = "config:update"

	DashboardPersonal Action = "dashboard:personal"
	DashboardGlobal   Action = "dashboard:global"
	DashboardTeam     Action = "dashboard:team"

	ReportView   Action = "report:view"
	ReportExport Action = "report:export"
)

var (
	all      = []entity.Role{entity.RoleAdmin, entity.RoleGerente, entity.RoleAliado}
	managers = []entity.Role{entity.RoleAdmin, entity.RoleGerente}
	admin    = []entity.Role{entity.RoleAdmin}
)

var grants = map[Action][]entity.Role{
	LeadCreate:       {entity.RoleAdmin, entity.RoleAliado},
	LeadReadOwn:      all,
	LeadReadAll:      admin,
	LeadUpdate:       managers,
	LeadDelete:       admin,
	LeadAssign:       {entity.RoleAdmin, entity.RoleAliado},
	LeadChangeStatus: managers,
	LeadClose:        managers,

	InteractionCreate: managers,
	InteractionRead:   managers,
	InteractionUpdate: managers,

	CompanyCreate: all,
	CompanyRead:   managers,
	CompanyUpdate: managers,

	ProspeccaoCreate: managers,
	ProspeccaoRead:   managers,

	ContactCreate: all,
	ContactRead:   managers,
	ContactUpdate: managers,

	UserCreate: admin,
	UserRead:   admin,
	UserUpdate: admin,
	UserDelete: admin,

	ConfigRead:   admin,
	ConfigUpdate: admin,

	DashboardPersonal: all,
	DashboardGlobal:   admin,
	DashboardTeam:     admin,

	ReportView:   managers,
	ReportExport: managers,
}

// table é a forma (role, action) -> bool consultada em runtime.
var table = buildTable()

func buildTable() map[entity.Role]map[Action]bool {
	t := make(map[entity.Role]map[Action]bool)
	for action, roles := range grants {
		for _, role := range roles {
			if t[role] == nil {
				t[role] = make(map[Action]bool)
			}
			t[role][action] = true
		}
	}
	return t
}

func HasPermission(role entity.Role, action Action) bool {
	return table[role][action]
}

// Actions lista todas as ações conhecidas pela tabela.
func Actions() []Action {
	out := make([]Action, 0, len(grants))
	for a := range grants {
		out = append(out, a)
	}
	return out
}

// CanAccessLead diz se o usuário pode ver ou agir sobre um lead.
func CanAccessLead(role entity.Role, userID string, lead *entity.Lead) bool {
	if lead == nil || userID == "" {
		return false
	}
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleGerente:
		return lead.IsResponsavel(userID) || (lead.IsProspeccao && lead.RegistradorID == userID)
	case entity.RoleAliado:
		return lead.RegistradorID == userID
	default:
		return false
	}
}

// ScopeFor expressa CanAccessLead como filtro aplicável pelo query builder.
func ScopeFor(role entity.Role, userID string) entity.LeadScope {
	if userID == "" {
		return entity.LeadScope{}
	}
	switch role {
	case entity.RoleAdmin:
		return entity.LeadScope{Unrestricted: true}
	case entity.RoleGerente:
		return entity.LeadScope{ResponsavelID: userID, ProspeccaoOwnerID: userID}
	case entity.RoleAliado:
		return entity.LeadScope{RegistradorID: userID}
	default:
		return entity.LeadScope{}
	}
}
