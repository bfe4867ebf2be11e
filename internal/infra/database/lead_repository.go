package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type LeadRepository struct {
	DB DBTX
}

func NewLeadRepository(db DBTX) *LeadRepository {
	return &LeadRepository{DB: db}
}

var leadColumns = []string{
	"l.id", "l.status", "l.urgency", "l.necessity", "l.source", "l.notes",
	"l.lead_score", "l.close_reason", "l.close_reason_detail", "l.is_prospeccao", "l.image_url",
	"l.company_id", "l.contact_id", "l.registrador_id", "l.responsavel_id",
	"l.created_at", "l.updated_at", "l.assigned_at", "l.first_contact_at", "l.qualified_at", "l.closed_at",
}

func leadDest(l *entity.Lead) []interface{} {
	return []interface{}{
		&l.ID, &l.Status, &l.Urgency, &l.Necessity, &l.Source, &l.Notes,
		&l.LeadScore, &l.CloseReason, &l.CloseReasonDetail, &l.IsProspeccao, &l.ImageURL,
		&l.CompanyID, &l.ContactID, &l.RegistradorID, &l.ResponsavelID,
		&l.CreatedAt, &l.UpdatedAt, &l.AssignedAt, &l.FirstContactAt, &l.QualifiedAt, &l.ClosedAt,
	}
}

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, status, urgency, necessity, source, notes,
			lead_score, close_reason, close_reason_detail, is_prospeccao, image_url,
			company_id, contact_id, registrador_id, responsavel_id,
			created_at, updated_at, assigned_at, first_contact_at, qualified_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Status, l.Urgency, l.Necessity, l.Source, l.Notes,
		l.LeadScore, l.CloseReason, l.CloseReasonDetail, l.IsProspeccao, l.ImageURL,
		l.CompanyID, l.ContactID, l.RegistradorID, l.ResponsavelID,
		l.CreatedAt, l.UpdatedAt, l.AssignedAt, l.FirstContactAt, l.QualifiedAt, l.ClosedAt,
	)
	return err
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			status = $2, urgency = $3, necessity = $4, source = $5, notes = $6,
			lead_score = $7, close_reason = $8, close_reason_detail = $9, image_url = $10,
			contact_id = $11, responsavel_id = $12, updated_at = $13,
			assigned_at = $14, first_contact_at = $15, qualified_at = $16, closed_at = $17
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Status, l.Urgency, l.Necessity, l.Source, l.Notes,
		l.LeadScore, l.CloseReason, l.CloseReasonDetail, l.ImageURL,
		l.ContactID, l.ResponsavelID, l.UpdatedAt,
		l.AssignedAt, l.FirstContactAt, l.QualifiedAt, l.ClosedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + strings.Join(leadColumns, ", ") + ` FROM leads l WHERE l.id = $1`

	var l entity.Lead
	err := r.DB.QueryRowContext(ctx, query, id).Scan(leadDest(&l)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindActiveByCompany devolve o lead ativo mais recente da empresa.
func (r *LeadRepository) FindActiveByCompany(ctx context.Context, companyID string) (*entity.Lead, error) {
	query := `
		SELECT ` + strings.Join(leadColumns, ", ") + `
		FROM leads l
		WHERE l.company_id = $1 AND l.status = ANY($2)
		ORDER BY l.created_at DESC
		LIMIT 1
	`
	active := make([]string, 0, len(entity.ActiveStatuses))
	for _, s := range entity.ActiveStatuses {
		active = append(active, string(s))
	}

	var l entity.Lead
	err := r.DB.QueryRowContext(ctx, query, companyID, pq.Array(active)).Scan(leadDest(&l)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func listBase(b sq.SelectBuilder) sq.SelectBuilder {
	return b.From("leads l").
		Join("companies c ON c.id = l.company_id").
		LeftJoin("contacts ct ON ct.id = l.contact_id").
		Join("users reg ON reg.id = l.registrador_id").
		LeftJoin("users resp ON resp.id = l.responsavel_id")
}

func applyFilters(b sq.SelectBuilder, q entity.LeadQuery) sq.SelectBuilder {
	b = withScope(b, q.Scope)
	if q.Status != "" {
		b = b.Where(sq.Eq{"l.status": q.Status})
	}
	if q.ProspeccaoOnly {
		b = b.Where(sq.Eq{"l.is_prospeccao": true})
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		or := sq.Or{
			sq.ILike{"c.razao_social": like},
			sq.ILike{"c.nome_fantasia": like},
			sq.ILike{"ct.name": like},
			sq.ILike{"ct.email": like},
		}
		if digits := onlyDigits(term); digits != "" {
			or = append(or, sq.Like{"c.cnpj": "%" + digits + "%"})
		}
		b = b.Where(or)
	}
	return b
}

// likeEscaper neutraliza curingas digitados pelo usuário; a barra invertida é o escape padrão do LIKE no Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List aplica escopo e filtros numa única query e devolve também o total sem paginação.
func (r *LeadRepository) List(ctx context.Context, q entity.LeadQuery) ([]entity.LeadListItem, int, error) {
	columns := append(append([]string{}, leadColumns...),
		"c.cnpj", "c.razao_social", "c.nome_fantasia", "c.city", "c.state",
		"ct.name", "ct.email", "ct.phone",
		"reg.name", "resp.name",
		"(SELECT COUNT(*) FROM interactions i WHERE i.lead_id = l.id) AS interaction_count",
	)

	countQuery, countArgs, err := applyFilters(listBase(psql.Select("COUNT(*)")), q).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entity.LeadListItem{}, 0, nil
	}

	b := applyFilters(listBase(psql.Select(columns...)), q).OrderBy("l.created_at DESC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		b = b.Offset(uint64(q.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []entity.LeadListItem{}
	for rows.Next() {
		var it entity.LeadListItem
		dest := append(leadDest(&it.Lead),
			&it.CompanyCNPJ, &it.CompanyRazaoSocial, &it.CompanyFantasia, &it.CompanyCity, &it.CompanyState,
			&it.ContactName, &it.ContactEmail, &it.ContactPhone,
			&it.RegistradorName, &it.ResponsavelName,
			&it.InteractionCount,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
