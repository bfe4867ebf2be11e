package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type ExportLeadsUseCase struct {
	UoW entity.UnitOfWork
}

func NewExportLeadsUseCase(uow entity.UnitOfWork) *ExportLeadsUseCase {
	return &ExportLeadsUseCase{UoW: uow}
}

// Execute devolve as linhas no mesmo escopo da listagem; a serialização fica no adapter de export.
func (uc *ExportLeadsUseCase) Execute(ctx context.Context, actor auth.Actor, input ExportLeadsInput) (*ExportLeadsOutput, error) {
	if err := requirePermission(actor, permission.ReportExport); err != nil {
		return nil, err
	}

	format := ExportFormat(strings.ToLower(strings.TrimSpace(input.Format)))
	switch format {
	case "":
		format = FormatCSV
	case FormatCSV, FormatXLSX:
	default:
		return nil, validationFailed(ValidationError{Field: "format", Message: "must be one of: csv xlsx"})
	}

	status, err := parseStatusFilter(input.Status)
	if err != nil {
		return nil, err
	}

	out := &ExportLeadsOutput{Format: format, Rows: []entity.LeadListItem{}}
	scope := permission.ScopeFor(actor.Role, actor.ID)
	if scope.Denies() {
		return out, nil
	}

	rows, _, err := uc.UoW.Repositories().Leads.List(ctx, entity.LeadQuery{Scope: scope, Status: status})
	if err != nil {
		return nil, technical("export leads", err)
	}
	if rows != nil {
		out.Rows = rows
	}
	return out, nil
}
