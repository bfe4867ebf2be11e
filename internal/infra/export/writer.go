package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/ls-leads/internal/entity"
)

const sheetName = "Leads"

// Header é a ordem fixa das colunas nos dois formatos.
var Header = []string{
	"lead_id", "empresa", "cnpj", "status", "urgencia", "necessidade", "origem",
	"registrador", "responsavel", "cidade", "estado", "created_at", "updated_at",
}

func ContentType(format string) string {
	if format == "xlsx" {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func Filename(format string, at time.Time) string {
	return fmt.Sprintf("leads-%s.%s", at.Format("20060102-150405"), format)
}

// Write serializa as linhas no formato pedido ("csv" ou "xlsx").
func Write(w io.Writer, format string, rows []entity.LeadListItem) error {
	switch format {
	case "xlsx":
		return WriteXLSX(w, rows)
	case "csv", "":
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteCSV(w io.Writer, rows []entity.LeadListItem) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, it := range rows {
		if err := writer.Write(record(it)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, rows []entity.LeadListItem) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for r, it := range rows {
		for c, v := range record(it) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(Header))
	f.SetColWidth(sheetName, "A", last, 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func record(it entity.LeadListItem) []string {
	urgency := ""
	if it.Urgency != nil {
		urgency = string(*it.Urgency)
	}
	return []string{
		it.ID,
		it.CompanyRazaoSocial,
		it.CompanyCNPJ,
		string(it.Status),
		urgency,
		deref(it.Necessity),
		deref(it.Source),
		it.RegistradorName,
		deref(it.ResponsavelName),
		deref(it.CompanyCity),
		deref(it.CompanyState),
		it.CreatedAt.Format(time.RFC3339),
		it.UpdatedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
