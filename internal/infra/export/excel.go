package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xuri/excelize/v2"
)

const (
	LeadsSheet = "Leads"
	SalesSheet = "Sales"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	leadHeaders = []string{"ID", "Name", "Email", "Phone", "Company", "Location", "Status", "Source", "Value", "Score", "Assigned To", "Created", "Converted"}
	saleHeaders = []string{"ID", "Customer", "Customer ID", "Lead ID", "Product", "Amount", "Date", "Status"}
)

// WriteLeads gera a planilha de leads. Valores saem como número (não texto
// formatado) para somar no Excel.
func WriteLeads(w io.Writer, leads []*entity.Lead) error {
	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []any{
			l.ID, l.Name, l.Email, l.Phone, l.Company, l.Location,
			string(l.Status), l.Source, l.Value.Float64(), l.Score, l.AssignedTo,
			formatDate(&l.CreatedDate), formatDate(l.ConversionDate),
		})
	}
	return writeSheet(w, LeadsSheet, leadHeaders, rows, 9)
}

func WriteSales(w io.Writer, sales []*entity.Sale) error {
	rows := make([][]any, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []any{
			s.ID, s.Customer, s.CustomerID, s.LeadID, s.Product,
			s.Amount.Float64(), formatDate(&s.Date), string(s.Status),
		})
	}
	return writeSheet(w, SalesSheet, saleHeaders, rows, 6)
}

// moneyCol é a coluna (1-based) que recebe formato monetário.
func writeSheet(w io.Writer, sheet string, headers []string, rows [][]any, moneyCol int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	numFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if len(rows) > 0 {
		col, _ := excelize.ColumnNumberToName(moneyCol)
		f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, len(rows)+1), moneyStyle)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheet, "A", lastCol, 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
