package httpapi

import (
	"bytes"
	"fmt"

	"homecare-data/internal/derived"
	"homecare-data/internal/domain"
	"homecare-data/internal/service"

	"github.com/xuri/excelize/v2"
)

// AssistedPersonsExportHeader patient register export columns.
var AssistedPersonsExportHeader = []string{
	"ID",
	"Cognome",
	"Nome",
	"Codice Fiscale",
	"Data di Nascita",
	"Telefono",
	"Stato",
	"Inizio Cure",
	"Diagnosi",
	"Rischio",
	"Completezza %",
}

var assistedPersonsColumnWidths = []float64{8, 20, 20, 20, 15, 16, 10, 14, 35, 10, 14}

// ComplianceExportHeader compliance roster export columns; one column per
// dated personnel document.
var ComplianceExportHeader = func() []string {
	h := []string{"Operatore", "Ruolo"}
	for _, k := range domain.ComplianceDocuments {
		h = append(h, k.Label())
	}
	return append(h, "Scaduti", "In Scadenza")
}()

var complianceColumnWidths = []float64{25, 22, 28, 28, 28, 28, 10, 12}

// GenerateAssistedPersonsExport XLSX of the patient register list view.
func GenerateAssistedPersonsExport(items []service.AssistedPersonView) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, v := range items {
		status := "Attivo"
		if !v.Active {
			status = "Chiuso"
		}
		rows = append(rows, []any{
			v.ID,
			v.Surname,
			v.Name,
			v.FiscalCode,
			string(v.BirthDate),
			v.Phone,
			status,
			string(v.CareStartDate),
			v.PrimaryDiagnosis(),
			string(v.Risk.Level),
			v.Completeness,
		})
	}
	return generateExcel("Assistiti", AssistedPersonsExportHeader, assistedPersonsColumnWidths, rows)
}

// GenerateComplianceExport XLSX of the roster compliance report.
func GenerateComplianceExport(report *service.ComplianceReport) ([]byte, error) {
	rows := make([][]any, 0, len(report.Operators))
	for _, c := range report.Operators {
		row := []any{c.Operator, c.Role}
		for _, d := range c.Documents {
			row = append(row, documentCell(d))
		}
		rows = append(rows, append(row, c.ExpiredCount, c.ExpiringSoonCount))
	}
	return generateExcel("Compliance "+string(report.GeneratedOn), ComplianceExportHeader, complianceColumnWidths, rows)
}

// documentCell "Scaduto (2024-07-12)", or just the label without a date.
func documentCell(d derived.DocumentCompliance) string {
	if d.ExpiresOn.IsZero() || d.Status == derived.StatusNotRequired {
		return d.StatusLabel
	}
	return fmt.Sprintf("%s (%s)", d.StatusLabel, d.ExpiresOn)
}

// generateExcel one-sheet workbook with a styled, frozen header row.
// Empty cells are left blank.
func generateExcel(sheetName string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := 0; i < len(headers) && i < len(widths); i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, values := range rows {
		row := rowIdx + 2 // row 1 is the header
		for colIdx, value := range values {
			if value == nil || value == "" {
				continue
			}
			if err := setCellValue(f, sheetName, colIdx+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, colIdx+1, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
