package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"prognoza/internal/shaper"
)

const (
	// SheetName is the single worksheet the workbook carries.
	SheetName = "Prognoza"

	// DefaultWorkbookName is the file name offered for download.
	DefaultWorkbookName = "prognoza_suma.xlsx"

	// SpreadsheetMIME is the content type of an xlsx workbook.
	SpreadsheetMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	summaryHeaders = []string{"SKU", "Prognoza", "Min", "Max"}
	monthlyHeaders = []string{"SKU", "Miesiąc", "Prognoza", "Min", "Max"}
)

// ExcelWriter renders a shaped table into an xlsx workbook.
type ExcelWriter struct{}

// NewExcelWriter creates an Excel writer.
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// Write renders the table and streams the workbook to w.
func (e *ExcelWriter) Write(table *shaper.Table, w io.Writer) error {
	f, err := e.build(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile renders the table and saves the workbook at path.
func (e *ExcelWriter) WriteFile(table *shaper.Table, path string) error {
	f, err := e.build(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (e *ExcelWriter) build(table *shaper.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	var writeErr error
	switch table.Mode {
	case shaper.ModeAggregate:
		writeErr = writeSummaryRows(f, table)
	case shaper.ModeMonthly:
		writeErr = writeMonthlyRows(f, table)
	default:
		writeErr = fmt.Errorf("unknown table mode: %q", table.Mode)
	}
	if writeErr != nil {
		f.Close()
		return nil, writeErr
	}

	if err := styleHeader(f); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeSummaryRows(f *excelize.File, table *shaper.Table) error {
	if err := setRow(f, 1, toAny(summaryHeaders)); err != nil {
		return err
	}
	for i, row := range table.Summary {
		values := []any{row.SKU, row.Forecast, row.Lower, row.Upper}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlyRows(f *excelize.File, table *shaper.Table) error {
	if err := setRow(f, 1, toAny(monthlyHeaders)); err != nil {
		return err
	}
	for i, row := range table.Monthly {
		values := []any{row.SKU, row.Month, row.Forecast, row.Lower, row.Upper}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
