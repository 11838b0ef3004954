package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"prognoza/internal/shaper"
)

// CSVWriter writes shaped tables as CSV reports under the reports
// directory.
type CSVWriter struct {
	reportsDir string
}

// NewCSVWriter creates a CSV writer rooted at the reports directory.
func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{reportsDir: reportsDir}
}

// WriteTable writes the table to fileName inside the reports directory.
// A UTF-8 BOM is prefixed so Excel opens Polish characters correctly.
func (w *CSVWriter) WriteTable(fileName string, table *shaper.Table) error {
	fullPath := fileName
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.reportsDir, fileName)
	}

	slog.Info("writing CSV report",
		slog.String("path", fullPath),
		slog.String("mode", string(table.Mode)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writeTableRecords(writer, table); err != nil {
		return err
	}
	return writer.Error()
}

func writeTableRecords(writer *csv.Writer, table *shaper.Table) error {
	switch table.Mode {
	case shaper.ModeAggregate:
		if err := writer.Write(summaryHeaders); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		for i, row := range table.Summary {
			record := []string{row.SKU, formatFloat(row.Forecast), formatFloat(row.Lower), formatFloat(row.Upper)}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
	case shaper.ModeMonthly:
		if err := writer.Write(monthlyHeaders); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		for i, row := range table.Monthly {
			record := []string{row.SKU, row.Month, formatFloat(row.Forecast), formatFloat(row.Lower), formatFloat(row.Upper)}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unknown table mode: %q", table.Mode)
	}
	return nil
}
