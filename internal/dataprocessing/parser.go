package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"prognoza/pkg/contracts/domain"
)

// Column names expected in the source CSV. Files come from an ERP export
// that uses semicolons as separators and Polish number formatting.
const (
	ColumnSKU      = "sku"
	ColumnCategory = "Kategoria_Produktu"
	ColumnBuyer    = "nabywca"
	ColumnYear     = "Rok_data_sprzedazy"
	ColumnMonth    = "Miesiac_data_sprzedazy"
	ColumnQuantity = "ilosc"
	ColumnNetValue = "wartosc_netto_pln"
)

var requiredColumns = []string{
	ColumnSKU,
	ColumnCategory,
	ColumnBuyer,
	ColumnYear,
	ColumnMonth,
	ColumnQuantity,
	ColumnNetValue,
}

// ParseCSV reads a semicolon-separated sales export and returns the cleaned
// dataset. Rows that fail numeric coercion or carry a non-positive quantity
// or net value are dropped silently; a missing required column is fatal.
func ParseCSV(r io.Reader, sourceName string) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columnMap := make(map[string]int)
	for j, name := range header {
		columnMap[cleanCell(name)] = j
	}

	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	dataset := &domain.Dataset{
		SourceName: sourceName,
		LoadedAt:   time.Now(),
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		dataset.RowsRead++

		record, ok := parseRow(row, columnMap)
		if !ok {
			continue
		}

		dataset.Records = append(dataset.Records, record)
		dataset.RowsKept++
	}

	slog.Debug("dataset parsed",
		slog.String("source", sourceName),
		slog.Int("rows_read", dataset.RowsRead),
		slog.Int("rows_kept", dataset.RowsKept))

	return dataset, nil
}

// parseRow cleans and validates a single data row. The second return value
// is false when the row should be dropped.
func parseRow(row []string, columnMap map[string]int) (domain.SaleRecord, bool) {
	getString := func(colName string) string {
		if idx := columnMap[colName]; idx < len(row) {
			return cleanCell(row[idx])
		}
		return ""
	}

	sku := getString(ColumnSKU)
	category := getString(ColumnCategory)
	buyer := getString(ColumnBuyer)
	if sku == "" || category == "" || buyer == "" {
		return domain.SaleRecord{}, false
	}

	year, err := strconv.Atoi(getString(ColumnYear))
	if err != nil || year < 1900 || year > 2200 {
		return domain.SaleRecord{}, false
	}

	month, err := strconv.Atoi(getString(ColumnMonth))
	if err != nil || month < 1 || month > 12 {
		return domain.SaleRecord{}, false
	}

	quantity, err := parseAmount(getString(ColumnQuantity))
	if err != nil {
		return domain.SaleRecord{}, false
	}

	netValue, err := parseAmount(getString(ColumnNetValue))
	if err != nil {
		return domain.SaleRecord{}, false
	}

	// Zero and negative rows are returns or corrections, not sales.
	if quantity <= 0 || netValue <= 0 {
		return domain.SaleRecord{}, false
	}

	// Recompute the net value from the derived unit price before the
	// quantity is rounded, so the reported value reflects the sold amount.
	unitPrice := netValue / quantity
	roundedValue := round2(quantity * unitPrice)
	roundedQty := math.Round(quantity)

	return domain.SaleRecord{
		SKU:       sku,
		Category:  category,
		Buyer:     buyer,
		SaleDate:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Quantity:  int64(roundedQty),
		NetValue:  roundedValue,
		UnitPrice: unitPrice,
	}, true
}

// cleanCell strips non-breaking spaces and surrounding whitespace that the
// ERP export sprinkles into text and numeric cells alike.
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}

// parseAmount converts a Polish-formatted number ("1 234,50") to a float.
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return val, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
