package domain

import (
	"time"
)

// Measure selects which column of the sales data is aggregated and forecast.
type Measure string

const (
	// MeasureQuantity forecasts unit counts (the "ilosc" column).
	MeasureQuantity Measure = "ilosc"
	// MeasureNetValue forecasts net monetary value (the "wartosc_netto_pln" column).
	MeasureNetValue Measure = "wartosc_netto_pln"
)

// IsValid reports whether the measure is one of the supported values.
func (m Measure) IsValid() bool {
	return m == MeasureQuantity || m == MeasureNetValue
}

// SaleRecord represents a single normalized B2B sales line.
// Records are produced by the dataprocessing package; every retained record
// satisfies Quantity > 0 and NetValue > 0, with SaleDate anchored to the
// first day of its month.
type SaleRecord struct {
	SKU       string    `json:"sku" validate:"required"`
	Category  string    `json:"category"`
	Buyer     string    `json:"buyer"`
	SaleDate  time.Time `json:"sale_date" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"min=1"`
	NetValue  float64   `json:"net_value" validate:"gt=0"`
	UnitPrice float64   `json:"unit_price" validate:"gt=0"`
}

// MeasureValue returns the record's contribution for the given measure.
func (r SaleRecord) MeasureValue(m Measure) float64 {
	if m == MeasureQuantity {
		return float64(r.Quantity)
	}
	return r.NetValue
}

// Dataset represents the working set of normalized sales records together
// with ingest metadata.
type Dataset struct {
	Records    []SaleRecord `json:"records"`
	SourceName string       `json:"source_name"`
	IsDefault  bool         `json:"is_default"`
	RowsRead   int          `json:"rows_read"`
	RowsKept   int          `json:"rows_kept"`
	LoadedAt   time.Time    `json:"loaded_at"`
}
