package domain

import (
	"time"
)

// SeriesPoint is one observation of a per-product monthly time series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastPoint is the model output for a single future month.
// All three components are clamped to a minimum of zero before leaving the
// forecast driver; negative sales are not physical.
type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// SkipReason explains why a product produced no forecast.
type SkipReason string

const (
	// SkipInsufficientData means fewer than two monthly observations existed.
	SkipInsufficientData SkipReason = "insufficient_data"
	// SkipFitFailed means the model could not be fit or queried for the series.
	SkipFitFailed SkipReason = "fit_failed"
)

// ProductForecast is the per-product outcome of a forecast run. Exactly one
// of Points or Skipped is meaningful: a skipped product carries no points and
// is excluded from every downstream table, including totals.
type ProductForecast struct {
	SKU     string          `json:"sku"`
	Points  []ForecastPoint `json:"points,omitempty"`
	Skipped SkipReason      `json:"skipped,omitempty"`
	Detail  string          `json:"detail,omitempty"`
}

// OK reports whether the product produced usable forecast points.
func (p ProductForecast) OK() bool {
	return p.Skipped == "" && len(p.Points) > 0
}
