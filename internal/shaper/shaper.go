// Package shaper turns raw per-product forecasts into the tables the API
// and the export serve: an aggregate summary with a grand total row, or a
// month-by-month breakdown.
package shaper

import (
	"fmt"
	"math"
	"time"

	"prognoza/pkg/contracts/domain"
)

// TotalLabel is the SKU label of the grand total row.
const TotalLabel = "SUMA"

// Mode selects the table layout.
type Mode string

const (
	// ModeAggregate sums each product over the whole horizon.
	ModeAggregate Mode = "aggregate"
	// ModeMonthly keeps one row per product per horizon month.
	ModeMonthly Mode = "monthly"
)

// IsValid reports whether the mode is one of the known layouts.
func (m Mode) IsValid() bool {
	return m == ModeAggregate || m == ModeMonthly
}

// RoundingPolicy controls how forecast numbers are rounded in monthly
// tables. Aggregate tables always round by measure.
type RoundingPolicy string

const (
	// RoundTwoDecimals keeps two decimal places for every measure.
	RoundTwoDecimals RoundingPolicy = "two_decimals"
	// RoundByMeasure rounds quantities to whole units and values to two
	// decimal places.
	RoundByMeasure RoundingPolicy = "by_measure"
)

// SummaryRow is one line of the aggregate table. The grand total carries
// the TotalLabel SKU and is always last.
type SummaryRow struct {
	SKU      string  `json:"sku"`
	Forecast float64 `json:"forecast"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	IsTotal  bool    `json:"is_total,omitempty"`
}

// MonthlyRow is one line of the monthly table.
type MonthlyRow struct {
	SKU      string    `json:"sku"`
	Date     time.Time `json:"date"`
	Month    string    `json:"month"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// SkippedProduct reports a product that produced no forecast.
type SkippedProduct struct {
	SKU    string            `json:"sku"`
	Reason domain.SkipReason `json:"reason"`
	Detail string            `json:"detail,omitempty"`
}

// Table is the shaped forecast result. Exactly one of Summary and Monthly
// is populated, according to Mode.
type Table struct {
	Mode    Mode            `json:"mode"`
	Measure domain.Measure  `json:"measure"`
	Summary []SummaryRow    `json:"summary,omitempty"`
	Monthly []MonthlyRow    `json:"monthly,omitempty"`
	Skipped []SkippedProduct `json:"skipped,omitempty"`
}

// Shape builds the table for the given mode. Skipped products are
// reported separately and never contribute to totals.
func Shape(results []domain.ProductForecast, measure domain.Measure, mode Mode, policy RoundingPolicy) (*Table, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}
	if policy != RoundTwoDecimals && policy != RoundByMeasure {
		return nil, fmt.Errorf("unknown rounding policy: %q", policy)
	}

	table := &Table{Mode: mode, Measure: measure}

	for _, r := range results {
		if !r.OK() {
			table.Skipped = append(table.Skipped, SkippedProduct{
				SKU:    r.SKU,
				Reason: r.Skipped,
				Detail: r.Detail,
			})
		}
	}

	switch mode {
	case ModeAggregate:
		table.Summary = shapeAggregate(results, measure)
	case ModeMonthly:
		table.Monthly = shapeMonthly(results, measure, policy)
	}

	return table, nil
}

// shapeAggregate sums each product over the horizon and appends the grand
// total. Aggregate numbers always round by measure: whole units for
// quantity, two decimals for value.
func shapeAggregate(results []domain.ProductForecast, measure domain.Measure) []SummaryRow {
	rows := make([]SummaryRow, 0, len(results)+1)
	var total SummaryRow

	for _, r := range results {
		if !r.OK() {
			continue
		}
		row := SummaryRow{SKU: r.SKU}
		for _, p := range r.Points {
			row.Forecast += p.Predicted
			row.Lower += p.Lower
			row.Upper += p.Upper
		}
		total.Forecast += row.Forecast
		total.Lower += row.Lower
		total.Upper += row.Upper

		row.Forecast = roundForMeasure(row.Forecast, measure)
		row.Lower = roundForMeasure(row.Lower, measure)
		row.Upper = roundForMeasure(row.Upper, measure)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return rows
	}

	// Totals are rounded from the unrounded sums, not from rounded rows.
	total.SKU = TotalLabel
	total.IsTotal = true
	total.Forecast = roundForMeasure(total.Forecast, measure)
	total.Lower = roundForMeasure(total.Lower, measure)
	total.Upper = roundForMeasure(total.Upper, measure)
	return append(rows, total)
}

func shapeMonthly(results []domain.ProductForecast, measure domain.Measure, policy RoundingPolicy) []MonthlyRow {
	var rows []MonthlyRow
	for _, r := range results {
		if !r.OK() {
			continue
		}
		for _, p := range r.Points {
			row := MonthlyRow{
				SKU:   r.SKU,
				Date:  p.Date,
				Month: MonthLabel(p.Date),
			}
			if policy == RoundByMeasure {
				row.Forecast = roundForMeasure(p.Predicted, measure)
				row.Lower = roundForMeasure(p.Lower, measure)
				row.Upper = roundForMeasure(p.Upper, measure)
			} else {
				row.Forecast = round2(p.Predicted)
				row.Lower = round2(p.Lower)
				row.Upper = round2(p.Upper)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// polishMonths indexes Polish month names by time.Month.
var polishMonths = [...]string{
	time.January:   "styczeń",
	time.February:  "luty",
	time.March:     "marzec",
	time.April:     "kwiecień",
	time.May:       "maj",
	time.June:      "czerwiec",
	time.July:      "lipiec",
	time.August:    "sierpień",
	time.September: "wrzesień",
	time.October:   "październik",
	time.November:  "listopad",
	time.December:  "grudzień",
}

// MonthLabel formats a horizon month the way the reports name it,
// e.g. "styczeń 2024".
func MonthLabel(date time.Time) string {
	return fmt.Sprintf("%s %d", polishMonths[date.Month()], date.Year())
}

// roundForMeasure rounds quantities to whole units and monetary values to
// two decimal places.
func roundForMeasure(v float64, measure domain.Measure) float64 {
	if measure == domain.MeasureQuantity {
		return math.Round(v)
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
