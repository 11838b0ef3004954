package shaper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognoza/pkg/contracts/domain"
)

func monthDate(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func shaperResults() []domain.ProductForecast {
	return []domain.ProductForecast{
		{
			SKU: "A",
			Points: []domain.ForecastPoint{
				{Date: monthDate(2024, time.January), Predicted: 10.4, Lower: 8.2, Upper: 12.6},
				{Date: monthDate(2024, time.February), Predicted: 11.3, Lower: 9.1, Upper: 13.5},
			},
		},
		{
			SKU:     "B",
			Skipped: domain.SkipInsufficientData,
			Detail:  "1 observed months, need at least 2",
		},
		{
			SKU: "C",
			Points: []domain.ForecastPoint{
				{Date: monthDate(2024, time.January), Predicted: 5.25, Lower: 4.75, Upper: 5.75},
				{Date: monthDate(2024, time.February), Predicted: 5.50, Lower: 5.00, Upper: 6.00},
			},
		},
	}
}

func TestShapeAggregateQuantity(t *testing.T) {
	table, err := Shape(shaperResults(), domain.MeasureQuantity, ModeAggregate, RoundTwoDecimals)
	require.NoError(t, err)

	assert.Equal(t, ModeAggregate, table.Mode)
	assert.Empty(t, table.Monthly)
	require.Len(t, table.Summary, 3)

	// A: 10.4 + 11.3 = 21.7 rounds to whole units for quantity.
	assert.Equal(t, SummaryRow{SKU: "A", Forecast: 22, Lower: 17, Upper: 26}, table.Summary[0])
	// C: 5.25 + 5.50 = 10.75 rounds to 11.
	assert.Equal(t, "C", table.Summary[1].SKU)
	assert.Equal(t, 11.0, table.Summary[1].Forecast)

	// Grand total last, rounded from unrounded sums: 21.7 + 10.75 = 32.45 -> 32.
	total := table.Summary[2]
	assert.Equal(t, TotalLabel, total.SKU)
	assert.True(t, total.IsTotal)
	assert.Equal(t, 32.0, total.Forecast)

	// B is reported as skipped and excluded from the total.
	require.Len(t, table.Skipped, 1)
	assert.Equal(t, "B", table.Skipped[0].SKU)
	assert.Equal(t, domain.SkipInsufficientData, table.Skipped[0].Reason)
}

func TestShapeAggregateNetValue(t *testing.T) {
	table, err := Shape(shaperResults(), domain.MeasureNetValue, ModeAggregate, RoundTwoDecimals)
	require.NoError(t, err)
	require.Len(t, table.Summary, 3)

	// Values keep two decimals.
	assert.Equal(t, 21.7, table.Summary[0].Forecast)
	assert.Equal(t, 10.75, table.Summary[1].Forecast)
	assert.Equal(t, 32.45, table.Summary[2].Forecast)
}

func TestShapeMonthly(t *testing.T) {
	table, err := Shape(shaperResults(), domain.MeasureQuantity, ModeMonthly, RoundTwoDecimals)
	require.NoError(t, err)

	assert.Empty(t, table.Summary)
	require.Len(t, table.Monthly, 4)

	first := table.Monthly[0]
	assert.Equal(t, "A", first.SKU)
	assert.Equal(t, "styczeń 2024", first.Month)
	// Default policy keeps two decimals even for quantities.
	assert.Equal(t, 10.4, first.Forecast)

	assert.Equal(t, "luty 2024", table.Monthly[1].Month)
	assert.Equal(t, "C", table.Monthly[2].SKU)
}

func TestShapeMonthlyByMeasurePolicy(t *testing.T) {
	table, err := Shape(shaperResults(), domain.MeasureQuantity, ModeMonthly, RoundByMeasure)
	require.NoError(t, err)
	require.Len(t, table.Monthly, 4)

	// By-measure policy rounds quantities to whole units per month.
	assert.Equal(t, 10.0, table.Monthly[0].Forecast)
	assert.Equal(t, 11.0, table.Monthly[1].Forecast)
}

func TestShapeAllSkipped(t *testing.T) {
	results := []domain.ProductForecast{
		{SKU: "X", Skipped: domain.SkipFitFailed, Detail: "boom"},
	}

	table, err := Shape(results, domain.MeasureQuantity, ModeAggregate, RoundTwoDecimals)
	require.NoError(t, err)

	// No products means no rows and no total.
	assert.Empty(t, table.Summary)
	require.Len(t, table.Skipped, 1)
	assert.Equal(t, domain.SkipFitFailed, table.Skipped[0].Reason)
}

func TestShapeValidation(t *testing.T) {
	_, err := Shape(nil, domain.MeasureQuantity, Mode("bogus"), RoundTwoDecimals)
	assert.Error(t, err)

	_, err = Shape(nil, domain.MeasureQuantity, ModeAggregate, RoundingPolicy("bogus"))
	assert.Error(t, err)
}

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "styczeń 2024"},
		{time.May, "maj 2024"},
		{time.October, "październik 2024"},
		{time.December, "grudzień 2024"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthLabel(monthDate(2024, tt.month)))
	}
}
