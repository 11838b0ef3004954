package series

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

func TestBuild(t *testing.T) {
	records := []domain.SaleRecord{
		{SKU: "A", SaleDate: monthDate(2023, time.March), Quantity: 10, NetValue: 100},
		{SKU: "A", SaleDate: monthDate(2023, time.January), Quantity: 5, NetValue: 50},
		{SKU: "A", SaleDate: monthDate(2023, time.March), Quantity: 3, NetValue: 30},
		{SKU: "B", SaleDate: monthDate(2023, time.January), Quantity: 99, NetValue: 999},
	}

	points := Build(records, "A", domain.MeasureQuantity)
	require.Len(t, points, 2)

	// Chronological, with same-month records summed and other SKUs ignored.
	assert.Equal(t, monthDate(2023, time.January), points[0].Date)
	assert.InDelta(t, 5, points[0].Value, 0.001)
	assert.Equal(t, monthDate(2023, time.March), points[1].Date)
	assert.InDelta(t, 13, points[1].Value, 0.001)
}

func TestBuildByNetValue(t *testing.T) {
	records := []domain.SaleRecord{
		{SKU: "A", SaleDate: monthDate(2023, time.May), Quantity: 10, NetValue: 120.50},
		{SKU: "A", SaleDate: monthDate(2023, time.May), Quantity: 2, NetValue: 29.50},
	}

	points := Build(records, "A", domain.MeasureNetValue)
	require.Len(t, points, 1)
	assert.InDelta(t, 150.0, points[0].Value, 0.001)
}

func TestBuildEmpty(t *testing.T) {
	points := Build(nil, "A", domain.MeasureQuantity)
	assert.Empty(t, points)
}

func TestSufficient(t *testing.T) {
	one := []domain.SeriesPoint{{Date: monthDate(2023, time.January), Value: 1}}
	two := append(one, domain.SeriesPoint{Date: monthDate(2023, time.February), Value: 2})

	assert.False(t, Sufficient(nil))
	assert.False(t, Sufficient(one))
	assert.True(t, Sufficient(two))
}

func TestLastObserved(t *testing.T) {
	assert.True(t, LastObserved(nil).IsZero())

	points := []domain.SeriesPoint{
		{Date: monthDate(2023, time.January), Value: 1},
		{Date: monthDate(2023, time.November), Value: 2},
	}
	assert.Equal(t, monthDate(2023, time.November), LastObserved(points))
}
