// Package series turns filtered sale records into monthly time series,
// one per SKU, ready for model fitting.
package series

import (
	"sort"
	"time"

	"prognoza/pkg/contracts/domain"
)

// MinPoints is the smallest series a model can be fitted on. A single
// observation gives a trend no direction.
const MinPoints = 2

// Build aggregates the records of one SKU into a chronological monthly
// series of the requested measure. Months with no sales simply do not
// appear; the models work on observed points, not a dense calendar.
func Build(records []domain.SaleRecord, sku string, measure domain.Measure) []domain.SeriesPoint {
	totals := make(map[time.Time]float64)
	for _, rec := range records {
		if rec.SKU != sku {
			continue
		}
		totals[rec.SaleDate] += rec.MeasureValue(measure)
	}

	points := make([]domain.SeriesPoint, 0, len(totals))
	for date, value := range totals {
		points = append(points, domain.SeriesPoint{Date: date, Value: value})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// Sufficient reports whether the series has enough observations to fit.
func Sufficient(points []domain.SeriesPoint) bool {
	return len(points) >= MinPoints
}

// LastObserved returns the date of the newest point. The zero time means
// the series is empty.
func LastObserved(points []domain.SeriesPoint) time.Time {
	if len(points) == 0 {
		return time.Time{}
	}
	return points[len(points)-1].Date
}
