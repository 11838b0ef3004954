// Package forecast fits per-product models on monthly sales series and
// projects them over a fixed horizon of future months.
package forecast

import (
	"context"
	"time"

	"prognoza/pkg/contracts/domain"
)

// Forecaster fits a model on an observed series. Implementations must be
// safe for concurrent use; the returned model belongs to the caller.
type Forecaster interface {
	Fit(ctx context.Context, points []domain.SeriesPoint) (Model, error)
}

// Model projects fitted behaviour onto future dates.
type Model interface {
	Predict(dates []time.Time) []domain.ForecastPoint
}

// HorizonDates returns the n month starts the forecast covers. The horizon
// always begins at January of the year after the last observation, so a
// series ending mid-year still produces a full next-year outlook.
func HorizonDates(lastObserved time.Time, n int) []time.Time {
	start := time.Date(lastObserved.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		dates[i] = start.AddDate(0, i, 0)
	}
	return dates
}

// ClampNonNegative floors predictions and both interval bounds at zero.
// Negative sales are not a thing the business plans for.
func ClampNonNegative(points []domain.ForecastPoint) {
	for i := range points {
		if points[i].Predicted < 0 {
			points[i].Predicted = 0
		}
		if points[i].Lower < 0 {
			points[i].Lower = 0
		}
		if points[i].Upper < 0 {
			points[i].Upper = 0
		}
	}
}
