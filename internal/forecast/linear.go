package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"prognoza/pkg/contracts/domain"
)

// intervalZ is the z-score for a 95% prediction interval.
const intervalZ = 1.96

// LinearForecaster fits an ordinary least squares trend over the monthly
// index of the series. Months with no sales are simply absent from the fit
// rather than treated as zeros.
type LinearForecaster struct{}

// NewLinearForecaster returns the default trend forecaster.
func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

// Fit estimates slope and intercept over (month index, value) pairs, where
// the index counts calendar months since the first observation.
func (f *LinearForecaster) Fit(ctx context.Context, points []domain.SeriesPoint) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 points, got %d", len(points))
	}

	origin := points[0].Date

	var sumX, sumY, sumXX, sumXY float64
	for _, p := range points {
		x := float64(monthsBetween(origin, p.Date))
		sumX += x
		sumY += p.Value
		sumXX += x * x
		sumXY += x * p.Value
	}

	n := float64(len(points))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil, fmt.Errorf("degenerate series: all points share one month")
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// Residual standard deviation drives the interval width.
	var sse float64
	for _, p := range points {
		x := float64(monthsBetween(origin, p.Date))
		resid := p.Value - (intercept + slope*x)
		sse += resid * resid
	}
	var sigma float64
	if len(points) > 2 {
		sigma = math.Sqrt(sse / (n - 2))
	}

	return &linearModel{
		origin:    origin,
		slope:     slope,
		intercept: intercept,
		sigma:     sigma,
	}, nil
}

type linearModel struct {
	origin    time.Time
	slope     float64
	intercept float64
	sigma     float64
}

func (m *linearModel) Predict(dates []time.Time) []domain.ForecastPoint {
	points := make([]domain.ForecastPoint, len(dates))
	for i, date := range dates {
		x := float64(monthsBetween(m.origin, date))
		predicted := m.intercept + m.slope*x
		margin := intervalZ * m.sigma
		points[i] = domain.ForecastPoint{
			Date:      date,
			Predicted: predicted,
			Lower:     predicted - margin,
			Upper:     predicted + margin,
		}
	}
	return points
}

// monthsBetween counts calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
