package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"prognoza/internal/series"
	"prognoza/pkg/contracts/domain"
)

// DefaultFitTimeout bounds a single model fit.
const DefaultFitTimeout = 30 * time.Second

// Driver runs the forecaster over every selected product. Products that
// cannot be forecast are skipped with a reason instead of failing the run.
type Driver struct {
	forecaster Forecaster
	logger     *slog.Logger

	fitTimeout     time.Duration
	maxConcurrency int
}

// NewDriver creates a driver around the given forecaster.
func NewDriver(forecaster Forecaster, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		forecaster:     forecaster,
		logger:         logger,
		fitTimeout:     DefaultFitTimeout,
		maxConcurrency: 1,
	}
}

// SetConfiguration sets per-fit timeout and fit parallelism.
func (d *Driver) SetConfiguration(fitTimeout time.Duration, maxConcurrency int) {
	if fitTimeout > 0 {
		d.fitTimeout = fitTimeout
	}
	if maxConcurrency > 0 {
		d.maxConcurrency = maxConcurrency
	}
}

// Run fits and predicts for each SKU in order. The result slice matches the
// input SKU order exactly, including skipped entries, regardless of how the
// fits are scheduled.
func (d *Driver) Run(ctx context.Context, records []domain.SaleRecord, skus []string, measure domain.Measure, horizon int) ([]domain.ProductForecast, error) {
	start := time.Now()

	d.logger.InfoContext(ctx, "starting forecast run",
		"products", len(skus),
		"measure", string(measure),
		"horizon", horizon,
	)

	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}
	if !measure.IsValid() {
		return nil, fmt.Errorf("unknown measure: %q", measure)
	}

	results := make([]domain.ProductForecast, len(skus))

	if d.maxConcurrency <= 1 {
		for i, sku := range skus {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("forecast run cancelled: %w", err)
			}
			results[i] = d.forecastProduct(ctx, records, sku, measure, horizon)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.maxConcurrency)
		for i, sku := range skus {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = d.forecastProduct(gctx, records, sku, measure, horizon)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("forecast run cancelled: %w", err)
		}
	}

	forecasted := 0
	for _, r := range results {
		if r.OK() {
			forecasted++
		}
	}

	d.logger.InfoContext(ctx, "forecast run completed",
		"products", len(skus),
		"forecasted", forecasted,
		"skipped", len(skus)-forecasted,
		"duration", time.Since(start).String(),
	)

	return results, nil
}

// forecastProduct handles one SKU. Fit failures and thin series become
// skips so one bad product does not sink the whole run.
func (d *Driver) forecastProduct(ctx context.Context, records []domain.SaleRecord, sku string, measure domain.Measure, horizon int) domain.ProductForecast {
	points := series.Build(records, sku, measure)

	if !series.Sufficient(points) {
		d.logger.WarnContext(ctx, "skipping product with insufficient data",
			"sku", sku,
			"observations", len(points),
		)
		return domain.ProductForecast{
			SKU:     sku,
			Skipped: domain.SkipInsufficientData,
			Detail:  fmt.Sprintf("%d observed months, need at least %d", len(points), series.MinPoints),
		}
	}

	fitCtx, cancel := context.WithTimeout(ctx, d.fitTimeout)
	defer cancel()

	model, err := d.forecaster.Fit(fitCtx, points)
	if err != nil {
		d.logger.WarnContext(ctx, "model fit failed",
			"sku", sku,
			"error", err,
		)
		return domain.ProductForecast{
			SKU:     sku,
			Skipped: domain.SkipFitFailed,
			Detail:  err.Error(),
		}
	}

	predicted := model.Predict(HorizonDates(series.LastObserved(points), horizon))
	ClampNonNegative(predicted)

	return domain.ProductForecast{
		SKU:    sku,
		Points: predicted,
	}
}
