package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"prognoza/internal/filter"
	"prognoza/internal/forecast"
	"prognoza/internal/infrastructure"
	"prognoza/internal/shaper"
	"prognoza/pkg/contracts/domain"
)

// ForecastRequest describes one forecast run. Zero values fall back to the
// service defaults.
type ForecastRequest struct {
	Selection filter.Selection      `json:"selection"`
	Measure   domain.Measure        `json:"measure" validate:"omitempty,oneof=ilosc wartosc_netto_pln"`
	Horizon   int                   `json:"horizon" validate:"omitempty,min=1,max=12"`
	Mode      shaper.Mode           `json:"mode" validate:"omitempty,oneof=aggregate monthly"`
	Rounding  shaper.RoundingPolicy `json:"rounding" validate:"omitempty,oneof=two_decimals by_measure"`
}

// ForecastResponse is a completed run: the shaped table plus run metadata.
type ForecastResponse struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Measure     domain.Measure `json:"measure"`
	Horizon     int            `json:"horizon"`
	Products    int            `json:"products"`
	Table       *shaper.Table  `json:"table"`
}

// ForecastService orchestrates a run: filter the dataset, drive the models
// over the selected SKUs and shape the output table.
type ForecastService struct {
	store          *DatasetStore
	driver         *forecast.Driver
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *infrastructure.ForecastMetrics
	defaultHorizon int
}

// NewForecastService creates the service. Tracer and metrics may be nil in
// tests.
func NewForecastService(store *DatasetStore, driver *forecast.Driver, logger *slog.Logger, defaultHorizon int) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultHorizon < 1 {
		defaultHorizon = 3
	}
	return &ForecastService{
		store:          store,
		driver:         driver,
		logger:         logger,
		defaultHorizon: defaultHorizon,
	}
}

// SetTelemetry attaches the tracer and metrics used for observability.
func (s *ForecastService) SetTelemetry(tracer trace.Tracer, metrics *infrastructure.ForecastMetrics) {
	s.tracer = tracer
	s.metrics = metrics
}

// Run executes a forecast over the active dataset.
func (s *ForecastService) Run(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	start := time.Now()
	req = s.applyDefaults(req)

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "forecast.run",
			trace.WithAttributes(
				attribute.String("measure", string(req.Measure)),
				attribute.Int("horizon", req.Horizon),
				attribute.String("mode", string(req.Mode)),
			))
		defer span.End()
	}

	records, err := s.store.Records()
	if err != nil {
		return nil, fmt.Errorf("forecast run: %w", err)
	}

	filtered := filter.Apply(records, req.Selection)
	skus := filter.SelectedSKUs(records, req.Selection)

	s.logger.InfoContext(ctx, "forecast requested",
		"records", len(records),
		"filtered", len(filtered),
		"products", len(skus),
		"measure", string(req.Measure),
		"horizon", req.Horizon,
		"mode", string(req.Mode),
	)

	results, err := s.driver.Run(ctx, filtered, skus, req.Measure, req.Horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast run: %w", err)
	}

	table, err := shaper.Shape(results, req.Measure, req.Mode, req.Rounding)
	if err != nil {
		return nil, fmt.Errorf("shape results: %w", err)
	}

	s.recordMetrics(ctx, results, time.Since(start))

	return &ForecastResponse{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Measure:     req.Measure,
		Horizon:     req.Horizon,
		Products:    len(skus),
		Table:       table,
	}, nil
}

func (s *ForecastService) applyDefaults(req ForecastRequest) ForecastRequest {
	if req.Measure == "" {
		req.Measure = domain.MeasureQuantity
	}
	if req.Horizon == 0 {
		req.Horizon = s.defaultHorizon
	}
	if req.Mode == "" {
		req.Mode = shaper.ModeAggregate
	}
	if req.Rounding == "" {
		req.Rounding = shaper.RoundTwoDecimals
	}
	return req
}

func (s *ForecastService) recordMetrics(ctx context.Context, results []domain.ProductForecast, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RunsTotal.Add(ctx, 1)
	for _, r := range results {
		outcome := "forecasted"
		if !r.OK() {
			outcome = string(r.Skipped)
		}
		s.metrics.RecordProductOutcome(ctx, outcome, elapsed.Seconds())
	}
}
