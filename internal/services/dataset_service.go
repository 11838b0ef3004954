package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"prognoza/internal/dataprocessing"
	"prognoza/internal/filter"
	"prognoza/internal/infrastructure"
	"prognoza/pkg/contracts/domain"
)

// ErrNoUsableRows marks an upload whose schema parsed but every row was
// dropped during normalization.
var ErrNoUsableRows = errors.New("dataset contains no usable rows")

// DatasetInfo summarizes the active dataset for API consumers.
type DatasetInfo struct {
	SourceName string `json:"source_name"`
	IsDefault  bool   `json:"is_default"`
	RowsRead   int    `json:"rows_read"`
	RowsKept   int    `json:"rows_kept"`
}

// FilterOptions lists the values available to each selection stage, given
// the choices already made upstream of it.
type FilterOptions struct {
	Categories []string `json:"categories"`
	SKUs       []string `json:"skus"`
	Buyers     []string `json:"buyers"`
}

// DatasetService manages the dataset lifecycle: uploads, info and the
// drill-down options the selection UI offers.
type DatasetService struct {
	store   *DatasetStore
	logger  *slog.Logger
	metrics *infrastructure.ForecastMetrics
}

// NewDatasetService creates the service.
func NewDatasetService(store *DatasetStore, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{store: store, logger: logger}
}

// SetTelemetry attaches the metrics used for observability.
func (s *DatasetService) SetTelemetry(metrics *infrastructure.ForecastMetrics) {
	s.metrics = metrics
}

// Upload parses a CSV export and makes it the active dataset. The previous
// dataset stays active when parsing fails.
func (s *DatasetService) Upload(ctx context.Context, r io.Reader, sourceName string) (*DatasetInfo, error) {
	dataset, err := dataprocessing.ParseCSV(r, sourceName)
	if err != nil {
		return nil, fmt.Errorf("upload dataset: %w", err)
	}
	if dataset.RowsKept == 0 {
		return nil, fmt.Errorf("upload dataset %q: %w", sourceName, ErrNoUsableRows)
	}

	s.store.Replace(dataset)

	if s.metrics != nil {
		s.metrics.DatasetRowsKept.Add(ctx, int64(dataset.RowsKept))
	}

	return datasetInfo(dataset), nil
}

// Info describes the active dataset.
func (s *DatasetService) Info() (*DatasetInfo, error) {
	dataset, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return datasetInfo(dataset), nil
}

// Options computes the drill-down values for the given selection. The SKU
// list honours the category choices and the buyer list honours both.
func (s *DatasetService) Options(sel filter.Selection) (*FilterOptions, error) {
	records, err := s.store.Records()
	if err != nil {
		return nil, err
	}
	return &FilterOptions{
		Categories: filter.CategoryOptions(records),
		SKUs:       filter.SKUOptions(records, sel.Categories),
		Buyers:     filter.BuyerOptions(records, sel.Categories, sel.SKUs),
	}, nil
}

func datasetInfo(dataset *domain.Dataset) *DatasetInfo {
	return &DatasetInfo{
		SourceName: dataset.SourceName,
		IsDefault:  dataset.IsDefault,
		RowsRead:   dataset.RowsRead,
		RowsKept:   dataset.RowsKept,
	}
}
