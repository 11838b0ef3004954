package services

import (
	"fmt"
	"log/slog"
	"sync"

	"prognoza/internal/dataprocessing"
	"prognoza/pkg/contracts/domain"
)

// DatasetStore holds the sales dataset forecasts run against. A bundled
// default dataset is served until an upload replaces it; uploads swap the
// whole dataset atomically.
type DatasetStore struct {
	mu      sync.RWMutex
	current *domain.Dataset
	logger  *slog.Logger
}

// NewDatasetStore creates an empty store.
func NewDatasetStore(logger *slog.Logger) *DatasetStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetStore{logger: logger}
}

// LoadDefault installs the bundled dataset. Called once at startup.
func (s *DatasetStore) LoadDefault() error {
	dataset, err := dataprocessing.DefaultDataset()
	if err != nil {
		return fmt.Errorf("load default dataset: %w", err)
	}
	s.Replace(dataset)
	return nil
}

// Replace swaps in a new dataset.
func (s *DatasetStore) Replace(dataset *domain.Dataset) {
	s.mu.Lock()
	s.current = dataset
	s.mu.Unlock()

	s.logger.Info("dataset replaced",
		"source", dataset.SourceName,
		"rows_read", dataset.RowsRead,
		"rows_kept", dataset.RowsKept,
		"default", dataset.IsDefault,
	)
}

// Current returns the active dataset, or an error when none is loaded.
func (s *DatasetStore) Current() (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}
	return s.current, nil
}

// Records returns a copy of the active records, safe to filter and slice
// without holding the store lock.
func (s *DatasetStore) Records() ([]domain.SaleRecord, error) {
	dataset, err := s.Current()
	if err != nil {
		return nil, err
	}
	records := make([]domain.SaleRecord, len(dataset.Records))
	copy(records, dataset.Records)
	return records, nil
}
