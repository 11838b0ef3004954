package dataprocessing

import (
	"bytes"
	_ "embed"
	"fmt"

	"prognoza/pkg/contracts/domain"
)

//go:embed data/2023_sprzedaz_b2b.csv
var defaultDatasetCSV []byte

// DefaultDatasetName is the source name reported for the bundled dataset.
const DefaultDatasetName = "2023_sprzedaz_b2b.csv"

// DefaultDataset parses the sales export bundled with the binary. It is
// served until an upload replaces it.
func DefaultDataset() (*domain.Dataset, error) {
	dataset, err := ParseCSV(bytes.NewReader(defaultDatasetCSV), DefaultDatasetName)
	if err != nil {
		return nil, fmt.Errorf("failed to load bundled dataset: %w", err)
	}
	dataset.IsDefault = true
	return dataset, nil
}
