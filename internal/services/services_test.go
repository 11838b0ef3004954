package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognoza/internal/filter"
	"prognoza/internal/forecast"
	"prognoza/internal/shaper"
	"prognoza/pkg/contracts/domain"
)

const uploadCSV = `sku;Kategoria_Produktu;nabywca;Rok_data_sprzedazy;Miesiac_data_sprzedazy;ilosc;wartosc_netto_pln
X-1;Chemia;Firma Q;2023;1;10;100,00
X-1;Chemia;Firma Q;2023;2;12;120,00
X-1;Chemia;Firma Q;2023;3;14;140,00
Y-1;Chemia;Firma R;2023;5;7;70,00
`

func newTestStore(t *testing.T) *DatasetStore {
	t.Helper()
	store := NewDatasetStore(nil)
	require.NoError(t, store.LoadDefault())
	return store
}

func TestDatasetStore(t *testing.T) {
	t.Run("empty store errors", func(t *testing.T) {
		store := NewDatasetStore(nil)
		_, err := store.Current()
		assert.Error(t, err)
		_, err = store.Records()
		assert.Error(t, err)
	})

	t.Run("default dataset loads", func(t *testing.T) {
		store := newTestStore(t)
		dataset, err := store.Current()
		require.NoError(t, err)
		assert.True(t, dataset.IsDefault)
		assert.NotEmpty(t, dataset.Records)
	})

	t.Run("records are copied", func(t *testing.T) {
		store := newTestStore(t)
		records, err := store.Records()
		require.NoError(t, err)
		records[0].SKU = "MUTATED"

		again, err := store.Records()
		require.NoError(t, err)
		assert.NotEqual(t, "MUTATED", again[0].SKU)
	})
}

func TestDatasetServiceUpload(t *testing.T) {
	store := newTestStore(t)
	svc := NewDatasetService(store, nil)

	info, err := svc.Upload(context.Background(), strings.NewReader(uploadCSV), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, "upload.csv", info.SourceName)
	assert.False(t, info.IsDefault)
	assert.Equal(t, 4, info.RowsKept)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "upload.csv", current.SourceName)
}

func TestDatasetServiceUploadBadFile(t *testing.T) {
	store := newTestStore(t)
	svc := NewDatasetService(store, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("sku;ilosc\nA;1\n"), "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")

	// The previous dataset stays active.
	current, err := store.Current()
	require.NoError(t, err)
	assert.True(t, current.IsDefault)
}

func TestDatasetServiceUploadNoUsableRows(t *testing.T) {
	store := newTestStore(t)
	svc := NewDatasetService(store, nil)

	input := "sku;Kategoria_Produktu;nabywca;Rok_data_sprzedazy;Miesiac_data_sprzedazy;ilosc;wartosc_netto_pln\n" +
		"X-1;Chemia;Firma Q;2023;1;0;0,00\n"

	_, err := svc.Upload(context.Background(), strings.NewReader(input), "pusty.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoUsableRows)

	current, err := store.Current()
	require.NoError(t, err)
	assert.True(t, current.IsDefault)
}

func TestDatasetServiceOptions(t *testing.T) {
	store := NewDatasetStore(nil)
	svc := NewDatasetService(store, nil)
	_, err := svc.Upload(context.Background(), strings.NewReader(uploadCSV), "upload.csv")
	require.NoError(t, err)

	opts, err := svc.Options(filter.SelectAll())
	require.NoError(t, err)

	assert.Equal(t, []string{"Chemia"}, opts.Categories)
	assert.Equal(t, []string{"X-1", "Y-1"}, opts.SKUs)
	assert.Equal(t, []string{"Firma Q", "Firma R"}, opts.Buyers)
}

func TestForecastServiceRun(t *testing.T) {
	store := NewDatasetStore(nil)
	datasetSvc := NewDatasetService(store, nil)
	_, err := datasetSvc.Upload(context.Background(), strings.NewReader(uploadCSV), "upload.csv")
	require.NoError(t, err)

	driver := forecast.NewDriver(forecast.NewLinearForecaster(), nil)
	svc := NewForecastService(store, driver, nil, 3)

	resp, err := svc.Run(context.Background(), ForecastRequest{Selection: filter.SelectAll()})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, domain.MeasureQuantity, resp.Measure)
	assert.Equal(t, 3, resp.Horizon)
	assert.Equal(t, 2, resp.Products)

	require.NotNil(t, resp.Table)
	assert.Equal(t, shaper.ModeAggregate, resp.Table.Mode)

	// X-1 forecasts; Y-1 has one observation and is skipped, so the
	// summary holds X-1 plus the grand total.
	require.Len(t, resp.Table.Summary, 2)
	assert.Equal(t, "X-1", resp.Table.Summary[0].SKU)
	assert.Equal(t, shaper.TotalLabel, resp.Table.Summary[1].SKU)

	require.Len(t, resp.Table.Skipped, 1)
	assert.Equal(t, "Y-1", resp.Table.Skipped[0].SKU)
	assert.Equal(t, domain.SkipInsufficientData, resp.Table.Skipped[0].Reason)
}

func TestForecastServiceRunMonthly(t *testing.T) {
	store := NewDatasetStore(nil)
	datasetSvc := NewDatasetService(store, nil)
	_, err := datasetSvc.Upload(context.Background(), strings.NewReader(uploadCSV), "upload.csv")
	require.NoError(t, err)

	driver := forecast.NewDriver(forecast.NewLinearForecaster(), nil)
	svc := NewForecastService(store, driver, nil, 3)

	sel := filter.SelectAll()
	sel.SKUs = filter.Choice{Values: []string{"X-1"}}

	resp, err := svc.Run(context.Background(), ForecastRequest{
		Selection: sel,
		Measure:   domain.MeasureNetValue,
		Horizon:   2,
		Mode:      shaper.ModeMonthly,
	})
	require.NoError(t, err)

	require.Len(t, resp.Table.Monthly, 2)
	assert.Equal(t, "styczeń 2024", resp.Table.Monthly[0].Month)
	assert.Equal(t, "luty 2024", resp.Table.Monthly[1].Month)
}

func TestForecastServiceRunDeterministic(t *testing.T) {
	store := newTestStore(t)
	driver := forecast.NewDriver(forecast.NewLinearForecaster(), nil)
	svc := NewForecastService(store, driver, nil, 3)

	req := ForecastRequest{
		Selection: filter.SelectAll(),
		Measure:   domain.MeasureNetValue,
		Horizon:   4,
		Mode:      shaper.ModeMonthly,
	}

	first, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	// Same dataset and selection, same tables.
	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Products, second.Products)
}

func TestForecastServiceEmptySelection(t *testing.T) {
	store := newTestStore(t)
	driver := forecast.NewDriver(forecast.NewLinearForecaster(), nil)
	svc := NewForecastService(store, driver, nil, 3)

	sel := filter.SelectAll()
	sel.Categories = filter.Choice{Values: []string{"Nie ma takiej"}}

	resp, err := svc.Run(context.Background(), ForecastRequest{Selection: sel})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Products)
	assert.Empty(t, resp.Table.Summary)
	assert.Empty(t, resp.Table.Skipped)
}

func TestForecastServiceNoDataset(t *testing.T) {
	store := NewDatasetStore(nil)
	driver := forecast.NewDriver(forecast.NewLinearForecaster(), nil)
	svc := NewForecastService(store, driver, nil, 3)

	_, err := svc.Run(context.Background(), ForecastRequest{Selection: filter.SelectAll()})
	assert.Error(t, err)
}
