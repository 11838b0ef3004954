package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"prognoza/internal/dataprocessing"
	"prognoza/internal/exporter"
	"prognoza/internal/filter"
	"prognoza/internal/forecast"
	"prognoza/internal/shaper"
	"prognoza/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "path to a semicolon-separated sales CSV (defaults to the bundled dataset)")
	measure := flag.String("measure", string(domain.MeasureQuantity), "measure to forecast: ilosc or wartosc_netto_pln")
	horizon := flag.Int("horizon", 3, "number of months to forecast (1-12)")
	mode := flag.String("mode", string(shaper.ModeAggregate), "table layout: aggregate or monthly")
	skus := flag.String("skus", "", "comma-separated SKUs to forecast (default: all)")
	output := flag.String("output", exporter.DefaultWorkbookName, "output file, .xlsx or .csv")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	if err := run(*input, *measure, *horizon, *mode, *skus, *output, *timeout); err != nil {
		slog.Error("forecast failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(input, measure string, horizon int, mode, skuList, output string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dataset, err := loadDataset(input)
	if err != nil {
		return err
	}

	slog.Info("dataset loaded",
		slog.String("source", dataset.SourceName),
		slog.Int("rows_read", dataset.RowsRead),
		slog.Int("rows_kept", dataset.RowsKept))

	sel := filter.SelectAll()
	if skuList != "" {
		var values []string
		for _, s := range strings.Split(skuList, ",") {
			if s = strings.TrimSpace(s); s != "" {
				values = append(values, s)
			}
		}
		sel.SKUs = filter.Choice{Values: values}
	}

	records := filter.Apply(dataset.Records, sel)
	selected := filter.SelectedSKUs(dataset.Records, sel)
	if len(selected) == 0 {
		return fmt.Errorf("no SKUs match the selection")
	}

	driver := forecast.NewDriver(forecast.NewLinearForecaster(), slog.Default())
	results, err := driver.Run(ctx, records, selected, domain.Measure(measure), horizon)
	if err != nil {
		return err
	}

	table, err := shaper.Shape(results, domain.Measure(measure), shaper.Mode(mode), shaper.RoundTwoDecimals)
	if err != nil {
		return err
	}

	for _, skipped := range table.Skipped {
		slog.Warn("product skipped",
			slog.String("sku", skipped.SKU),
			slog.String("reason", string(skipped.Reason)),
			slog.String("detail", skipped.Detail))
	}

	if strings.HasSuffix(output, ".csv") {
		if err := exporter.NewCSVWriter(".").WriteTable(output, table); err != nil {
			return err
		}
	} else {
		if err := exporter.NewExcelWriter().WriteFile(table, output); err != nil {
			return err
		}
	}

	slog.Info("forecast written", slog.String("output", output))
	return nil
}

func loadDataset(input string) (*domain.Dataset, error) {
	if input == "" {
		return dataprocessing.DefaultDataset()
	}

	file, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	return dataprocessing.ParseCSV(file, input)
}
