package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterWriteTable(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteTable("prognoza.csv", summaryTable()))

	data, err := os.ReadFile(filepath.Join(dir, "prognoza.csv"))
	require.NoError(t, err)

	// BOM prefix for Excel compatibility.
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))

	content := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "SKU,Prognoza,Min,Max", lines[0])
	assert.Equal(t, "A-1,120.00,100.00,140.00", lines[1])
	assert.Equal(t, "SUMA,185.00,150.00,220.00", lines[3])
}

func TestCSVWriterMonthly(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteTable("monthly.csv", monthlyTable()))

	data, err := os.ReadFile(filepath.Join(dir, "monthly.csv"))
	require.NoError(t, err)

	content := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "styczeń 2024")
	assert.Contains(t, lines[1], "1200.50")
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "0.00", formatFloat(0))
	assert.Equal(t, "1234.57", formatFloat(1234.567))
}
