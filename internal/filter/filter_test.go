package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prognoza/pkg/contracts/domain"
)

func testRecords() []domain.SaleRecord {
	date := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []domain.SaleRecord{
		{SKU: "A-1", Category: "Nawozy", Buyer: "Firma X", SaleDate: date, Quantity: 10, NetValue: 100},
		{SKU: "A-2", Category: "Nawozy", Buyer: "Firma Y", SaleDate: date, Quantity: 5, NetValue: 50},
		{SKU: "B-1", Category: "Folie", Buyer: "Firma X", SaleDate: date, Quantity: 3, NetValue: 30},
		{SKU: "B-1", Category: "Folie", Buyer: "Firma Z", SaleDate: date, Quantity: 7, NetValue: 70},
	}
}

func TestApply(t *testing.T) {
	records := testRecords()

	tests := []struct {
		name     string
		sel      Selection
		wantSKUs []string
	}{
		{
			name:     "select all passes everything",
			sel:      SelectAll(),
			wantSKUs: []string{"A-1", "A-2", "B-1", "B-1"},
		},
		{
			name: "category stage restricts",
			sel: Selection{
				Categories: Choice{Values: []string{"Nawozy"}},
				SKUs:       Choice{All: true},
				Buyers:     Choice{All: true},
			},
			wantSKUs: []string{"A-1", "A-2"},
		},
		{
			name: "stages compose",
			sel: Selection{
				Categories: Choice{Values: []string{"Folie"}},
				SKUs:       Choice{All: true},
				Buyers:     Choice{Values: []string{"Firma Z"}},
			},
			wantSKUs: []string{"B-1"},
		},
		{
			name: "empty values with all false matches nothing",
			sel: Selection{
				Categories: Choice{All: true},
				SKUs:       Choice{},
				Buyers:     Choice{All: true},
			},
			wantSKUs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(records, tt.sel)
			gotSKUs := make([]string, 0, len(got))
			for _, rec := range got {
				gotSKUs = append(gotSKUs, rec.SKU)
			}
			assert.Equal(t, tt.wantSKUs, gotSKUs)
		})
	}
}

func TestCategoryOptions(t *testing.T) {
	got := CategoryOptions(testRecords())
	assert.Equal(t, []string{"Folie", "Nawozy"}, got)
}

func TestSKUOptions(t *testing.T) {
	records := testRecords()

	all := SKUOptions(records, Choice{All: true})
	assert.Equal(t, []string{"A-1", "A-2", "B-1"}, all)

	narrowed := SKUOptions(records, Choice{Values: []string{"Folie"}})
	assert.Equal(t, []string{"B-1"}, narrowed)
}

func TestBuyerOptions(t *testing.T) {
	records := testRecords()

	got := BuyerOptions(records, Choice{Values: []string{"Folie"}}, Choice{All: true})
	assert.Equal(t, []string{"Firma X", "Firma Z"}, got)
}

func TestSelectedSKUs(t *testing.T) {
	records := testRecords()

	t.Run("all resolves to sorted available SKUs", func(t *testing.T) {
		got := SelectedSKUs(records, SelectAll())
		assert.Equal(t, []string{"A-1", "A-2", "B-1"}, got)
	})

	t.Run("explicit selection keeps request order", func(t *testing.T) {
		sel := SelectAll()
		sel.SKUs = Choice{Values: []string{"B-1", "A-1"}}
		got := SelectedSKUs(records, sel)
		assert.Equal(t, []string{"B-1", "A-1"}, got)
	})

	t.Run("unknown SKUs are dropped", func(t *testing.T) {
		sel := SelectAll()
		sel.SKUs = Choice{Values: []string{"A-1", "NOPE"}}
		got := SelectedSKUs(records, sel)
		assert.Equal(t, []string{"A-1"}, got)
	})

	t.Run("category stage limits availability", func(t *testing.T) {
		sel := SelectAll()
		sel.Categories = Choice{Values: []string{"Nawozy"}}
		sel.SKUs = Choice{Values: []string{"A-1", "B-1"}}
		got := SelectedSKUs(records, sel)
		assert.Equal(t, []string{"A-1"}, got)
	})
}
