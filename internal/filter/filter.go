// Package filter narrows a sales dataset through category, SKU and buyer
// selections applied in sequence, mirroring how an analyst drills into the
// data: each stage only sees what the previous stages let through.
package filter

import (
	"sort"

	"prognoza/pkg/contracts/domain"
)

// Dimension names a filterable attribute of a sale record.
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionSKU      Dimension = "sku"
	DimensionBuyer    Dimension = "buyer"
)

// Choice is a per-dimension selection. All set means no restriction;
// otherwise only records whose attribute is in Values pass. An explicit
// empty Values with All false matches nothing.
type Choice struct {
	All    bool     `json:"all"`
	Values []string `json:"values"`
}

// matches reports whether v passes the choice.
func (c Choice) matches(v string) bool {
	if c.All {
		return true
	}
	for _, want := range c.Values {
		if want == v {
			return true
		}
	}
	return false
}

// Selection is the full drill-down: categories first, then SKUs within the
// surviving categories, then buyers within the surviving SKUs.
type Selection struct {
	Categories Choice `json:"categories"`
	SKUs       Choice `json:"skus"`
	Buyers     Choice `json:"buyers"`
}

// SelectAll returns a selection that passes every record.
func SelectAll() Selection {
	return Selection{
		Categories: Choice{All: true},
		SKUs:       Choice{All: true},
		Buyers:     Choice{All: true},
	}
}

// Apply runs the three stages in order and returns the surviving records.
// Input order is preserved.
func Apply(records []domain.SaleRecord, sel Selection) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0, len(records))
	for _, rec := range records {
		if !sel.Categories.matches(rec.Category) {
			continue
		}
		if !sel.SKUs.matches(rec.SKU) {
			continue
		}
		if !sel.Buyers.matches(rec.Buyer) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// CategoryOptions lists the distinct categories in the dataset, sorted.
func CategoryOptions(records []domain.SaleRecord) []string {
	return distinct(records, func(r domain.SaleRecord) string { return r.Category })
}

// SKUOptions lists the distinct SKUs that survive the category stage.
// The SKU picker only ever offers SKUs from the chosen categories.
func SKUOptions(records []domain.SaleRecord, categories Choice) []string {
	var values []string
	seen := make(map[string]bool)
	for _, rec := range records {
		if !categories.matches(rec.Category) {
			continue
		}
		if !seen[rec.SKU] {
			seen[rec.SKU] = true
			values = append(values, rec.SKU)
		}
	}
	sort.Strings(values)
	return values
}

// BuyerOptions lists the distinct buyers that survive the category and SKU
// stages.
func BuyerOptions(records []domain.SaleRecord, categories, skus Choice) []string {
	var values []string
	seen := make(map[string]bool)
	for _, rec := range records {
		if !categories.matches(rec.Category) || !skus.matches(rec.SKU) {
			continue
		}
		if !seen[rec.Buyer] {
			seen[rec.Buyer] = true
			values = append(values, rec.Buyer)
		}
	}
	sort.Strings(values)
	return values
}

// SelectedSKUs resolves the SKU stage into the concrete, ordered list of
// SKUs a forecast run should iterate over. With All set this is every SKU
// surviving the category stage, sorted; otherwise it is the requested
// values in request order, limited to those actually present.
func SelectedSKUs(records []domain.SaleRecord, sel Selection) []string {
	available := SKUOptions(records, sel.Categories)
	if sel.SKUs.All {
		return available
	}

	present := make(map[string]bool, len(available))
	for _, sku := range available {
		present[sku] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, sku := range sel.SKUs.Values {
		if present[sku] && !seen[sku] {
			seen[sku] = true
			out = append(out, sku)
		}
	}
	return out
}

func distinct(records []domain.SaleRecord, key func(domain.SaleRecord) string) []string {
	var values []string
	seen := make(map[string]bool)
	for _, rec := range records {
		v := key(rec)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}
