// Package listing derives the filtered and sorted product view shown on the dashboard.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/carlux/carlux-inventory/internal/catalog"
)

// SortMode selects the ordering of the derived view.
type SortMode string

const (
	SortDefault   SortMode = "default"
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
)

// SortModes lists the selectable modes in display order.
var SortModes = []SortMode{SortDefault, SortPriceAsc, SortPriceDesc}

// ParseSortMode maps raw input to a SortMode, falling back to SortDefault.
func ParseSortMode(raw string) SortMode {
	switch mode := SortMode(strings.TrimSpace(raw)); mode {
	case SortPriceAsc, SortPriceDesc:
		return mode
	default:
		return SortDefault
	}
}

// Label is the text shown in the sort selector.
func (m SortMode) Label() string {
	switch m {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	default:
		return "Sort by"
	}
}

// Derive filters products by a case-insensitive title match on the trimmed query, then
// orders them by mode. The input slice is never modified; the result is always a new slice.
func Derive(products []catalog.Product, query string, mode SortMode) []catalog.Product {
	out := filterByTitle(products, query)
	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	}
	return out
}

func filterByTitle(products []catalog.Product, query string) []catalog.Product {
	q := strings.TrimSpace(query)
	if q == "" {
		out := make([]catalog.Product, len(products))
		copy(out, products)
		return out
	}
	// Casers keep internal state and are not shared between calls.
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
