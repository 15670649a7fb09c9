package listing

import (
	"github.com/carlux/carlux-inventory/internal/catalog"
)

// Model holds fetched products and the search and sort inputs, and memoizes the derived view.
// Only products, the debounced query and the sort mode invalidate the memo. Model is not
// safe for concurrent use; its owner serialises access.
type Model struct {
	products  []catalog.Product
	total     *int
	query     string
	debounced string
	sort      SortMode

	view        []catalog.Product
	valid       bool
	derivations int
}

// NewModel returns an empty model with the default sort.
func NewModel() *Model {
	return &Model{sort: SortDefault}
}

// SetProducts replaces the stored products wholesale.
func (m *Model) SetProducts(products []catalog.Product, total *int) {
	m.products = products
	m.total = total
	m.valid = false
}

// SetQuery records the immediate search text. It does not trigger a new derivation.
func (m *Model) SetQuery(q string) {
	m.query = q
}

// SetDebouncedQuery records the settled search text used for filtering.
func (m *Model) SetDebouncedQuery(q string) {
	if q == m.debounced {
		return
	}
	m.debounced = q
	m.valid = false
}

// SetSort selects the ordering.
func (m *Model) SetSort(mode SortMode) {
	if mode == m.sort {
		return
	}
	m.sort = mode
	m.valid = false
}

// Products returns the stored products in fetch order.
func (m *Model) Products() []catalog.Product { return m.products }

// Total returns the advisory total from the last successful fetch.
func (m *Model) Total() *int { return m.total }

// Query returns the immediate search text.
func (m *Model) Query() string { return m.query }

// DebouncedQuery returns the settled search text.
func (m *Model) DebouncedQuery() string { return m.debounced }

// Sort returns the current sort mode.
func (m *Model) Sort() SortMode { return m.sort }

// View returns the derived view, recomputing it only when an input changed.
// The returned slice must not be modified.
func (m *Model) View() []catalog.Product {
	if !m.valid {
		m.view = Derive(m.products, m.debounced, m.sort)
		m.valid = true
		m.derivations++
	}
	return m.view
}
