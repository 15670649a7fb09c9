package dashboard

import (
	"strings"

	"github.com/carlux/carlux-inventory/internal/card"
	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/listing"
)

// Branch names the region the page renders below the controls.
type Branch string

const (
	BranchLoading Branch = "loading"
	BranchError   Branch = "error"
	BranchEmpty   Branch = "empty"
	BranchGrid    Branch = "grid"
)

// SortOption is one entry of the sort selector.
type SortOption struct {
	Value    listing.SortMode
	Label    string
	Selected bool
}

// View is a point-in-time rendering snapshot of a shell.
type View struct {
	Phase        Phase
	Branch       Branch
	Loading      bool
	Error        string
	Headline     string
	SearchQuery  string
	AppliedQuery string
	SettleMillis int64
	Sort         listing.SortMode
	SortOptions  []SortOption
	Products     []catalog.Product
	Cards        []card.View
	Skeletons    []card.Skeleton
	Shown        int
	Total        *int
	EmptyMessage string
}

// HasTotal reports whether the advisory total is known.
func (v View) HasTotal() bool { return v.Total != nil }

// TotalCount dereferences Total, returning zero when unknown.
func (v View) TotalCount() int {
	if v.Total == nil {
		return 0
	}
	return *v.Total
}

// Snapshot captures the state needed to render the dashboard.
func (s *Shell) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(s.model.View(), s.model.Query(), s.model.DebouncedQuery(), s.model.Sort())
}

// Preview renders the current records filtered by q and ordered by mode without touching the
// shell's own search text or sort selection.
func (s *Shell) Preview(q string, mode listing.SortMode) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	mode = listing.ParseSortMode(string(mode))
	return s.viewLocked(listing.Derive(s.model.Products(), q, mode), q, q, mode)
}

// viewLocked builds a View. applied is the search text the products were filtered by, which
// trails query until the debounce window elapses.
func (s *Shell) viewLocked(products []catalog.Product, query, applied string, sort listing.SortMode) View {
	v := View{
		Phase:        s.phase,
		Loading:      s.loading,
		Error:        s.errMsg,
		Headline:     ErrorHeadline,
		SearchQuery:  query,
		AppliedQuery: applied,
		SettleMillis: s.settleDelay.Milliseconds(),
		Sort:         sort,
		Products:     products,
		Shown:        len(products),
		Total:        s.model.Total(),
	}
	for _, mode := range listing.SortModes {
		v.SortOptions = append(v.SortOptions, SortOption{Value: mode, Label: mode.Label(), Selected: mode == v.Sort})
	}

	switch {
	case v.Loading:
		v.Branch = BranchLoading
		v.Skeletons = card.Skeletons(card.SkeletonCount)
	case v.Error != "":
		v.Branch = BranchError
	case len(products) == 0:
		v.Branch = BranchEmpty
		v.EmptyMessage = emptyInventoryMessage
		if strings.TrimSpace(v.SearchQuery) != "" {
			v.EmptyMessage = emptySearchMessage
		}
	default:
		v.Branch = BranchGrid
		v.Cards = card.FromProducts(products)
	}
	return v
}
