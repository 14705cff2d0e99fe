package listutil

import (
	"net/url"
	"strings"
)

// FilterParams carries the search query of a list page.
type FilterParams struct {
	Search string // free-text name filter, trimmed
}

// Named is anything a list page can filter by name.
type Named interface {
	GetName() string
}

// ParseFilterParams extracts the search query from URL query values.
// PRE: none
// POST: Search has no surrounding whitespace
func ParseFilterParams(q url.Values) FilterParams {
	return FilterParams{Search: strings.TrimSpace(q.Get("q"))}
}

// FilterByName returns the items whose name contains q, ignoring case.
// PRE: none
// POST: result is a subsequence of items in the original order; q == "" returns items unchanged
func FilterByName[T Named](items []T, q string) []T {
	if q == "" {
		return items
	}
	needle := strings.ToLower(q)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.GetName()), needle) {
			out = append(out, item)
		}
	}
	return out
}
