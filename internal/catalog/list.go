package catalog

import "strings"

// View selects which listing surface is being served. The surfaces differ in
// default page size and image ordering.
type View string

const (
	ViewStore View = "store"
	ViewAdmin View = "admin"
)

// ListFilter carries the raw listing inputs as they arrive from the query
// string. Zero values mean "not filtered".
type ListFilter struct {
	// Category is either a numeric category id or a name fragment matched
	// case-insensitively. "all" and "" mean no category filter.
	Category string
	// Search is a free-text term matched against product_code, name and
	// description.
	Search string
	// ProductCode, when set, overrides Search and switches ranking to
	// exact-code-first mode.
	ProductCode string
	Page        int
	Limit       int
	View        View
}

// Term returns the effective match term and whether code-mode ranking is
// active.
func (f ListFilter) Term() (term string, codeMode bool) {
	if code := strings.TrimSpace(f.ProductCode); code != "" {
		return code, true
	}
	return strings.TrimSpace(f.Search), false
}

// CategoryFilter returns the cleaned category input, or "" when the filter is
// absent or the "all" sentinel.
func (f ListFilter) CategoryFilter() string {
	raw := strings.TrimSpace(f.Category)
	if raw == "" || strings.EqualFold(raw, "all") {
		return ""
	}
	return raw
}
