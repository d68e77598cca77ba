package core

import "sort"

// ViewConfig drives filtering and aggregation. Empty Month/Category
// mean "all" (no narrowing).
type ViewConfig struct {
	GroupBy  GroupBy
	Month    string // "2006-01" when set
	Category string // registry id when set
}

// Facets are the distinct filter options derived from the full,
// unfiltered record set, so controls always offer every value
// regardless of the current selection.
type Facets struct {
	Months     []string `json:"months"`     // descending, most recent first
	Categories []string `json:"categories"` // first-seen order
}

// CollectFacets derives the month and category facets. Records without
// a usable date contribute no month but still contribute their
// category.
func CollectFacets(records []Record) Facets {
	facets := Facets{Months: []string{}, Categories: []string{}}
	seenMonth := make(map[string]bool)
	seenCat := make(map[string]bool)
	for _, rec := range records {
		if key := rec.MonthKey(); key != "" && !seenMonth[key] {
			seenMonth[key] = true
			facets.Months = append(facets.Months, key)
		}
		if !seenCat[rec.Category] {
			seenCat[rec.Category] = true
			facets.Categories = append(facets.Categories, rec.Category)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(facets.Months)))
	return facets
}

// ApplyFilters narrows the record set by the configured month and
// category. Filters compose with AND and match exactly; a record
// without a date never matches a month filter.
func ApplyFilters(records []Record, cfg ViewConfig) []Record {
	working := make([]Record, 0, len(records))
	for _, rec := range records {
		if cfg.Month != "" && rec.MonthKey() != cfg.Month {
			continue
		}
		if cfg.Category != "" && rec.Category != cfg.Category {
			continue
		}
		working = append(working, rec)
	}
	return working
}
