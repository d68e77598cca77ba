package core

import "sort"

const (
	GroupByCategory      GroupBy = "category"
	GroupByMonth         GroupBy = "month"
	GroupByMonthCategory GroupBy = "month-category"
)

type (
	// GroupBy selects the aggregation axis.
	GroupBy string

	// CategoryResolver maps a stored category id to its display entry.
	// A nil resolver (or a miss) falls back to the raw id.
	CategoryResolver interface {
		Resolve(id string) (Category, bool)
	}

	// Bucket is one labeled entry of a series. Totals is aligned with
	// the owning Series.Columns so every bucket carries the same
	// schema.
	Bucket struct {
		Label  string
		Totals []Money
	}

	// Series is the ordered, chart-ready output of Aggregate.
	Series struct {
		Columns []string
		Buckets []Bucket
	}
)

// SingleColumn is the column name used by the single-dimension
// grouping modes.
const SingleColumn = "value"

// Valid reports whether g names a known grouping mode.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByCategory, GroupByMonth, GroupByMonthCategory:
		return true
	}
	return false
}

// Aggregate filters records per cfg and groups them along the
// configured axis. It is a pure function: no I/O, no errors, an empty
// working set simply yields an empty series.
func Aggregate(records []Record, cfg ViewConfig, resolver CategoryResolver) Series {
	working := ApplyFilters(records, cfg)
	switch cfg.GroupBy {
	case GroupByMonth:
		return groupByMonth(working)
	case GroupByMonthCategory:
		return groupByMonthCategory(working, resolver)
	default:
		return groupByCategory(working, resolver)
	}
}

func resolveLabel(id string, resolver CategoryResolver) string {
	if resolver != nil {
		if cat, ok := resolver.Resolve(id); ok {
			return cat.Display()
		}
	}
	return id
}

// groupByCategory sums amounts per category id in first-seen order.
// Unknown ids keep their raw value as the label.
func groupByCategory(records []Record, resolver CategoryResolver) Series {
	series := Series{Columns: []string{SingleColumn}, Buckets: []Bucket{}}
	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(series.Buckets)
			index[rec.Category] = i
			series.Buckets = append(series.Buckets, Bucket{
				Label:  resolveLabel(rec.Category, resolver),
				Totals: []Money{{}},
			})
		}
		series.Buckets[i].Totals[0] = series.Buckets[i].Totals[0].Add(rec.Amount)
	}
	return series
}

// groupByMonth sums amounts per year-month key, ascending. Records
// without a date are excluded.
func groupByMonth(records []Record) Series {
	series := Series{Columns: []string{SingleColumn}, Buckets: []Bucket{}}
	sums := make(map[string]int64)
	for _, rec := range records {
		key := rec.MonthKey()
		if key == "" {
			continue
		}
		sums[key] += rec.Amount.Cents
	}
	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		series.Buckets = append(series.Buckets, Bucket{
			Label:  key,
			Totals: []Money{{Cents: sums[key]}},
		})
	}
	return series
}

// groupByMonthCategory cross-tabulates: one bucket per month
// (ascending), one column per category present in the working set
// (first-seen order). Categories with no spend in a month are kept at
// zero so every bucket shares the same column set.
func groupByMonthCategory(records []Record, resolver CategoryResolver) Series {
	var catIDs []string
	catIndex := make(map[string]int)
	for _, rec := range records {
		if rec.MonthKey() == "" {
			continue
		}
		if _, ok := catIndex[rec.Category]; !ok {
			catIndex[rec.Category] = len(catIDs)
			catIDs = append(catIDs, rec.Category)
		}
	}

	rows := make(map[string][]int64)
	for _, rec := range records {
		key := rec.MonthKey()
		if key == "" {
			continue
		}
		row, ok := rows[key]
		if !ok {
			row = make([]int64, len(catIDs))
			rows[key] = row
		}
		row[catIndex[rec.Category]] += rec.Amount.Cents
	}

	months := make([]string, 0, len(rows))
	for key := range rows {
		months = append(months, key)
	}
	sort.Strings(months)

	series := Series{Columns: []string{}, Buckets: []Bucket{}}
	for _, id := range catIDs {
		series.Columns = append(series.Columns, resolveLabel(id, resolver))
	}
	for _, month := range months {
		totals := make([]Money, len(catIDs))
		for i, cents := range rows[month] {
			totals[i] = Money{Cents: cents}
		}
		series.Buckets = append(series.Buckets, Bucket{Label: month, Totals: totals})
	}
	return series
}

// Total sums every numeric field of every bucket. Useful for
// conservation checks and summary displays.
func (s Series) Total() Money {
	var total Money
	for _, b := range s.Buckets {
		for _, v := range b.Totals {
			total = total.Add(v)
		}
	}
	return total
}
