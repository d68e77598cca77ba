package http

import (
	"log/slog"
	"net/http"
	"strings"

	"kakeibo/internal/core"
)

// reportBucket is one chart entry. Single-dimension groupings fill
// Value; the month-category cross fills Values keyed by column name.
type reportBucket struct {
	Name   string                `json:"name"`
	Value  *core.Money           `json:"value,omitempty"`
	Values map[string]core.Money `json:"values,omitempty"`
}

type reportResponse struct {
	GroupBy  core.GroupBy   `json:"group_by"`
	Month    string         `json:"month,omitempty"`
	Category string         `json:"category,omitempty"`
	Columns  []string       `json:"columns,omitempty"`
	Buckets  []reportBucket `json:"buckets"`
	Facets   core.Facets    `json:"facets"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	groupBy := core.GroupBy(strings.TrimSpace(q.Get("group_by")))
	if groupBy == "" {
		groupBy = core.GroupByCategory
	}
	if !groupBy.Valid() {
		respondError(w, http.StatusUnprocessableEntity, "unknown group_by: "+string(groupBy))
		return
	}

	cfg := core.ViewConfig{
		GroupBy:  groupBy,
		Month:    strings.TrimSpace(q.Get("month")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	cacheKey := string(cfg.GroupBy) + "|" + cfg.Month + "|" + cfg.Category
	if cached, ok := s.reportCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.expenses.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records for report", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	series := core.Aggregate(records, cfg, s.categories)
	resp := buildReportResponse(cfg, series, core.CollectFacets(records))

	s.reportCache.Set(cacheKey, resp)
	respondJSON(w, http.StatusOK, resp)
}

func buildReportResponse(cfg core.ViewConfig, series core.Series, facets core.Facets) reportResponse {
	resp := reportResponse{
		GroupBy:  cfg.GroupBy,
		Month:    cfg.Month,
		Category: cfg.Category,
		Buckets:  make([]reportBucket, 0, len(series.Buckets)),
		Facets:   facets,
	}

	if cfg.GroupBy == core.GroupByMonthCategory {
		resp.Columns = series.Columns
		for _, b := range series.Buckets {
			values := make(map[string]core.Money, len(series.Columns))
			for i, col := range series.Columns {
				values[col] = b.Totals[i]
			}
			resp.Buckets = append(resp.Buckets, reportBucket{Name: b.Label, Values: values})
		}
		return resp
	}

	for _, b := range series.Buckets {
		value := b.Totals[0]
		resp.Buckets = append(resp.Buckets, reportBucket{Name: b.Label, Value: &value})
	}
	return resp
}
