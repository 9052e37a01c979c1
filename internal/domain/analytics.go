package domain

import "time"

// Analytics lookback periods.
const (
	PeriodLast24h = "last_24h"
	PeriodLast7d  = "last_7d"
	PeriodLast30d = "last_30d"
)

// PeriodWindow returns the lookback duration and the trend bucket width for a
// period. Unrecognized periods fall back to last_24h.
func PeriodWindow(period string) (time.Duration, time.Duration) {
	switch period {
	case PeriodLast7d:
		return 7 * 24 * time.Hour, 24 * time.Hour
	case PeriodLast30d:
		return 30 * 24 * time.Hour, 24 * time.Hour
	default:
		return 24 * time.Hour, time.Hour
	}
}

// AnalyticsEvent is one search or click action. Events are immutable once
// recorded.
type AnalyticsEvent struct {
	Query            string            `json:"query"`
	UserID           string            `json:"user_id,omitempty"`
	SessionID        string            `json:"session_id,omitempty"`
	ResultsCount     int               `json:"results_count"`
	ClickedProductID string            `json:"clicked_product_id,omitempty"`
	Position         int               `json:"position,omitempty"`
	FiltersUsed      map[string]string `json:"filters_used,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// QueryCount is a query with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CategoryCount is a category filter value with its occurrence count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TimeBucket is one fixed-width interval of a trend series.
type TimeBucket struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// AnalyticsReport is the windowed aggregation over recorded events.
type AnalyticsReport struct {
	TotalSearches      int             `json:"total_searches"`
	UniqueQueries      int             `json:"unique_queries"`
	AvgResultsPerQuery float64         `json:"avg_results_per_query"`
	TopQueries         []QueryCount    `json:"top_queries"`
	ZeroResultQueries  []string        `json:"zero_result_queries"`
	PopularCategories  []CategoryCount `json:"popular_categories"`
	SearchTrends       []TimeBucket    `json:"search_trends"`
	Period             string          `json:"period"`
}
