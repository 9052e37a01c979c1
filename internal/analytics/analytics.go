package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deligo/search-service/internal/domain"
)

const (
	topQueriesLimit    = 20
	zeroResultLimit    = 20
	popularCategoryCap = 10
	defaultMaxEvents   = 10000
)

// Aggregator keeps a bounded in-memory buffer of search events and computes
// windowed reports over it. When the buffer is full the oldest events are
// evicted first. All methods are safe for concurrent use; reports work on a
// snapshot so tracking is never blocked by report computation.
type Aggregator struct {
	enabled   bool
	maxEvents int
	logger    *slog.Logger

	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

// New creates an aggregator holding at most maxEvents events. A non-positive
// capacity falls back to the default. When enabled is false every tracking
// call is a no-op.
func New(enabled bool, maxEvents int, logger *slog.Logger) *Aggregator {
	if maxEvents < 1 {
		maxEvents = defaultMaxEvents
	}
	return &Aggregator{
		enabled:   enabled,
		maxEvents: maxEvents,
		logger:    logger,
	}
}

// TrackSearch records one search event. A zero timestamp is stamped with the
// current time.
func (a *Aggregator) TrackSearch(_ context.Context, event domain.AnalyticsEvent) {
	if !a.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.events = append(a.events, event)
	if len(a.events) > a.maxEvents {
		a.events = a.events[len(a.events)-a.maxEvents:]
	}
}

// TrackClick records a result click as an event carrying the clicked product
// and its position. Click events have a zero results count and never feed
// the zero-result metric.
func (a *Aggregator) TrackClick(ctx context.Context, query, productID string, position int, userID, sessionID string) {
	a.TrackSearch(ctx, domain.AnalyticsEvent{
		Query:            query,
		UserID:           userID,
		SessionID:        sessionID,
		ClickedProductID: productID,
		Position:         position,
	})
}

// Report computes the metrics for one period over the events inside its
// window. An unknown period falls back to the 24 hour window.
func (a *Aggregator) Report(_ context.Context, period string) *domain.AnalyticsReport {
	now := time.Now().UTC()
	lookback, bucketWidth := domain.PeriodWindow(period)
	cutoff := now.Add(-lookback)

	a.mu.Lock()
	window := make([]domain.AnalyticsEvent, 0, len(a.events))
	for _, event := range a.events {
		if !event.Timestamp.Before(cutoff) {
			window = append(window, event)
		}
	}
	a.mu.Unlock()

	report := &domain.AnalyticsReport{
		TopQueries:        []domain.QueryCount{},
		ZeroResultQueries: []string{},
		PopularCategories: []domain.CategoryCount{},
		SearchTrends:      []domain.TimeBucket{},
		Period:            period,
	}
	if len(window) == 0 {
		return report
	}

	report.TotalSearches = len(window)

	queryCounts := make(map[string]int)
	queryFirstSeen := make(map[string]int)
	categoryCounts := make(map[string]int)
	zeroSeen := make(map[string]struct{})
	resultsSum, resultsN := 0, 0

	for _, event := range window {
		queryLower := strings.ToLower(event.Query)
		if _, seen := queryCounts[queryLower]; !seen {
			queryFirstSeen[queryLower] = len(queryFirstSeen)
		}
		queryCounts[queryLower]++

		if event.ResultsCount > 0 {
			resultsSum += event.ResultsCount
			resultsN++
		}
		// Zero-result detection applies to search events only.
		if event.ResultsCount == 0 && event.ClickedProductID == "" {
			if _, dup := zeroSeen[event.Query]; !dup && len(report.ZeroResultQueries) < zeroResultLimit {
				zeroSeen[event.Query] = struct{}{}
				report.ZeroResultQueries = append(report.ZeroResultQueries, event.Query)
			}
		}
		if category, ok := event.FiltersUsed["category_name"]; ok && category != "" {
			categoryCounts[category]++
		}
	}

	report.UniqueQueries = len(queryCounts)
	if resultsN > 0 {
		report.AvgResultsPerQuery = math.Round(float64(resultsSum)/float64(resultsN)*100) / 100
	}

	report.TopQueries = topQueries(queryCounts, queryFirstSeen, topQueriesLimit)
	report.PopularCategories = popularCategories(categoryCounts, popularCategoryCap)
	report.SearchTrends = trends(window, now, lookback, bucketWidth)

	return report
}

// Clear discards all buffered events.
func (a *Aggregator) Clear(_ context.Context) {
	a.mu.Lock()
	a.events = nil
	a.mu.Unlock()
	a.logger.Info("cleared analytics buffer")
}

// Len reports the number of buffered events.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

// topQueries ranks by count; equal counts keep the order the queries first
// appeared in the window.
func topQueries(counts map[string]int, firstSeen map[string]int, limit int) []domain.QueryCount {
	ranked := make([]domain.QueryCount, 0, len(counts))
	for query, count := range counts {
		ranked = append(ranked, domain.QueryCount{Query: query, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Query] < firstSeen[ranked[j].Query]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func popularCategories(counts map[string]int, limit int) []domain.CategoryCount {
	ranked := make([]domain.CategoryCount, 0, len(counts))
	for category, count := range counts {
		ranked = append(ranked, domain.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Category < ranked[j].Category
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// trends partitions the window into contiguous buckets of bucketWidth ending
// now. Every bucket is emitted, including empty ones, so chart axes stay
// stable.
func trends(window []domain.AnalyticsEvent, now time.Time, lookback, bucketWidth time.Duration) []domain.TimeBucket {
	n := int(lookback / bucketWidth)
	buckets := make([]domain.TimeBucket, n)
	for i := 0; i < n; i++ {
		buckets[i].Timestamp = now.Add(-lookback + time.Duration(i)*bucketWidth)
	}

	for _, event := range window {
		i := int(event.Timestamp.Sub(now.Add(-lookback)) / bucketWidth)
		if i < 0 || i >= n {
			continue
		}
		buckets[i].Count++
	}
	return buckets
}
