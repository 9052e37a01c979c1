package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/deligo/search-service/internal/analytics"
	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/engine"
)

// SearchService executes search and autocomplete requests against the engine
// and feeds the analytics aggregator as a side effect. Tracking failures can
// not happen by construction; tracking is in-process and never blocks a
// search result.
type SearchService struct {
	engine    engine.SearchEngine
	analytics *analytics.Aggregator
	logger    *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, agg *analytics.Aggregator, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine:    eng,
		analytics: agg,
		logger:    logger,
	}
}

// Search normalizes the request, runs it through the engine and records the
// search event with a snapshot of the filters used.
func (s *SearchService) Search(ctx context.Context, req *domain.SearchRequest, userID, sessionID string) (*domain.SearchResponse, error) {
	req.Normalize()

	result, err := s.engine.Search(ctx, req)
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search: %w", err)
	}
	searchesTotal.WithLabelValues("success").Inc()
	if result.TotalHits == 0 {
		zeroResultSearchesTotal.Inc()
	}

	s.analytics.TrackSearch(ctx, domain.AnalyticsEvent{
		Query:        req.Query,
		UserID:       userID,
		SessionID:    sessionID,
		ResultsCount: result.TotalHits,
		FiltersUsed:  filterSnapshot(req),
	})

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", req.Query),
		slog.Int("total_hits", result.TotalHits),
		slog.Int64("took_ms", result.ProcessingTimeMs),
	)

	return result, nil
}

// Autocomplete returns suggestions for a partial query. Autocomplete traffic
// is not tracked: partial keystrokes would drown the analytics signal.
func (s *SearchService) Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) (*domain.AutocompleteResponse, error) {
	if req.Limit < 1 {
		req.Limit = 5
	}
	if req.Limit > 20 {
		req.Limit = 20
	}

	result, err := s.engine.Autocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	return result, nil
}

// filterSnapshot captures the filters present on a request as strings, the
// shape the analytics category aggregation consumes.
func filterSnapshot(req *domain.SearchRequest) map[string]string {
	filters := make(map[string]string)
	if req.CategoryID != nil {
		filters["category_id"] = *req.CategoryID
	}
	if req.CategoryName != nil {
		filters["category_name"] = *req.CategoryName
	}
	if req.SellerID != nil {
		filters["seller_id"] = *req.SellerID
	}
	if req.Status != nil {
		filters["status"] = *req.Status
	}
	if req.MinPrice != nil {
		filters["min_price"] = strconv.FormatFloat(*req.MinPrice, 'f', -1, 64)
	}
	if req.MaxPrice != nil {
		filters["max_price"] = strconv.FormatFloat(*req.MaxPrice, 'f', -1, 64)
	}
	if req.InStock != nil {
		filters["in_stock"] = strconv.FormatBool(*req.InStock)
	}
	if req.MinRating != nil {
		filters["min_rating"] = strconv.FormatFloat(*req.MinRating, 'f', -1, 64)
	}
	if req.HasDiscount != nil {
		filters["has_discount"] = strconv.FormatBool(*req.HasDiscount)
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}
