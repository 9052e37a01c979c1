package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deligo/search-service/internal/analytics"
	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/engine/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, docs ...domain.ProductDocument) (*SearchService, *analytics.Aggregator) {
	t.Helper()
	eng := memory.New()
	_, err := eng.IndexBatch(context.Background(), docs)
	require.NoError(t, err)

	agg := analytics.New(true, 1000, newTestLogger())
	return NewSearchService(eng, agg, newTestLogger()), agg
}

func doc(id, name string, price float64) domain.ProductDocument {
	return domain.NewProductDocument(domain.ProductDocument{
		ID:           id,
		Name:         name,
		CategoryID:   "cat-1",
		CategoryName: "Electronics",
		Price:        price,
		Currency:     "INR",
		Stock:        3,
		Status:       domain.StatusActive,
	}, nil, nil)
}

func TestSearchService_Search_FiltersByPrice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t,
		doc("a", "Widget Small", 10),
		doc("b", "Widget Medium", 20),
		doc("c", "Widget Large", 30),
	)

	maxPrice := 25.0
	res, err := svc.Search(ctx, &domain.SearchRequest{
		Query:    "widget",
		MaxPrice: &maxPrice,
	}, "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalHits)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, 1, res.TotalPages)
	assert.False(t, res.HasNextPage)
}

func TestSearchService_Search_TracksEvent(t *testing.T) {
	ctx := context.Background()
	svc, agg := newService(t, doc("a", "Widget", 10))

	category := "Electronics"
	_, err := svc.Search(ctx, &domain.SearchRequest{
		Query:        "widget",
		CategoryName: &category,
	}, "user-1", "sess-1")
	require.NoError(t, err)

	_, err = svc.Search(ctx, &domain.SearchRequest{Query: "nonexistent thing"}, "", "")
	require.NoError(t, err)

	report := agg.Report(ctx, domain.PeriodLast24h)
	assert.Equal(t, 2, report.TotalSearches)
	assert.Equal(t, []string{"nonexistent thing"}, report.ZeroResultQueries)
	require.Len(t, report.PopularCategories, 1)
	assert.Equal(t, "Electronics", report.PopularCategories[0].Category)
}

func TestSearchService_Search_NormalizesPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, doc("a", "Widget", 10))

	res, err := svc.Search(ctx, &domain.SearchRequest{
		Query: "widget",
		Page:  -3,
		Limit: 9999,
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 100, res.Limit)
}

func TestSearchService_Autocomplete_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t,
		doc("a", "Mouse Wireless", 25),
		doc("b", "Mouse Wired", 15),
	)

	res, err := svc.Autocomplete(ctx, &domain.AutocompleteRequest{
		Query:           "mouse",
		Limit:           0,
		IncludeProducts: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)
	assert.NotEmpty(t, res.Suggestions)
}

func TestSearchService_Search_EndToEndProjection(t *testing.T) {
	ctx := context.Background()

	withRating := doc("a", "Premium Widget", 50)
	rating := 4.2
	withRating.Rating = &rating
	withRating.Discount = 20
	withRating = domain.NewProductDocument(withRating, nil, nil)

	svc, _ := newService(t, withRating)

	res, err := svc.Search(ctx, &domain.SearchRequest{Query: "premium"}, "", "")
	require.NoError(t, err)
	require.Len(t, res.Products, 1)

	p := res.Products[0]
	assert.Equal(t, "a", p.ID)
	assert.InDelta(t, 40.0, p.DiscountedPrice, 0.001)
	assert.True(t, p.InStock)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.2, *p.Rating)
}
