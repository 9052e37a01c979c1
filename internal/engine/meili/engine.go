package meili

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/deligo/search-service/internal/domain"
)

// Engine is a Meilisearch-backed implementation of the SearchEngine
// interface. Query translation lives in query.go, result projection in
// project.go; this file holds the client plumbing.
type Engine struct {
	client    meilisearch.ServiceManager
	index     meilisearch.IndexManager
	indexName string
	settings  IndexSettings
	logger    *slog.Logger
}

// New creates a Meilisearch engine for the given host. The index is not
// touched until Setup is called. If indexName is empty, DefaultIndexName is
// used.
func New(host, apiKey, indexName string, settings IndexSettings, logger *slog.Logger) *Engine {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	var opts []meilisearch.Option
	if apiKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(apiKey))
	}
	client := meilisearch.New(host, opts...)

	return &Engine{
		client:    client,
		index:     client.Index(indexName),
		indexName: indexName,
		settings:  settings,
		logger:    logger,
	}
}

// Setup creates the product index if needed and applies the typed settings.
// It is idempotent: creating an existing index fails only at the task level
// and is ignored, while the settings update is always applied and awaited.
func (e *Engine) Setup(ctx context.Context) error {
	if err := e.settings.Validate(); err != nil {
		return err
	}

	if _, err := e.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        e.indexName,
		PrimaryKey: "id",
	}); err != nil {
		return fmt.Errorf("meilisearch: create index: %w", err)
	}

	task, err := e.index.UpdateSettingsWithContext(ctx, e.settings.toMeilisearch())
	if err != nil {
		return fmt.Errorf("meilisearch: update settings: %w", err)
	}
	final, err := e.client.WaitForTaskWithContext(ctx, task.TaskUID, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("meilisearch: wait for settings task: %w", err)
	}
	if final.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("meilisearch: settings task finished with status %q", final.Status)
	}

	e.logger.Info("meilisearch index configured", slog.String("index", e.indexName))
	return nil
}

// Search executes a structured search request and returns projected results.
func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	params := buildSearchParams(req)

	res, err := e.index.SearchWithContext(ctx, req.Query, params)
	if err != nil {
		return nil, fmt.Errorf("meilisearch: search: %w", err)
	}

	response := &domain.SearchResponse{
		Query:            req.Query,
		Products:         projectHits(res.Hits),
		TotalHits:        int(res.EstimatedTotalHits),
		Page:             req.Page,
		Limit:            req.Limit,
		ProcessingTimeMs: res.ProcessingTimeMs,
	}
	if req.ShowFacets {
		if dist, ok := res.FacetDistribution.(map[string]any); ok {
			response.Facets = projectFacets(dist)
		}
	}
	response.Paginate()

	return response, nil
}

// Autocomplete returns product, category and term suggestions for a partial
// query, restricted to active products.
func (e *Engine) Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) (*domain.AutocompleteResponse, error) {
	start := time.Now()

	response := &domain.AutocompleteResponse{
		Query:       req.Query,
		Products:    []domain.AutocompleteProduct{},
		Categories:  []domain.AutocompleteCategory{},
		Suggestions: []string{},
	}

	activeFilter := fmt.Sprintf("status = %s", quote(domain.StatusActive))

	if req.IncludeProducts {
		res, err := e.index.SearchWithContext(ctx, req.Query, &meilisearch.SearchRequest{
			Limit:                int64(req.Limit),
			AttributesToRetrieve: autocompleteAttributes,
			Filter:               activeFilter,
		})
		if err != nil {
			return nil, fmt.Errorf("meilisearch: autocomplete products: %w", err)
		}

		for _, raw := range res.Hits {
			hit, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			product := domain.AutocompleteProduct{
				ID:           hitString(hit, "id"),
				Name:         hitString(hit, "name"),
				Price:        hitFloat(hit, "price"),
				CategoryName: hitString(hit, "category_name"),
			}
			if images := hitStrings(hit, "images"); len(images) > 0 {
				product.Image = images[0]
			}
			response.Products = append(response.Products, product)
		}
		response.Suggestions = termSuggestions(req.Query, response.Products, 5)
	}

	if req.IncludeCategories {
		res, err := e.index.SearchWithContext(ctx, req.Query, &meilisearch.SearchRequest{
			Limit:  0,
			Facets: []string{"category_name"},
			Filter: activeFilter,
		})
		if err != nil {
			return nil, fmt.Errorf("meilisearch: autocomplete categories: %w", err)
		}
		if dist, ok := res.FacetDistribution.(map[string]any); ok {
			response.Categories = categorySuggestions(req.Query, dist, 5)
		}
	}

	response.ProcessingTimeMs = time.Since(start).Milliseconds()
	return response, nil
}

// termSuggestions extracts up to max distinct words from product names that
// contain the partial query.
func termSuggestions(query string, products []domain.AutocompleteProduct, max int) []string {
	queryLower := strings.ToLower(query)
	seen := make(map[string]struct{})
	suggestions := []string{}

	for _, p := range products {
		for _, word := range strings.Fields(strings.ToLower(p.Name)) {
			if !strings.Contains(word, queryLower) {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			suggestions = append(suggestions, strings.ToUpper(word[:1])+word[1:])
			if len(suggestions) >= max {
				return suggestions
			}
		}
	}
	return suggestions
}

// categorySuggestions turns the category facet distribution into up to max
// suggestions whose names contain the partial query.
func categorySuggestions(query string, distribution map[string]any, max int) []domain.AutocompleteCategory {
	counts, ok := distribution["category_name"].(map[string]any)
	if !ok {
		return []domain.AutocompleteCategory{}
	}

	queryLower := strings.ToLower(query)
	categories := []domain.AutocompleteCategory{}
	for _, group := range projectFacets(map[string]any{"category_name": counts}) {
		for _, value := range group.Values {
			if !strings.Contains(strings.ToLower(value.Value), queryLower) {
				continue
			}
			categories = append(categories, domain.AutocompleteCategory{
				ID:           strings.ReplaceAll(strings.ToLower(value.Value), " ", "-"),
				Name:         value.Value,
				ProductCount: value.Count,
			})
			if len(categories) >= max {
				return categories
			}
		}
	}
	return categories
}

// IndexBatch upserts a batch of documents and returns the async task id.
func (e *Engine) IndexBatch(ctx context.Context, docs []domain.ProductDocument) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	task, err := e.index.AddDocumentsWithContext(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("meilisearch: add documents: %w", err)
	}

	e.logger.Debug("queued batch for indexing",
		slog.Int("count", len(docs)),
		slog.Int64("task_uid", task.TaskUID),
	)
	return task.TaskUID, nil
}

// Delete removes one document from the index. Deleting an absent document is
// treated as success: the engine enqueues the removal either way.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if _, err := e.index.DeleteDocumentWithContext(ctx, id); err != nil {
		return fmt.Errorf("meilisearch: delete document: %w", err)
	}
	e.logger.Debug("deleted product from index", slog.String("product_id", id))
	return nil
}

// Clear removes all documents, keeping the index configuration.
func (e *Engine) Clear(ctx context.Context) error {
	if _, err := e.index.DeleteAllDocumentsWithContext(ctx); err != nil {
		return fmt.Errorf("meilisearch: clear index: %w", err)
	}
	e.logger.Warn("cleared all documents from index", slog.String("index", e.indexName))
	return nil
}

// Stats reports the engine document count and indexing-activity flag.
func (e *Engine) Stats(ctx context.Context) (*domain.EngineStats, error) {
	stats, err := e.index.GetStatsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("meilisearch: get stats: %w", err)
	}
	return &domain.EngineStats{
		TotalDocuments: stats.NumberOfDocuments,
		IsIndexing:     stats.IsIndexing,
	}, nil
}

// Healthy returns nil when the Meilisearch instance reports itself available.
func (e *Engine) Healthy(ctx context.Context) error {
	health, err := e.client.HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("meilisearch: health: %w", err)
	}
	if health.Status != "available" {
		return fmt.Errorf("meilisearch: status %q", health.Status)
	}
	return nil
}
