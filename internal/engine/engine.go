package engine

import (
	"context"

	"github.com/deligo/search-service/internal/domain"
)

// SearchEngine is the adapter contract for the external full-text engine.
// Implementations own query translation to their native parameters and
// projection of raw hits back into domain results. The Meilisearch
// implementation is the production backend; the in-memory implementation
// backs tests and engine-less development.
type SearchEngine interface {
	// Setup creates and configures the product index (searchable/filterable/
	// sortable attributes, ranking rules, synonyms, typo tolerance). It is
	// idempotent.
	Setup(ctx context.Context) error

	// Search executes a structured search request and returns projected
	// results with facets and pagination metadata.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)

	// Autocomplete returns product, category and term suggestions for a
	// partial query, restricted to active products.
	Autocomplete(ctx context.Context, req *domain.AutocompleteRequest) (*domain.AutocompleteResponse, error)

	// IndexBatch upserts a batch of documents and returns the engine's
	// asynchronous task identifier. A failed call fails the whole batch.
	IndexBatch(ctx context.Context, docs []domain.ProductDocument) (int64, error)

	// Delete removes one document by id. Deleting an absent document is not
	// an error.
	Delete(ctx context.Context, id string) error

	// Clear removes all documents from the index, keeping its configuration.
	Clear(ctx context.Context) error

	// Stats reports the engine's document count and indexing-activity flag.
	Stats(ctx context.Context) (*domain.EngineStats, error)

	// Healthy returns nil when the engine is reachable and serving.
	Healthy(ctx context.Context) error
}
