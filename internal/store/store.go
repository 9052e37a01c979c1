package store

import (
	"context"
	"time"

	"github.com/deligo/search-service/internal/domain"
)

// BatchIterator yields engine-ready documents in batches. Next returns an
// empty batch with a nil error when the stream is exhausted. Iterators are
// single-use and not safe for concurrent calls.
type BatchIterator interface {
	Next(ctx context.Context) ([]domain.ProductDocument, error)
}

// DocumentStore is the read-side contract over the product catalog. All
// streams return documents already enriched with category and seller names
// and flattened variant and SEO text.
type DocumentStore interface {
	// StreamAll iterates every active product in batches of batchSize.
	StreamAll(ctx context.Context, batchSize int) BatchIterator

	// StreamUpdatedSince iterates products whose update time is at or after
	// since, in batches of batchSize.
	StreamUpdatedSince(ctx context.Context, since time.Time, batchSize int) BatchIterator

	// GetByID fetches one product. It returns (nil, nil) when the product
	// does not exist.
	GetByID(ctx context.Context, id string) (*domain.ProductDocument, error)

	// Healthy returns nil when the store is reachable.
	Healthy(ctx context.Context) error
}
