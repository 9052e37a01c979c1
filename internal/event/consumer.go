package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deligo/search-service/internal/indexer"
	apperrors "github.com/deligo/search-service/pkg/errors"
	pkgkafka "github.com/deligo/search-service/pkg/kafka"
)

// Kafka topics for product domain events consumed by the search service.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
)

// productEventData is the payload shared by created and updated events. Only
// the id matters here: the indexer re-reads the product from the store so
// the index always reflects the committed state, not the event snapshot.
type productEventData struct {
	ID string `json:"id"`
}

// Consumer applies product change events to the search index.
type Consumer struct {
	orchestrator *indexer.Orchestrator
	logger       *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(orch *indexer.Orchestrator, logger *slog.Logger) *Consumer {
	return &Consumer{
		orchestrator: orch,
		logger:       logger,
	}
}

// Handle processes a Kafka event based on its type. Unknown types are
// acknowledged and dropped.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductUpserted(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleProductUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data productEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	_, err := c.orchestrator.IndexProduct(ctx, data.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// The product was removed between the event and this read. The
		// deleted event will follow; retrying here would never succeed.
		c.logger.WarnContext(ctx, "product vanished before indexing",
			slog.String("product_id", data.ID),
			slog.String("event_type", event.EventType),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("index product from %s: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "indexed product from event",
		slog.String("product_id", data.ID),
		slog.String("event_type", event.EventType),
	)
	return nil
}

func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data productEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.orchestrator.DeleteProduct(ctx, data.ID); err != nil {
		return fmt.Errorf("delete product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "deleted product from event",
		slog.String("product_id", data.ID),
	)
	return nil
}
