package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deligo/search-service/internal/analytics"
	"github.com/deligo/search-service/internal/config"
	"github.com/deligo/search-service/internal/engine"
	"github.com/deligo/search-service/internal/engine/meili"
	enginememory "github.com/deligo/search-service/internal/engine/memory"
	"github.com/deligo/search-service/internal/event"
	handler "github.com/deligo/search-service/internal/handler/http"
	"github.com/deligo/search-service/internal/indexer"
	"github.com/deligo/search-service/internal/service"
	"github.com/deligo/search-service/internal/store"
	storememory "github.com/deligo/search-service/internal/store/memory"
	storemongo "github.com/deligo/search-service/internal/store/mongo"
	"github.com/deligo/search-service/pkg/health"
	pkgkafka "github.com/deligo/search-service/pkg/kafka"
)

// App wires together all dependencies and runs the search service.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	orchestrator *indexer.Orchestrator
	mongoStore   *storemongo.Store
	consumers    []*pkgkafka.Consumer
	httpServer   *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize the search engine based on configuration.
	var eng engine.SearchEngine
	switch cfg.SearchEngine {
	case "meilisearch":
		eng = meili.New(cfg.MeilisearchURL, cfg.MeilisearchKey, cfg.MeilisearchIndex, meili.DefaultSettings(), logger)
		logger.Info("meilisearch engine initialized",
			slog.String("url", cfg.MeilisearchURL),
			slog.String("index", cfg.MeilisearchIndex),
		)
	default:
		eng = enginememory.New()
		logger.Info("in-memory search engine initialized")
	}

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := eng.Setup(setupCtx); err != nil {
		return nil, fmt.Errorf("setup search engine: %w", err)
	}

	// Initialize the document store the indexer reads from.
	var docStore store.DocumentStore
	var mongoStore *storemongo.Store
	switch cfg.DocumentStore {
	case "mongo":
		var err error
		mongoStore, err = storemongo.Connect(setupCtx, cfg.MongoURI, cfg.MongoDBName, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		docStore = mongoStore
		logger.Info("mongodb document store initialized", slog.String("database", cfg.MongoDBName))
	default:
		docStore = storememory.New()
		logger.Info("in-memory document store initialized")
	}

	orchestrator := indexer.New(eng, docStore, indexer.Config{
		BatchSize:        cfg.IndexBatchSize,
		AutoSyncInterval: cfg.AutoSyncInterval,
		RecoveryDelay:    cfg.SyncRecoveryWait,
		Lookback:         cfg.SyncLookback,
	}, logger)

	aggregator := analytics.New(cfg.AnalyticsEnabled, cfg.AnalyticsMaxEvents, logger)

	searchService := service.NewSearchService(eng, aggregator, logger)

	// Kafka consumers keep the index in step with product lifecycle events.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaEnabled {
		eventConsumer := event.NewConsumer(orchestrator, logger)

		topics := []string{
			event.TopicProductCreated,
			event.TopicProductUpdated,
			event.TopicProductDeleted,
		}
		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  "search-service",
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("search_engine", eng.Healthy)
	if mongoStore != nil {
		healthHandler.RegisterCritical("mongodb", mongoStore.Healthy)
	}
	if cfg.KafkaEnabled {
		// Search keeps serving without event ingestion, so a broker
		// outage only degrades readiness.
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// HTTP router.
	handlers := handler.NewHandlers(searchService, orchestrator, aggregator, logger)
	router := handler.NewRouter(handlers, healthHandler, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Environment: cfg.Environment,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		mongoStore:   mongoStore,
		consumers:    consumers,
		httpServer:   httpServer,
	}, nil
}

// Run starts the HTTP server, Kafka consumers, and the auto-sync loop,
// blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	if a.cfg.AutoSyncEnabled {
		a.orchestrator.StartAutoSync(ctx)
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	a.orchestrator.StopAutoSync()

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.mongoStore != nil {
		if err := a.mongoStore.Close(shutdownCtx); err != nil {
			a.logger.Error("mongodb close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
