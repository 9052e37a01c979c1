package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/engine"
	"github.com/deligo/search-service/internal/store"
	apperrors "github.com/deligo/search-service/pkg/errors"
)

// Config tunes the sync orchestrator. Zero values fall back to defaults.
type Config struct {
	// BatchSize is the number of documents per store read and engine write.
	BatchSize int
	// BatchPause is the delay between consecutive batch submissions.
	BatchPause time.Duration
	// AutoSyncInterval is the period of the background incremental loop.
	AutoSyncInterval time.Duration
	// RecoveryDelay is the extra backoff after a failed auto-sync pass.
	RecoveryDelay time.Duration
	// Lookback bounds the first incremental sync when no cursor exists yet.
	Lookback time.Duration
}

func (c *Config) applyDefaults() {
	if c.BatchSize < 1 {
		c.BatchSize = 100
	}
	if c.BatchPause <= 0 {
		c.BatchPause = 100 * time.Millisecond
	}
	if c.AutoSyncInterval <= 0 {
		c.AutoSyncInterval = 5 * time.Minute
	}
	if c.RecoveryDelay <= 0 {
		c.RecoveryDelay = time.Minute
	}
	if c.Lookback <= 0 {
		c.Lookback = time.Hour
	}
}

// Orchestrator drives synchronization between the document store and the
// search engine: full rebuilds, incremental catch-ups keyed by a cursor, and
// a background auto-sync loop. At most one full or incremental sync runs at
// a time; concurrent attempts are rejected, never queued.
type Orchestrator struct {
	engine engine.SearchEngine
	store  store.DocumentStore
	cfg    Config
	logger *slog.Logger

	syncing atomic.Bool

	mu              sync.Mutex
	lastFullSync    *time.Time
	lastIncremental *time.Time

	autoMu     sync.Mutex
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

// New creates an orchestrator over the given engine and store.
func New(eng engine.SearchEngine, st store.DocumentStore, cfg Config, logger *slog.Logger) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		engine: eng,
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// FullReindex clears the engine index and rebuilds it from the store. Batch
// failures are aggregated into the report; the run keeps going. A concurrent
// sync attempt fails immediately with a conflict error.
func (o *Orchestrator) FullReindex(ctx context.Context) (*domain.IndexReport, error) {
	if !o.syncing.CompareAndSwap(false, true) {
		return nil, apperrors.SyncInProgress("full reindex")
	}
	defer o.syncing.Store(false)

	return o.fullReindex(ctx)
}

// FullReindexAsync acquires the sync guard synchronously, so a conflicting
// run is reported to the caller, then rebuilds in the background. The run is
// detached from the caller's context and survives it.
func (o *Orchestrator) FullReindexAsync(ctx context.Context) error {
	if !o.syncing.CompareAndSwap(false, true) {
		return apperrors.SyncInProgress("full reindex")
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer o.syncing.Store(false)
		if _, err := o.fullReindex(runCtx); err != nil {
			o.logger.Error("background full reindex failed", slog.Any("error", err))
		}
	}()
	return nil
}

func (o *Orchestrator) fullReindex(ctx context.Context) (*domain.IndexReport, error) {
	start := time.Now()
	o.logger.Info("starting full reindex")

	if err := o.engine.Clear(ctx); err != nil {
		syncRunsTotal.WithLabelValues("full", "error").Inc()
		return nil, apperrors.Wrap(err, "full reindex: clear index")
	}

	report, err := o.drain(ctx, o.store.StreamAll(ctx, o.cfg.BatchSize))
	if err != nil {
		syncRunsTotal.WithLabelValues("full", "error").Inc()
		return nil, apperrors.Wrap(err, "full reindex")
	}

	now := time.Now()
	o.mu.Lock()
	o.lastFullSync = &now
	o.mu.Unlock()

	elapsed := time.Since(start)
	report.ElapsedMs = elapsed.Milliseconds()
	report.Message = fmt.Sprintf("full reindex completed in %.2fs", elapsed.Seconds())

	syncDuration.WithLabelValues("full").Observe(elapsed.Seconds())
	syncRunsTotal.WithLabelValues("full", outcome(report)).Inc()
	o.logger.Info("full reindex completed",
		slog.Int("indexed", report.IndexedCount),
		slog.Int("failed", report.FailedCount),
		slog.Duration("elapsed", elapsed),
	)
	return report, nil
}

// IncrementalIndex syncs products updated since the given time. A nil since
// falls back to the cursor left by the previous incremental run, or to the
// configured lookback when no cursor exists yet. The cursor advances to the
// run's start time only after the run completes, so a crashed run re-covers
// its window.
func (o *Orchestrator) IncrementalIndex(ctx context.Context, since *time.Time) (*domain.IndexReport, error) {
	if !o.syncing.CompareAndSwap(false, true) {
		return nil, apperrors.SyncInProgress("incremental index")
	}
	defer o.syncing.Store(false)

	start := time.Now()
	checkSince := o.resolveCursor(since, start)
	o.logger.Info("starting incremental index", slog.Time("since", checkSince))

	report, err := o.drain(ctx, o.store.StreamUpdatedSince(ctx, checkSince, o.cfg.BatchSize))
	if err != nil {
		syncRunsTotal.WithLabelValues("incremental", "error").Inc()
		return nil, apperrors.Wrap(err, "incremental index")
	}

	o.mu.Lock()
	o.lastIncremental = &start
	o.mu.Unlock()

	elapsed := time.Since(start)
	report.ElapsedMs = elapsed.Milliseconds()
	report.Message = fmt.Sprintf("incremental index completed: %d products", report.IndexedCount)

	syncDuration.WithLabelValues("incremental").Observe(elapsed.Seconds())
	syncRunsTotal.WithLabelValues("incremental", outcome(report)).Inc()
	o.logger.Info("incremental index completed",
		slog.Int("indexed", report.IndexedCount),
		slog.Int("failed", report.FailedCount),
	)
	return report, nil
}

func (o *Orchestrator) resolveCursor(since *time.Time, now time.Time) time.Time {
	if since != nil {
		return *since
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastIncremental != nil {
		return *o.lastIncremental
	}
	return now.Add(-o.cfg.Lookback)
}

// drain pushes every batch from the iterator into the engine, pausing
// between batches. A store error aborts the run; an engine error fails the
// batch and the run continues.
func (o *Orchestrator) drain(ctx context.Context, it store.BatchIterator) (*domain.IndexReport, error) {
	report := &domain.IndexReport{Success: true}
	first := true

	for {
		batch, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return report, nil
		}

		if !first {
			select {
			case <-time.After(o.cfg.BatchPause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		first = false

		taskID, err := o.engine.IndexBatch(ctx, batch)
		if err != nil {
			report.Success = false
			report.FailedCount += len(batch)
			report.Errors = append(report.Errors, err.Error())
			documentsFailedTotal.Add(float64(len(batch)))
			o.logger.Error("batch indexing failed",
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err),
			)
			continue
		}
		report.IndexedCount += len(batch)
		report.TaskID = taskID
		documentsIndexedTotal.Add(float64(len(batch)))
	}
}

// IndexProduct fetches one product from the store and upserts it into the
// engine. Single-product updates bypass the single-flight guard: they are
// cheap and must not be starved by a long reindex.
func (o *Orchestrator) IndexProduct(ctx context.Context, id string) (*domain.IndexReport, error) {
	doc, err := o.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "index product")
	}
	if doc == nil {
		return nil, apperrors.NotFound("product", id)
	}

	taskID, err := o.engine.IndexBatch(ctx, []domain.ProductDocument{*doc})
	if err != nil {
		return nil, apperrors.Wrap(err, "index product")
	}
	documentsIndexedTotal.Inc()

	return &domain.IndexReport{
		Success:      true,
		Message:      fmt.Sprintf("product %s queued for indexing", id),
		IndexedCount: 1,
		TaskID:       taskID,
	}, nil
}

// IndexDocuments upserts caller-provided documents directly, bypassing the
// store. Serves bulk pushes from services that already hold the full
// document.
func (o *Orchestrator) IndexDocuments(ctx context.Context, docs []domain.ProductDocument) (*domain.IndexReport, error) {
	taskID, err := o.engine.IndexBatch(ctx, docs)
	if err != nil {
		return nil, apperrors.Wrap(err, "index documents")
	}
	documentsIndexedTotal.Add(float64(len(docs)))

	return &domain.IndexReport{
		Success:      true,
		Message:      fmt.Sprintf("%d documents queued for indexing", len(docs)),
		IndexedCount: len(docs),
		TaskID:       taskID,
	}, nil
}

// DeleteProduct removes one product from the engine index. Deleting an
// absent product succeeds.
func (o *Orchestrator) DeleteProduct(ctx context.Context, id string) error {
	return o.engine.Delete(ctx, id)
}

// Stats combines engine stats with the orchestrator's sync cursors.
func (o *Orchestrator) Stats(ctx context.Context) (*domain.IndexStats, error) {
	engineStats, err := o.engine.Stats(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "index stats")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return &domain.IndexStats{
		TotalProducts:   engineStats.TotalDocuments,
		IsIndexing:      engineStats.IsIndexing,
		LastFullSync:    o.lastFullSync,
		LastIncremental: o.lastIncremental,
	}, nil
}

// StartAutoSync launches the background incremental loop. Calling it while
// the loop is already running is a no-op.
func (o *Orchestrator) StartAutoSync(ctx context.Context) {
	o.autoMu.Lock()
	defer o.autoMu.Unlock()

	if o.autoCancel != nil {
		o.logger.Warn("auto sync already running")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	o.autoCancel = cancel
	o.autoDone = make(chan struct{})

	go o.autoSyncLoop(loopCtx, o.autoDone)
	o.logger.Info("started auto sync", slog.Duration("interval", o.cfg.AutoSyncInterval))
}

// StopAutoSync stops the loop and waits for it to exit. Safe to call when
// the loop is not running.
func (o *Orchestrator) StopAutoSync() {
	o.autoMu.Lock()
	cancel, done := o.autoCancel, o.autoDone
	o.autoCancel, o.autoDone = nil, nil
	o.autoMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	o.logger.Info("stopped auto sync")
}

func (o *Orchestrator) autoSyncLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.cfg.AutoSyncInterval):
		}

		// The pass runs on a detached context: cancellation interrupts
		// only the sleeps above, never a sync already in flight.
		if _, err := o.IncrementalIndex(context.WithoutCancel(ctx), nil); err != nil {
			if ctx.Err() != nil {
				return
			}
			o.logger.Error("auto sync pass failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.cfg.RecoveryDelay):
			}
		}
	}
}

func outcome(report *domain.IndexReport) string {
	if report.Success {
		return "success"
	}
	return "partial"
}
