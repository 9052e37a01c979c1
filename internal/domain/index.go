package domain

import "time"

// IndexReport is the outcome of a synchronization run. Partial failures are
// aggregated here rather than surfaced as errors: Success is true only when
// no document failed.
type IndexReport struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	IndexedCount int      `json:"indexed_count"`
	FailedCount  int      `json:"failed_count"`
	ElapsedMs    int64    `json:"elapsed_ms"`
	TaskID       int64    `json:"task_id,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// EngineStats is what the search engine reports about its index.
type EngineStats struct {
	TotalDocuments int64 `json:"total_documents"`
	IsIndexing     bool  `json:"is_indexing"`
}

// IndexStats merges engine-reported statistics with the orchestrator's sync
// cursors.
type IndexStats struct {
	TotalProducts   int64      `json:"total_products"`
	IsIndexing      bool       `json:"is_indexing"`
	LastFullSync    *time.Time `json:"last_full_sync,omitempty"`
	LastIncremental *time.Time `json:"last_incremental_sync,omitempty"`
}
