package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/store"
)

// Store is an in-memory DocumentStore backed by a seedable map. It serves
// tests and store-less development; streams observe a snapshot taken when
// the iterator is created.
type Store struct {
	mu   sync.RWMutex
	docs map[string]domain.ProductDocument
}

// New creates a store seeded with the given documents.
func New(docs ...domain.ProductDocument) *Store {
	s := &Store{docs: make(map[string]domain.ProductDocument, len(docs))}
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return s
}

// Put adds or replaces a document.
func (s *Store) Put(doc domain.ProductDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Remove deletes a document if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// StreamAll yields active documents in id order.
func (s *Store) StreamAll(_ context.Context, batchSize int) store.BatchIterator {
	return s.snapshot(batchSize, func(doc domain.ProductDocument) bool {
		return doc.Status == domain.StatusActive
	})
}

// StreamUpdatedSince yields documents updated at or after since, id order.
func (s *Store) StreamUpdatedSince(_ context.Context, since time.Time, batchSize int) store.BatchIterator {
	cutoff := since.Unix()
	return s.snapshot(batchSize, func(doc domain.ProductDocument) bool {
		return doc.UpdatedAt >= cutoff
	})
}

// GetByID returns the document or (nil, nil) when absent.
func (s *Store) GetByID(_ context.Context, id string) (*domain.ProductDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

// Healthy always succeeds.
func (s *Store) Healthy(_ context.Context) error {
	return nil
}

func (s *Store) snapshot(batchSize int, keep func(domain.ProductDocument) bool) *sliceIterator {
	if batchSize < 1 {
		batchSize = 100
	}

	s.mu.RLock()
	docs := make([]domain.ProductDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		if keep(doc) {
			docs = append(docs, doc)
		}
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return &sliceIterator{docs: docs, batchSize: batchSize}
}

type sliceIterator struct {
	docs      []domain.ProductDocument
	batchSize int
	pos       int
}

func (it *sliceIterator) Next(_ context.Context) ([]domain.ProductDocument, error) {
	if it.pos >= len(it.docs) {
		return nil, nil
	}
	end := it.pos + it.batchSize
	if end > len(it.docs) {
		end = len(it.docs)
	}
	batch := it.docs[it.pos:end]
	it.pos = end
	return batch, nil
}
