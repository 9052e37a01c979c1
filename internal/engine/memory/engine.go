package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deligo/search-service/internal/domain"
)

// Engine is an in-memory implementation of the SearchEngine interface. It
// applies the same filter predicates and sort fields as the Meilisearch
// backend, with substring matching standing in for full-text relevance.
// Safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	docs    map[string]domain.ProductDocument
	order   []string
	taskSeq int64
}

// New creates an empty in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.ProductDocument),
	}
}

// Setup is a no-op: the in-memory index needs no external configuration.
func (e *Engine) Setup(_ context.Context) error {
	return nil
}

// Search filters, sorts and paginates the in-memory documents.
func (e *Engine) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	e.mu.RLock()
	matched := e.match(req)
	e.mu.RUnlock()

	sortResults(matched, req.SortBy, req.SortOrder)

	total := len(matched)
	offset := req.Offset()
	if offset > total {
		offset = total
	}
	end := offset + req.Limit
	if end > total {
		end = total
	}

	products := make([]domain.ProductResult, 0, end-offset)
	for _, doc := range matched[offset:end] {
		products = append(products, toResult(doc))
	}

	response := &domain.SearchResponse{
		Query:            req.Query,
		Products:         products,
		TotalHits:        total,
		Page:             req.Page,
		Limit:            req.Limit,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if req.ShowFacets {
		response.Facets = buildFacets(matched)
	}
	response.Paginate()

	return response, nil
}

// Autocomplete suggests active products and categories whose names contain
// the partial query.
func (e *Engine) Autocomplete(_ context.Context, req *domain.AutocompleteRequest) (*domain.AutocompleteResponse, error) {
	start := time.Now()
	queryLower := strings.ToLower(req.Query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	response := &domain.AutocompleteResponse{
		Query:       req.Query,
		Products:    []domain.AutocompleteProduct{},
		Categories:  []domain.AutocompleteCategory{},
		Suggestions: []string{},
	}

	if req.IncludeProducts {
		seen := make(map[string]struct{})
		for _, id := range e.order {
			doc := e.docs[id]
			if doc.Status != domain.StatusActive {
				continue
			}
			if !strings.Contains(strings.ToLower(doc.Name), queryLower) {
				continue
			}
			if len(response.Products) < req.Limit {
				product := domain.AutocompleteProduct{
					ID:           doc.ID,
					Name:         doc.Name,
					Price:        doc.Price,
					CategoryName: doc.CategoryName,
				}
				if len(doc.Images) > 0 {
					product.Image = doc.Images[0]
				}
				response.Products = append(response.Products, product)
			}
			for _, word := range strings.Fields(strings.ToLower(doc.Name)) {
				if !strings.Contains(word, queryLower) {
					continue
				}
				if _, dup := seen[word]; dup {
					continue
				}
				seen[word] = struct{}{}
				if len(response.Suggestions) < 5 {
					response.Suggestions = append(response.Suggestions, strings.ToUpper(word[:1])+word[1:])
				}
			}
		}
	}

	if req.IncludeCategories {
		counts := make(map[string]int)
		for _, doc := range e.docs {
			if doc.Status != domain.StatusActive || doc.CategoryName == "" {
				continue
			}
			if !strings.Contains(strings.ToLower(doc.CategoryName), queryLower) {
				continue
			}
			counts[doc.CategoryName]++
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if counts[names[i]] != counts[names[j]] {
				return counts[names[i]] > counts[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			if len(response.Categories) >= 5 {
				break
			}
			response.Categories = append(response.Categories, domain.AutocompleteCategory{
				ID:           strings.ReplaceAll(strings.ToLower(name), " ", "-"),
				Name:         name,
				ProductCount: counts[name],
			})
		}
	}

	response.ProcessingTimeMs = time.Since(start).Milliseconds()
	return response, nil
}

// IndexBatch upserts a batch of documents, preserving first-seen order for
// relevance-ranked results.
func (e *Engine) IndexBatch(_ context.Context, docs []domain.ProductDocument) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, doc := range docs {
		if _, exists := e.docs[doc.ID]; !exists {
			e.order = append(e.order, doc.ID)
		}
		e.docs[doc.ID] = doc
	}
	e.taskSeq++
	return e.taskSeq, nil
}

// Delete removes one document. Absent documents are ignored.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.docs[id]; !exists {
		return nil
	}
	delete(e.docs, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all documents.
func (e *Engine) Clear(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs = make(map[string]domain.ProductDocument)
	e.order = nil
	return nil
}

// Stats reports the current document count. The in-memory engine indexes
// synchronously, so IsIndexing is always false.
func (e *Engine) Stats(_ context.Context) (*domain.EngineStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return &domain.EngineStats{
		TotalDocuments: int64(len(e.docs)),
		IsIndexing:     false,
	}, nil
}

// Healthy always succeeds.
func (e *Engine) Healthy(_ context.Context) error {
	return nil
}

// match collects documents satisfying the query text and every present
// filter predicate, in stable insertion order. Caller holds the read lock.
func (e *Engine) match(req *domain.SearchRequest) []domain.ProductDocument {
	queryLower := strings.ToLower(req.Query)

	matched := make([]domain.ProductDocument, 0)
	for _, id := range e.order {
		doc := e.docs[id]
		if matches(doc, req, queryLower) {
			matched = append(matched, doc)
		}
	}
	return matched
}

func matches(doc domain.ProductDocument, req *domain.SearchRequest, queryLower string) bool {
	if queryLower != "" {
		haystack := strings.ToLower(doc.Name + " " + doc.Description + " " +
			doc.CategoryName + " " + doc.SKU + " " + doc.SEOTags + " " +
			doc.SellerName + " " + doc.VariantValues)
		if !strings.Contains(haystack, queryLower) {
			return false
		}
	}

	status := domain.StatusActive
	if req.Status != nil {
		status = *req.Status
	}
	if status != "" && doc.Status != status {
		return false
	}

	if req.CategoryID != nil && doc.CategoryID != *req.CategoryID {
		return false
	}
	if req.CategoryName != nil && doc.CategoryName != *req.CategoryName {
		return false
	}
	if req.SellerID != nil && doc.SellerID != *req.SellerID {
		return false
	}
	if req.MinPrice != nil && doc.Price < *req.MinPrice {
		return false
	}
	if req.MaxPrice != nil && doc.Price > *req.MaxPrice {
		return false
	}
	if req.InStock != nil && *req.InStock && doc.Stock <= 0 {
		return false
	}
	if req.MinRating != nil {
		if doc.Rating == nil || *doc.Rating < *req.MinRating {
			return false
		}
	}
	if req.HasDiscount != nil && *req.HasDiscount && doc.Discount <= 0 {
		return false
	}

	return true
}

// sortResults orders matched documents by the selected sortable field.
// Relevance keeps insertion order.
func sortResults(docs []domain.ProductDocument, sortBy, order string) {
	if sortBy == domain.SortRelevance || !domain.IsSortableField(sortBy) {
		return
	}

	key := func(d domain.ProductDocument) float64 {
		switch sortBy {
		case domain.SortPrice:
			return d.Price
		case domain.SortCreatedAt:
			return float64(d.CreatedAt)
		case domain.SortOrderCount:
			return float64(d.OrderCount)
		case domain.SortViewCount:
			return float64(d.ViewCount)
		case domain.SortRating:
			if d.Rating == nil {
				return 0
			}
			return *d.Rating
		case domain.SortDiscount:
			return d.Discount
		}
		return 0
	}

	asc := order == domain.OrderAsc
	sort.SliceStable(docs, func(i, j int) bool {
		if asc {
			return key(docs[i]) < key(docs[j])
		}
		return key(docs[i]) > key(docs[j])
	})
}

// buildFacets computes category and status distributions over the matched
// set, mirroring the facet fields the production engine exposes.
func buildFacets(docs []domain.ProductDocument) []domain.FacetGroup {
	categoryCounts := make(map[string]int)
	statusCounts := make(map[string]int)
	for _, doc := range docs {
		if doc.CategoryName != "" {
			categoryCounts[doc.CategoryName]++
		}
		if doc.Status != "" {
			statusCounts[doc.Status]++
		}
	}

	return []domain.FacetGroup{
		{Name: "category_name", DisplayName: "Category", Values: facetValues(categoryCounts)},
		{Name: "status", DisplayName: "Status", Values: facetValues(statusCounts)},
	}
}

func facetValues(counts map[string]int) []domain.FacetValue {
	values := make([]domain.FacetValue, 0, len(counts))
	for value, count := range counts {
		values = append(values, domain.FacetValue{Value: value, Count: count})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	return values
}

func toResult(doc domain.ProductDocument) domain.ProductResult {
	return domain.ProductResult{
		ID:              doc.ID,
		Name:            doc.Name,
		Description:     doc.Description,
		Price:           doc.Price,
		Currency:        doc.Currency,
		Discount:        doc.Discount,
		DiscountedPrice: doc.DiscountedPrice,
		Images:          doc.Images,
		CategoryID:      doc.CategoryID,
		CategoryName:    doc.CategoryName,
		SellerID:        doc.SellerID,
		SellerName:      doc.SellerName,
		Stock:           doc.Stock,
		InStock:         doc.Stock > 0,
		Rating:          doc.Rating,
		ReviewCount:     doc.ReviewCount,
		OrderCount:      doc.OrderCount,
		Status:          doc.Status,
		SKU:             doc.SKU,
	}
}
