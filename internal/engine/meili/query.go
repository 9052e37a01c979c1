package meili

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/deligo/search-service/internal/domain"
)

// Fields returned for autocomplete product suggestions.
var autocompleteAttributes = []string{"id", "name", "images", "price", "category_name"}

// Facet fields requested when the caller asks for distributions.
var facetFields = []string{"category_name", "status"}

// Highlight markers wrapped around matched terms.
const (
	highlightPreTag  = "<mark>"
	highlightPostTag = "</mark>"
)

// buildSearchParams translates a normalized search request into Meilisearch
// native parameters. It is a pure mapping with no side effects.
func buildSearchParams(req *domain.SearchRequest) *meilisearch.SearchRequest {
	params := &meilisearch.SearchRequest{
		Limit:                int64(req.Limit),
		Offset:               int64(req.Offset()),
		AttributesToRetrieve: []string{"*"},
	}

	if filter := buildFilter(req); filter != "" {
		params.Filter = filter
	}
	if sort := buildSort(req.SortBy, req.SortOrder); sort != nil {
		params.Sort = sort
	}
	if req.Highlight {
		params.AttributesToHighlight = []string{"name", "description"}
		params.HighlightPreTag = highlightPreTag
		params.HighlightPostTag = highlightPostTag
	}
	if req.ShowFacets {
		params.Facets = facetFields
	}

	return params
}

// buildFilter renders the present optional predicates as one AND-combined
// filter expression. Clauses appear in a fixed declared order: status,
// category id, category name, seller id, price lower bound, price upper
// bound, stock, rating, discount. An unspecified status defaults to active.
func buildFilter(req *domain.SearchRequest) string {
	var clauses []string

	status := domain.StatusActive
	if req.Status != nil {
		status = *req.Status
	}
	if status != "" {
		clauses = append(clauses, fmt.Sprintf("status = %s", quote(status)))
	}

	if req.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("category_id = %s", quote(*req.CategoryID)))
	}
	if req.CategoryName != nil {
		clauses = append(clauses, fmt.Sprintf("category_name = %s", quote(*req.CategoryName)))
	}
	if req.SellerID != nil {
		clauses = append(clauses, fmt.Sprintf("seller_id = %s", quote(*req.SellerID)))
	}
	if req.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= %g", *req.MinPrice))
	}
	if req.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= %g", *req.MaxPrice))
	}
	if req.InStock != nil && *req.InStock {
		clauses = append(clauses, "stock > 0")
	}
	if req.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= %g", *req.MinRating))
	}
	if req.HasDiscount != nil && *req.HasDiscount {
		clauses = append(clauses, "discount > 0")
	}

	return strings.Join(clauses, " AND ")
}

// buildSort maps the sort selection to an engine sort list. Relevance (and
// any unrecognized field) yields nil so the engine's default ranking applies.
func buildSort(sortBy, order string) []string {
	if sortBy == domain.SortRelevance || !domain.IsSortableField(sortBy) {
		return nil
	}
	if order != domain.OrderAsc {
		order = domain.OrderDesc
	}
	return []string{sortBy + ":" + order}
}

// quote wraps a filter value in single quotes, escaping embedded quotes.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
}
