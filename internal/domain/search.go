package domain

// Sort field selections for search requests.
const (
	SortRelevance  = "relevance"
	SortPrice      = "price"
	SortCreatedAt  = "created_at"
	SortOrderCount = "order_count"
	SortViewCount  = "view_count"
	SortRating     = "rating"
	SortDiscount   = "discount"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SortableFields returns the set of fields an explicit sort may target.
// Anything outside this set falls back to relevance ranking.
func SortableFields() []string {
	return []string{SortPrice, SortCreatedAt, SortOrderCount, SortViewCount, SortRating, SortDiscount}
}

// IsSortableField reports whether field maps to an engine sortable attribute.
func IsSortableField(field string) bool {
	for _, f := range SortableFields() {
		if f == field {
			return true
		}
	}
	return false
}

// SearchRequest holds all parameters for a product search. Optional filter
// predicates are pointers; a nil field contributes no filter clause.
type SearchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`

	CategoryID   *string  `json:"category_id,omitempty"`
	CategoryName *string  `json:"category_name,omitempty"`
	SellerID     *string  `json:"seller_id,omitempty"`
	Status       *string  `json:"status,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	InStock      *bool    `json:"in_stock,omitempty"`
	MinRating    *float64 `json:"min_rating,omitempty"`
	HasDiscount  *bool    `json:"has_discount,omitempty"`

	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`

	Highlight  bool `json:"highlight"`
	ShowFacets bool `json:"show_facets"`
}

// Normalize clamps pagination into its bounds and fills defaults for sort
// selection. It mutates the request in place.
func (r *SearchRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	if r.SortBy == "" {
		r.SortBy = SortRelevance
	}
	if r.SortOrder != OrderAsc {
		r.SortOrder = OrderDesc
	}
}

// Offset returns the engine offset for the normalized page/limit pair.
func (r *SearchRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// ProductResult is a single product in a search response, projected from a
// raw engine hit.
type ProductResult struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	Currency        string         `json:"currency"`
	Discount        float64        `json:"discount"`
	DiscountedPrice float64        `json:"discounted_price"`
	Images          []string       `json:"images"`
	CategoryID      string         `json:"category_id"`
	CategoryName    string         `json:"category_name"`
	SellerID        string         `json:"seller_id"`
	SellerName      string         `json:"seller_name"`
	Stock           int            `json:"stock"`
	InStock         bool           `json:"in_stock"`
	Rating          *float64       `json:"rating,omitempty"`
	ReviewCount     int            `json:"review_count"`
	OrderCount      int            `json:"order_count"`
	Status          string         `json:"status"`
	SKU             string         `json:"sku"`
	Formatted       map[string]any `json:"_formatted,omitempty"`
}

// FacetValue is one value of a facet with its document count.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetGroup is a facet field with its value distribution, sorted by
// descending count.
type FacetGroup struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Values      []FacetValue `json:"values"`
}

// SearchResponse is the full search result with pagination metadata.
type SearchResponse struct {
	Query            string          `json:"query"`
	Products         []ProductResult `json:"products"`
	TotalHits        int             `json:"total_hits"`
	Page             int             `json:"page"`
	Limit            int             `json:"limit"`
	TotalPages       int             `json:"total_pages"`
	HasNextPage      bool            `json:"has_next_page"`
	HasPrevPage      bool            `json:"has_prev_page"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	Facets           []FacetGroup    `json:"facets,omitempty"`
}

// Paginate fills the derived pagination fields from TotalHits, Page and
// Limit: total_pages = ceil(total/limit), has_next iff page < total_pages,
// has_prev iff page > 1.
func (r *SearchResponse) Paginate() {
	if r.Limit > 0 {
		r.TotalPages = (r.TotalHits + r.Limit - 1) / r.Limit
	}
	r.HasNextPage = r.Page < r.TotalPages
	r.HasPrevPage = r.Page > 1
}

// AutocompleteRequest asks for suggestions matching a partial query.
type AutocompleteRequest struct {
	Query             string `json:"query"`
	Limit             int    `json:"limit"`
	IncludeProducts   bool   `json:"include_products"`
	IncludeCategories bool   `json:"include_categories"`
}

// AutocompleteProduct is a product suggestion.
type AutocompleteProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image,omitempty"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"category_name,omitempty"`
}

// AutocompleteCategory is a category suggestion with its product count.
type AutocompleteCategory struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// AutocompleteResponse bundles product, category and term suggestions.
type AutocompleteResponse struct {
	Query            string                 `json:"query"`
	Products         []AutocompleteProduct  `json:"products"`
	Categories       []AutocompleteCategory `json:"categories"`
	Suggestions      []string               `json:"suggestions"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
}
