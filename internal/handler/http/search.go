package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/deligo/search-service/internal/analytics"
	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/indexer"
	"github.com/deligo/search-service/internal/service"
	"github.com/deligo/search-service/pkg/httputil"
)

// SearchHandler handles HTTP requests for search and autocomplete endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Handlers grouped per concern; the router wires them together.
type Handlers struct {
	Search    *SearchHandler
	Index     *IndexHandler
	Analytics *AnalyticsHandler
}

// NewHandlers builds the full handler set.
func NewHandlers(svc *service.SearchService, orch *indexer.Orchestrator, agg *analytics.Aggregator, logger *slog.Logger) *Handlers {
	return &Handlers{
		Search:    NewSearchHandler(svc, logger),
		Index:     NewIndexHandler(orch, logger),
		Analytics: NewAnalyticsHandler(agg, logger),
	}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("query"))
	}
	if query == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "q is required"},
		})
		return
	}

	req := &domain.SearchRequest{Query: query}
	params := r.URL.Query()

	if v := params.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			req.Page = page
		}
	}
	if v := params.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			req.Limit = limit
		}
	}
	if v := params.Get("category_id"); v != "" {
		req.CategoryID = &v
	}
	if v := params.Get("category_name"); v != "" {
		req.CategoryName = &v
	}
	if v := params.Get("seller_id"); v != "" {
		req.SellerID = &v
	}
	if v := params.Get("status"); v != "" {
		req.Status = &v
	}

	var bad string
	req.MinPrice, bad = parsePrice(params.Get("min_price"), "min_price", bad)
	req.MaxPrice, bad = parsePrice(params.Get("max_price"), "max_price", bad)
	req.MinRating, bad = parsePrice(params.Get("min_rating"), "min_rating", bad)
	if bad != "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: bad},
		})
		return
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_price must not exceed max_price"},
		})
		return
	}

	if v := params.Get("in_stock"); v != "" {
		inStock := v == "true" || v == "1"
		req.InStock = &inStock
	}
	if v := params.Get("has_discount"); v != "" {
		hasDiscount := v == "true" || v == "1"
		req.HasDiscount = &hasDiscount
	}

	req.SortBy = params.Get("sort_by")
	req.SortOrder = params.Get("sort_order")
	req.Highlight = params.Get("highlight") == "true"
	req.ShowFacets = params.Get("facets") == "true"

	h.execute(w, r, req)
}

// SearchPost handles POST /api/v1/search
func (h *SearchHandler) SearchPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	req.Query = strings.TrimSpace(req.Query)

	h.execute(w, r, &req)
}

func (h *SearchHandler) execute(w http.ResponseWriter, r *http.Request, req *domain.SearchRequest) {
	userID := r.Header.Get("X-User-ID")
	sessionID := r.Header.Get("X-Session-ID")

	result, err := h.service.Search(r.Context(), req, userID, sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Autocomplete handles GET /api/v1/search/autocomplete
func (h *SearchHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: &domain.AutocompleteResponse{
			Products:    []domain.AutocompleteProduct{},
			Categories:  []domain.AutocompleteCategory{},
			Suggestions: []string{},
		}})
		return
	}

	req := &domain.AutocompleteRequest{
		Query:             query,
		Limit:             5,
		IncludeProducts:   true,
		IncludeCategories: true,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			req.Limit = limit
		}
	}
	if v := r.URL.Query().Get("products"); v == "false" {
		req.IncludeProducts = false
	}
	if v := r.URL.Query().Get("categories"); v == "false" {
		req.IncludeCategories = false
	}

	result, err := h.service.Autocomplete(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

func parsePrice(raw, name, bad string) (*float64, string) {
	if bad != "" || raw == "" {
		return nil, bad
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, name + " must be a valid number"
	}
	if value < 0 {
		return nil, name + " must not be negative"
	}
	return &value, ""
}
