package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/indexer"
	"github.com/deligo/search-service/pkg/httputil"
	"github.com/deligo/search-service/pkg/validator"
)

// IndexHandler handles HTTP requests for index management endpoints.
type IndexHandler struct {
	orchestrator *indexer.Orchestrator
	logger       *slog.Logger
}

// NewIndexHandler creates a new index HTTP handler.
func NewIndexHandler(orch *indexer.Orchestrator, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		orchestrator: orch,
		logger:       logger,
	}
}

// IndexProductRequest asks for one product to be (re)indexed from the store.
type IndexProductRequest struct {
	ID string `json:"id" validate:"required"`
}

// ProductPayload is a caller-provided document for bulk indexing.
type ProductPayload struct {
	ID            string   `json:"id" validate:"required"`
	SellerID      string   `json:"seller_id"`
	SKU           string   `json:"sku"`
	Name          string   `json:"name" validate:"required,min=1"`
	Description   string   `json:"description"`
	CategoryID    string   `json:"category_id"`
	CategoryName  string   `json:"category_name"`
	Price         float64  `json:"price" validate:"gte=0"`
	Currency      string   `json:"currency"`
	Discount      float64  `json:"discount" validate:"gte=0,lte=100"`
	Images        []string `json:"images"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Status        string   `json:"status"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
	OrderCount    int      `json:"order_count"`
	ViewCount     int      `json:"view_count"`
	SellerName    string   `json:"seller_name"`
	VariantValues []string `json:"variant_values"`
	SEOTags       []string `json:"seo_tags"`
}

// BulkIndexRequest is the JSON request body for bulk indexing.
type BulkIndexRequest struct {
	Products []ProductPayload `json:"products" validate:"required,min=1,max=1000,dive"`
}

// IndexProduct handles POST /api/v1/search/index/product
func (h *IndexHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IndexProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.orchestrator.IndexProduct(r.Context(), req.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// BulkIndex handles POST /api/v1/search/index/bulk
func (h *IndexHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	var req BulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	docs := make([]domain.ProductDocument, 0, len(req.Products))
	for _, p := range req.Products {
		docs = append(docs, domain.NewProductDocument(domain.ProductDocument{
			ID:           p.ID,
			SellerID:     p.SellerID,
			SKU:          p.SKU,
			Name:         p.Name,
			Description:  p.Description,
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
			Price:        p.Price,
			Currency:     p.Currency,
			Discount:     p.Discount,
			Images:       p.Images,
			Stock:        p.Stock,
			Status:       p.Status,
			Rating:       p.Rating,
			ReviewCount:  p.ReviewCount,
			OrderCount:   p.OrderCount,
			ViewCount:    p.ViewCount,
			SellerName:   p.SellerName,
		}, p.VariantValues, p.SEOTags))
	}

	report, err := h.orchestrator.IndexDocuments(r.Context(), docs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// FullReindex handles POST /api/v1/search/index/reindex. The guard is taken
// before answering, so a rebuild already in flight answers 409; the rebuild
// itself runs in the background and the request is acknowledged with 202.
func (h *IndexHandler) FullReindex(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.FullReindexAsync(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: &domain.IndexReport{
		Success: true,
		Message: "full reindex started in background",
	}})
}

// IncrementalIndex handles POST /api/v1/search/index/incremental. An
// optional since query parameter (RFC 3339) overrides the sync cursor.
func (h *IndexHandler) IncrementalIndex(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "since must be an RFC 3339 timestamp"},
			})
			return
		}
		since = &parsed
	}

	report, err := h.orchestrator.IncrementalIndex(r.Context(), since)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// DeleteProduct handles DELETE /api/v1/search/index/product/{id}
func (h *IndexHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "id is required"},
		})
		return
	}

	if err := h.orchestrator.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// Stats handles GET /api/v1/search/index/stats
func (h *IndexHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orchestrator.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
