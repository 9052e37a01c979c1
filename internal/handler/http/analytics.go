package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/deligo/search-service/internal/analytics"
	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/pkg/httputil"
	"github.com/deligo/search-service/pkg/validator"
)

// AnalyticsHandler handles HTTP requests for search analytics endpoints.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	logger     *slog.Logger
}

// NewAnalyticsHandler creates a new analytics HTTP handler.
func NewAnalyticsHandler(agg *analytics.Aggregator, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: agg,
		logger:     logger,
	}
}

// TrackSearchRequest is the JSON body for recording an external search event.
type TrackSearchRequest struct {
	Query        string            `json:"query" validate:"required,min=1"`
	UserID       string            `json:"user_id"`
	SessionID    string            `json:"session_id"`
	ResultsCount int               `json:"results_count" validate:"gte=0"`
	FiltersUsed  map[string]string `json:"filters_used"`
}

// TrackClickRequest is the JSON body for recording a result click.
type TrackClickRequest struct {
	Query     string `json:"query" validate:"required,min=1"`
	ProductID string `json:"product_id" validate:"required"`
	Position  int    `json:"position" validate:"gte=1"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// Report handles GET /api/v1/search/analytics
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = domain.PeriodLast24h
	}

	report := h.aggregator.Report(r.Context(), period)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// TrackSearch handles POST /api/v1/search/analytics/track
func (h *AnalyticsHandler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req TrackSearchRequest
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

	h.aggregator.TrackSearch(r.Context(), domain.AnalyticsEvent{
		Query:        req.Query,
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		ResultsCount: req.ResultsCount,
		FiltersUsed:  req.FiltersUsed,
	})
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"success": true}})
}

// TrackClick handles POST /api/v1/search/analytics/track-click. Parameters
// arrive either as a JSON body or as query parameters.
func (h *AnalyticsHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req TrackClickRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}
	} else {
		params := r.URL.Query()
		req.Query = params.Get("query")
		req.ProductID = params.Get("product_id")
		req.UserID = params.Get("user_id")
		req.SessionID = params.Get("session_id")
		if v := params.Get("position"); v != "" {
			if position, err := strconv.Atoi(v); err == nil {
				req.Position = position
			}
		}
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	h.aggregator.TrackClick(r.Context(), req.Query, req.ProductID, req.Position, req.UserID, req.SessionID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"success": true}})
}
