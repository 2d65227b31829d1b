package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	"github.com/zwehtet-dev/talent2income-rating/internal/rating"
	"github.com/zwehtet-dev/talent2income-rating/pkg/httputil"
	"github.com/zwehtet-dev/talent2income-rating/pkg/validator"
)

// MaxBulkUsers caps the number of user ids accepted by the bulk endpoint.
// BulkRatingsRequest's validate tag repeats it as max=100.
const MaxBulkUsers = 100

// RatingService is the rating functionality exposed over HTTP.
type RatingService interface {
	CalculateUserRatingStats(ctx context.Context, userID string, useCache bool) (*domain.RatingStats, error)
	InvalidateUserCache(ctx context.Context, userID string) error
	BulkCalculateRatings(ctx context.Context, userIDs []string) (map[string]*domain.RatingStats, error)
	ReviewerCredibility(ctx context.Context, reviewerID string) (*domain.ReviewerCredibility, error)
}

// RatingHandler handles HTTP requests for rating endpoints.
type RatingHandler struct {
	service RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating HTTP handler.
func NewRatingHandler(svc RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / response DTOs ---

// BulkRatingsRequest is the JSON request body for bulk rating calculation.
type BulkRatingsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=100,dive,uuid"`
}

// CredibilityResponse is the JSON representation of a reviewer's credibility.
type CredibilityResponse struct {
	ReviewerID     string  `json:"reviewer_id"`
	AverageRating  float64 `json:"average_rating"`
	ReviewCount    int     `json:"review_count"`
	AccountAgeDays int     `json:"account_age_days"`
}

// --- Handlers ---

// GetRatingStats handles GET /api/v1/ratings/{userId}
func (h *RatingHandler) GetRatingStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if _, ok := httputil.ParseUUID(w, userID); !ok {
		return
	}

	fresh, ok := httputil.BoolQuery(w, r, "fresh", false)
	if !ok {
		return
	}

	stats, err := h.service.CalculateUserRatingStats(r.Context(), userID, !fresh)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// InvalidateCache handles DELETE /api/v1/ratings/{userId}/cache
func (h *RatingHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if _, ok := httputil.ParseUUID(w, userID); !ok {
		return
	}

	if err := h.service.InvalidateUserCache(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkCalculate handles POST /api/v1/ratings/bulk
func (h *RatingHandler) BulkCalculate(w http.ResponseWriter, r *http.Request) {
	var req BulkRatingsRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	results, err := h.service.BulkCalculateRatings(r.Context(), req.UserIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: results})
}

// GetCredibility handles GET /api/v1/reviewers/{userId}/credibility
func (h *RatingHandler) GetCredibility(w http.ResponseWriter, r *http.Request) {
	reviewerID := chi.URLParam(r, "userId")
	if _, ok := httputil.ParseUUID(w, reviewerID); !ok {
		return
	}

	cred, err := h.service.ReviewerCredibility(r.Context(), reviewerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CredibilityResponse{
		ReviewerID:     cred.ReviewerID,
		AverageRating:  rating.Round(cred.AverageRating, 2),
		ReviewCount:    cred.ReviewCount,
		AccountAgeDays: cred.AccountAgeDays,
	}})
}
