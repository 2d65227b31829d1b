package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	"github.com/zwehtet-dev/talent2income-rating/pkg/httputil"
	"github.com/zwehtet-dev/talent2income-rating/pkg/pagination"
)

// RankingService is the ranking functionality exposed over HTTP.
type RankingService interface {
	GetUserRanking(ctx context.Context, userID string, categoryID *string) (*domain.RankingResult, error)
	Leaderboard(ctx context.Context, categoryID *string, params pagination.Params) ([]domain.RankedUser, int, error)
}

// RankingHandler handles HTTP requests for ranking endpoints.
type RankingHandler struct {
	service RankingService
	logger  *slog.Logger
}

// NewRankingHandler creates a new ranking HTTP handler.
func NewRankingHandler(svc RankingService, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{
		service: svc,
		logger:  logger,
	}
}

// GetUserRanking handles GET /api/v1/ratings/{userId}/ranking
func (h *RankingHandler) GetUserRanking(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if _, ok := httputil.ParseUUID(w, userID); !ok {
		return
	}

	categoryID, ok := httputil.OptionalUUIDQuery(w, r, "category_id")
	if !ok {
		return
	}

	result, err := h.service.GetUserRanking(r.Context(), userID, categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// ListRankings handles GET /api/v1/rankings
func (h *RankingHandler) ListRankings(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := httputil.OptionalUUIDQuery(w, r, "category_id")
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	users, total, err := h.service.Leaderboard(r.Context(), categoryID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(users, total, params.Page, params.PerPage))
}
