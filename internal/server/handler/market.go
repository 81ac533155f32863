package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/service"
)

// MarketHandler serves market view endpoints.
type MarketHandler struct {
	svc    *service.LeaderboardService
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(svc *service.LeaderboardService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, logger: logHandler(logger, "market")}
}

// ListMarkets returns every market view from the latest snapshot, newest
// first.
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.svc.Markets(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No polling pass has completed yet; an empty board, not an error.
			writeJSON(w, http.StatusOK, map[string]any{"markets": []domain.MarketSnapshot{}})
			return
		}
		h.logger.ErrorContext(r.Context(), "market list failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"markets": markets})
}

// GetMarket returns a single market view by id.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "market id is required")
		return
	}

	market, err := h.svc.Market(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "market lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, market)
}
