package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/service"
)

// LeaderboardHandler serves the leaderboard and per-user endpoints.
type LeaderboardHandler struct {
	svc    *service.LeaderboardService
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(svc *service.LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc, logger: logHandler(logger, "leaderboard")}
}

// GetLeaderboard returns the latest ranked snapshot for a window. The
// optional viewer parameter marks the caller's own row.
// GET /api/leaderboard?window=all|month|week&viewer=0x...
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	window := windowParam(r)
	viewer := r.URL.Query().Get("viewer")

	snap, err := h.svc.Leaderboard(r.Context(), window, viewer)
	if err != nil {
		h.writeServiceError(w, r, err, "leaderboard lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GetUser returns one user's leaderboard row plus their prediction history.
// GET /api/users/{address}?window=all|month|week
func (h *LeaderboardHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	detail, err := h.svc.User(r.Context(), windowParam(r), address)
	if err != nil {
		h.writeServiceError(w, r, err, "user lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// writeServiceError maps domain errors onto HTTP statuses, logging only the
// unexpected ones.
func (h *LeaderboardHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), logMsg, slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
