package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/formula"
)

// QuoteHandler serves the pure pricing endpoints. Every figure is computed
// with the same integer arithmetic as settlement; nothing here touches
// storage.
type QuoteHandler struct {
	curve  formula.Curve
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler using the default curve.
func NewQuoteHandler(logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{curve: formula.Default(), logger: logHandler(logger, "quote")}
}

// GetRisk returns the stake portion at hazard for a confidence level,
// together with the tier-derived confidence cap context.
// GET /api/quote/risk?confidence=70
func (h *QuoteHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	confidence, ok := int64Param(r, "confidence")
	if !ok {
		writeError(w, http.StatusBadRequest, "confidence is required")
		return
	}

	risk, err := formula.Risk(confidence)
	if err != nil {
		h.writeFormulaError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"confidence": confidence,
		"risk":       risk,
	})
}

// GetCost returns the estimated purchase price for a points quantity. With
// buffered=true the safety buffer is included, which is what a caller should
// submit on-chain.
// GET /api/quote/cost?points=500&buffered=true
func (h *QuoteHandler) GetCost(w http.ResponseWriter, r *http.Request) {
	points, ok := int64Param(r, "points")
	if !ok {
		writeError(w, http.StatusBadRequest, "points is required")
		return
	}

	cost, err := h.curve.Cost(points)
	if err != nil {
		h.writeFormulaError(w, err)
		return
	}

	resp := map[string]any{
		"points": points,
		"cost":   cost,
	}
	if r.URL.Query().Get("buffered") == "true" {
		buffered, err := h.curve.CostBuffered(points)
		if err != nil {
			h.writeFormulaError(w, err)
			return
		}
		resp["cost_buffered"] = buffered
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetRedemption returns the gross/fee/net split for redeeming points.
// GET /api/quote/redeem?points=500
func (h *QuoteHandler) GetRedemption(w http.ResponseWriter, r *http.Request) {
	points, ok := int64Param(r, "points")
	if !ok {
		writeError(w, http.StatusBadRequest, "points is required")
		return
	}

	payout, err := h.curve.Redemption(points)
	if err != nil {
		h.writeFormulaError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"points": points,
		"payout": payout,
	})
}

// GetTier classifies a reputation score and reports the confidence cap.
// GET /api/quote/tier?reputation=720
func (h *QuoteHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	reputation, ok := int64Param(r, "reputation")
	if !ok {
		writeError(w, http.StatusBadRequest, "reputation is required")
		return
	}

	tier := formula.TierFor(reputation)
	writeJSON(w, http.StatusOK, map[string]any{
		"reputation":     reputation,
		"tier":           tier,
		"confidence_cap": formula.ConfidenceCap(tier),
	})
}

func (h *QuoteHandler) writeFormulaError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrInvalidConfidence) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
