package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func quoteMux(t *testing.T) *http.ServeMux {
	t.Helper()
	h := NewQuoteHandler(slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/quote/risk", h.GetRisk)
	mux.HandleFunc("GET /api/quote/cost", h.GetCost)
	mux.HandleFunc("GET /api/quote/redeem", h.GetRedemption)
	mux.HandleFunc("GET /api/quote/tier", h.GetTier)
	return mux
}

func getJSON(t *testing.T, mux *http.ServeMux, url string, wantStatus int) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, wantStatus, rec.Code, "body: %s", rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetRisk(t *testing.T) {
	mux := quoteMux(t)

	body := getJSON(t, mux, "/api/quote/risk?confidence=70", http.StatusOK)
	require.Equal(t, float64(50), body["risk"])

	body = getJSON(t, mux, "/api/quote/risk?confidence=90", http.StatusOK)
	require.Equal(t, float64(100), body["risk"])
}

func TestGetRisk_BadInput(t *testing.T) {
	mux := quoteMux(t)

	getJSON(t, mux, "/api/quote/risk", http.StatusBadRequest)
	getJSON(t, mux, "/api/quote/risk?confidence=95", http.StatusBadRequest)
	getJSON(t, mux, "/api/quote/risk?confidence=abc", http.StatusBadRequest)
}

func TestGetCost(t *testing.T) {
	mux := quoteMux(t)

	body := getJSON(t, mux, "/api/quote/cost?points=500", http.StatusOK)
	require.Equal(t, float64(50_000_000), body["cost"])
	require.NotContains(t, body, "cost_buffered")

	body = getJSON(t, mux, "/api/quote/cost?points=100&buffered=true", http.StatusOK)
	require.Equal(t, float64(10_000_000), body["cost"])
	require.Equal(t, float64(11_000_000), body["cost_buffered"])
}

func TestGetCost_RejectsNonUnitAmounts(t *testing.T) {
	mux := quoteMux(t)

	getJSON(t, mux, "/api/quote/cost?points=150", http.StatusBadRequest)
	getJSON(t, mux, "/api/quote/cost?points=0", http.StatusBadRequest)
	getJSON(t, mux, "/api/quote/cost?points=-100", http.StatusBadRequest)
}

func TestGetRedemption(t *testing.T) {
	mux := quoteMux(t)

	body := getJSON(t, mux, "/api/quote/redeem?points=500", http.StatusOK)
	payout, ok := body["payout"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(50_000_000), payout["gross"])
	require.Equal(t, float64(2_500_000), payout["fee"])
	require.Equal(t, float64(47_500_000), payout["net"])
}

func TestGetTier(t *testing.T) {
	mux := quoteMux(t)

	body := getJSON(t, mux, "/api/quote/tier?reputation=699", http.StatusOK)
	require.Equal(t, "new", body["tier"])
	require.Equal(t, float64(70), body["confidence_cap"])

	body = getJSON(t, mux, "/api/quote/tier?reputation=850", http.StatusOK)
	require.Equal(t, "proven", body["tier"])
	require.Equal(t, float64(80), body["confidence_cap"])

	body = getJSON(t, mux, "/api/quote/tier?reputation=851", http.StatusOK)
	require.Equal(t, "elite", body["tier"])
	require.Equal(t, float64(90), body["confidence_cap"])
}
