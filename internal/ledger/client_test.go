package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func rawEvent(user string, ts int64) RawEvent {
	return RawEvent{
		Type:        "0xcafe::calibr::ProfileCreated",
		TimestampMs: ts,
		TxDigest:    "digest",
		EventSeq:    "0",
		ParsedJSON:  map[string]any{"user": user, "initial_reputation": "700"},
	}
}

// rpcHandler wraps a per-call page function in the JSON-RPC envelope.
func rpcHandler(t *testing.T, page func(call int) EventPage) (http.HandlerFunc, *int) {
	t.Helper()
	calls := 0
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, methodQueryEvents, req.Method)

		result, err := json.Marshal(page(calls))
		require.NoError(t, err)
		calls++

		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  json.RawMessage(result),
		})
	}, &calls
}

func TestFetchAllEvents_StopsAtPageCeiling(t *testing.T) {
	// The endpoint misbehaves: every page reports hasNextPage=true.
	handler, calls := rpcHandler(t, func(call int) EventPage {
		return EventPage{
			Data:        []RawEvent{rawEvent("0xa", int64(1000+call))},
			NextCursor:  json.RawMessage(`{"tx":"next"}`),
			HasNextPage: true,
		}
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe", MaxPages: 5}, testLogger())
	events := client.FetchAllEvents(context.Background(), domain.KindProfileCreated)

	require.Equal(t, 5, *calls, "must not query past the page ceiling")
	require.Len(t, events, 5)
}

func TestFetchAllEvents_TerminatesWhenExhausted(t *testing.T) {
	handler, calls := rpcHandler(t, func(call int) EventPage {
		if call == 0 {
			return EventPage{
				Data:        []RawEvent{rawEvent("0xa", 1000), rawEvent("0xb", 2000)},
				NextCursor:  json.RawMessage(`{"tx":"p2"}`),
				HasNextPage: true,
			}
		}
		return EventPage{
			Data:        []RawEvent{rawEvent("0xc", 3000)},
			HasNextPage: false,
		}
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe"}, testLogger())
	events := client.FetchAllEvents(context.Background(), domain.KindProfileCreated)

	require.Equal(t, 2, *calls)
	require.Len(t, events, 3)
	require.Equal(t, "0xa", events[0].ParsedJSON["user"])
	require.Equal(t, "0xc", events[2].ParsedJSON["user"])
}

func TestFetchAllEvents_FailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe"}, testLogger())
	events := client.FetchAllEvents(context.Background(), domain.KindProfileCreated)
	require.Empty(t, events, "query failure must degrade to an empty result")
}

func TestFetchAllEvents_RPCErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32000, "message": "node overloaded"},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe"}, testLogger())
	events := client.FetchAllEvents(context.Background(), domain.KindProfileCreated)
	require.Empty(t, events)
}

func TestQueryEvents_WrapsQueryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe"}, testLogger())
	_, err := client.QueryEvents(context.Background(), domain.KindMarketCreated, nil, 10)
	require.ErrorIs(t, err, domain.ErrQueryFailed)
}

func TestGetObjects_Batch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, methodGetObjects, req.Method)

		objects := []RawObject{
			{ObjectID: "0x1", Version: "4", Fields: map[string]any{"yes_risk_total": "150"}},
			{ObjectID: "0x2", Version: "9", Fields: map[string]any{"yes_risk_total": "0"}},
		}
		result, err := json.Marshal(objects)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  json.RawMessage(result),
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Package: "0xcafe"}, testLogger())
	objects, err := client.GetObjects(context.Background(), []string{"0x1", "0x2"})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	require.Equal(t, "0x1", objects[0].ObjectID)
}

func TestGetObjects_EmptyIDs(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://unused", Package: "0xcafe"}, testLogger())
	objects, err := client.GetObjects(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, objects)
}
