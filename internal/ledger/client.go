// Package ledger implements the read-side query client for the Calibr
// ledger's JSON-RPC API: paginated event queries and batched object fetches.
// It is the only package that talks to the network; everything above it
// consumes typed domain events.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

const (
	methodQueryEvents = "calibr_queryEvents"
	methodGetObjects  = "calibr_multiGetObjects"

	// DefaultPageSize is the number of events requested per page.
	DefaultPageSize = 50

	// DefaultMaxPages bounds the pagination loop. The ceiling protects
	// against a misbehaving endpoint that always reports hasNextPage.
	DefaultMaxPages = 20
)

// Config holds the query client parameters.
type Config struct {
	// Endpoint is the JSON-RPC read API URL.
	Endpoint string

	// Package is the on-ledger package whose events are queried; event type
	// identifiers are formed as "<package>::calibr::<Kind>".
	Package string

	PageSize int
	MaxPages int
}

// Client is the JSON-RPC query client.
type Client struct {
	endpoint string
	pkg      string
	pageSize int
	maxPages int

	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a query client. Zero PageSize/MaxPages fall back to the
// package defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Client{
		endpoint: cfg.Endpoint,
		pkg:      strings.TrimSuffix(cfg.Package, "::"),
		pageSize: pageSize,
		maxPages: maxPages,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "ledger")),
	}
}

// EventType returns the full on-ledger event type identifier for a kind.
func (c *Client) EventType(kind domain.EventKind) string {
	return fmt.Sprintf("%s::calibr::%s", c.pkg, kind)
}

// QueryEvents fetches a single page of events of the given kind in ascending
// ledger order, starting after cursor (nil for the first page).
func (c *Client) QueryEvents(ctx context.Context, kind domain.EventKind, cursor Cursor, pageSize int) (EventPage, error) {
	params := []any{
		map[string]any{"MoveEventType": c.EventType(kind)},
		cursor,
		pageSize,
		false, // descending = false: ascending order
	}

	result, err := c.call(ctx, methodQueryEvents, params)
	if err != nil {
		return EventPage{}, fmt.Errorf("ledger: query %s events: %w", kind, err)
	}

	var page EventPage
	if err := json.Unmarshal(result, &page); err != nil {
		return EventPage{}, fmt.Errorf("ledger: decode %s event page: %w", kind, err)
	}
	return page, nil
}

// FetchAllEvents pages forward through every event of the given kind until
// the source reports no more pages or the page ceiling is reached. Transport
// or decode failures degrade to whatever was collected so far with a logged
// warning — the caller treats "no events" and "query failed" identically, so
// a bad poll produces an empty view corrected on the next tick, never an
// aborted pass.
func (c *Client) FetchAllEvents(ctx context.Context, kind domain.EventKind) []RawEvent {
	var (
		events []RawEvent
		cursor Cursor
	)

	for page := 0; page < c.maxPages; page++ {
		p, err := c.QueryEvents(ctx, kind, cursor, c.pageSize)
		if err != nil {
			c.logger.Warn("event query failed, degrading to partial result",
				slog.String("kind", string(kind)),
				slog.Int("pages_fetched", page),
				slog.String("error", err.Error()),
			)
			return events
		}

		events = append(events, p.Data...)

		if !p.HasNextPage || len(p.NextCursor) == 0 {
			return events
		}
		cursor = p.NextCursor
	}

	c.logger.Warn("event pagination hit page ceiling",
		slog.String("kind", string(kind)),
		slog.Int("max_pages", c.maxPages),
		slog.Int("events", len(events)),
	)
	return events
}

// GetObjects batch-fetches current object state by id in a single call (no
// pagination). Individual malformed records are the caller's concern; a
// transport failure is returned as an error for the caller to degrade on.
func (c *Client) GetObjects(ctx context.Context, ids []string) ([]RawObject, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	result, err := c.call(ctx, methodGetObjects, []any{ids})
	if err != nil {
		return nil, fmt.Errorf("ledger: get %d objects: %w", len(ids), err)
	}

	var objects []RawObject
	if err := json.Unmarshal(result, &objects); err != nil {
		return nil, fmt.Errorf("ledger: decode objects: %w", err)
	}
	return objects, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// call executes a JSON-RPC request and returns the raw result field.
func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrQueryFailed, resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: rpc error %d: %s", domain.ErrQueryFailed, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return rpcResp.Result, nil
}
