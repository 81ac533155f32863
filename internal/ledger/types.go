package ledger

import "encoding/json"

// rpcRequest is the standard JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse is the standard JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Cursor is the opaque pagination cursor returned by the read API. It is
// passed back verbatim on the next page request and never interpreted.
type Cursor = json.RawMessage

// EventPage is one page of the event query result.
type EventPage struct {
	Data        []RawEvent `json:"data"`
	NextCursor  Cursor     `json:"nextCursor"`
	HasNextPage bool       `json:"hasNextPage"`
}

// RawEvent is a single undecoded ledger event. ParsedJSON carries the
// event-specific fields; the tagged-variant decode into domain events happens
// once, in BuildBatch, so nothing downstream touches untyped payloads.
type RawEvent struct {
	Type        string         `json:"type"`
	TimestampMs int64          `json:"timestampMs,string"`
	TxDigest    string         `json:"txDigest"`
	EventSeq    string         `json:"eventSeq"`
	ParsedJSON  map[string]any `json:"parsedJson"`
}

// RawObject is one record from a batched object fetch, used to hydrate
// current market state.
type RawObject struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Fields   map[string]any `json:"fields"`
}
