// Package live serves dashboard subscriptions over a websocket. Each
// subscription runs a named query through a livequery.Tracker, and domain
// events refresh the subscriptions whose query depends on them.
package live

import "encoding/json"

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "subscribe", "update", "unsubscribe", "ping"
	ID   string          `json:"id"`   // client-assigned subscription or request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// SubscribeData is the payload for "subscribe" messages.
type SubscribeData struct {
	Query  string          `json:"query"`
	Params json.RawMessage `json:"params,omitempty"`
}

// UpdateData is the payload for "update" messages. New params replace the
// old ones and supersede any fetch still in flight.
type UpdateData struct {
	Params json.RawMessage `json:"params"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "result", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // echoes client ID
	Data      any    `json:"data,omitempty"`
}

// ResultData carries one query result. Gen increases with every params
// change or refresh of the subscription.
type ResultData struct {
	Query string `json:"query"`
	Gen   uint64 `json:"gen"`
	Value any    `json:"value"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string   `json:"session_id"`
	Queries   []string `json:"queries"`
	ExpiresAt string   `json:"expires_at"`
}

// Error codes.
const (
	CodeUnknownType  = "unknown_type"
	CodeInvalidData  = "invalid_data"
	CodeUnknownQuery = "unknown_query"
	CodeDuplicateID  = "duplicate_id"
	CodeNotFound     = "not_found"
	CodeQueryError   = "query_error"
)
