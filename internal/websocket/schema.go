package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady  Event = "ready"
	EventChange Event = "change"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// ReadyFrame confirms the subscription and lists the channels being relayed.
type ReadyFrame struct {
	Event    Event    `json:"event"`
	Channels []string `json:"channels"`
}

// ChangeFrame carries one published change event untouched.
type ChangeFrame struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorFrame struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongFrame struct {
	Event Event `json:"event"`
}
