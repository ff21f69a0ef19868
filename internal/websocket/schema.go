package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
	ActionSync Action = "sync"
)

// RequestEnvelope is the only client payload on the clock stream: either a
// keepalive ping or an explicit request for a fresh clock reading.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick    Event = "tick"
	EventExpired Event = "expired"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// TickResponse carries one clock reading. MinutesRemaining is nil while the
// session has no expiry bound.
type TickResponse struct {
	Event            Event   `json:"event"`
	MinutesRemaining *int    `json:"minutes_remaining,omitempty"`
	ExpiresAt        *string `json:"expires_at,omitempty"`
}

// ExpiredResponse tells the client the session was completed server-side.
// The client should fetch the result over HTTP; the stream closes after this.
type ExpiredResponse struct {
	Event         Event `json:"event"`
	AutoSubmitted bool  `json:"auto_submitted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
