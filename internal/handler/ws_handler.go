package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/proctorguard/backend/internal/middleware"
	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/service"
	ws "github.com/proctorguard/backend/internal/websocket"
)

// clockInterval is how often the server pushes a fresh clock reading.
const clockInterval = 15 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the session clock to candidates.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionClockStream godoc
// WS /ws/v1/candidate/sessions/:session_id/clock
// Pushes the remaining time every few seconds. Each reading goes through the
// same state check candidates poll over HTTP, so a session that runs out of
// time mid-stream is completed and graded server-side before the client is
// told; the stream closes after the expired event.
func (h *WSHandler) SessionClockStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("candidate_id", claims.UserID.String()).
		Str("session_id", sessionID.String()).
		Logger()

	if !h.pushReading(conn, wsLog, claims.UserID, sessionID) {
		return
	}
	wsLog.Info().Msg("Candidate connected to clock stream")

	// Reads run in their own goroutine so ticks keep flowing while the
	// client is silent. Closing done releases a pump that read a message
	// after the write side stopped receiving, e.g. when a tick ended the
	// stream while a ping was in flight.
	done := make(chan struct{})
	defer close(done)
	requests := make(chan ws.RequestEnvelope)
	go readPump(conn, requests, done, wsLog)

	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !h.pushReading(conn, wsLog, claims.UserID, sessionID) {
				return
			}
		case msg, ok := <-requests:
			if !ok {
				wsLog.Debug().Msg("Connection closed")
				return
			}
			switch msg.Action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionSync:
				if !h.pushReading(conn, wsLog, claims.UserID, sessionID) {
					return
				}
			default:
				ws.WriteError(conn, "unknown action: "+string(msg.Action))
			}
		}
	}
}

// readPump forwards client messages to requests until the connection or the
// stream ends. It closes requests on exit so the stream loop sees the
// disconnect.
func readPump(conn *websocket.Conn, requests chan<- ws.RequestEnvelope, done <-chan struct{}, wsLog zerolog.Logger) {
	defer close(requests)
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		select {
		case requests <- msg:
		case <-done:
			return
		}
	}
}

// pushReading sends one clock reading. Returns false when the stream should
// end: the session is no longer in progress or the connection is gone.
func (h *WSHandler) pushReading(conn *websocket.Conn, wsLog zerolog.Logger, candidateID, sessionID uuid.UUID) bool {
	state, err := h.sessionService.GetSessionState(context.Background(), candidateID, sessionID)
	if err != nil {
		wsLog.Warn().Err(err).Msg("Clock reading failed")
		ws.WriteError(conn, "session unavailable")
		return false
	}

	if state.Status != model.SessionStatusInProgress {
		ws.WriteTyped(conn, ws.ExpiredResponse{
			Event:         ws.EventExpired,
			AutoSubmitted: state.AutoSubmitted,
		})
		return false
	}

	tick := ws.TickResponse{Event: ws.EventTick, MinutesRemaining: state.MinutesRemaining}
	if state.ExpiresAt != nil {
		formatted := state.ExpiresAt.UTC().Format(time.RFC3339)
		tick.ExpiresAt = &formatted
	}
	return ws.WriteTyped(conn, tick) == nil
}
