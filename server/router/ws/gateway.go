// Package ws serves the realtime chat surface. Clients exchange JSON frames
// of the form {"event": ..., "data": ...} over a single WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/citycompass/citycompass/ai"
	"github.com/citycompass/citycompass/dialog"
	"github.com/citycompass/citycompass/internal/metrics"
	"github.com/citycompass/citycompass/location"
)

const (
	// Inbound events.
	eventSendMessage    = "send_message"
	eventLocationUpdate = "location_update"
	eventPlanJourney    = "plan_journey"
	eventCheckStatus    = "check_status"

	// Outbound events.
	eventReceiveMessage      = "receive_message"
	eventLocationAcknowledge = "location_acknowledged"
	eventJourneyPlanned      = "journey_planned"
	eventJourneyError        = "journey_error"
	eventStatusUpdate        = "status_update"
	eventStatusError         = "status_error"
	eventError               = "error"
)

// Per-connection message throttle.
const (
	messagesPerSecond = 5
	messageBurst      = 10
)

// Gateway upgrades HTTP requests and runs one session per connection.
type Gateway struct {
	session  *dialog.SessionService
	upgrader websocket.Upgrader
}

func NewGateway(session *dialog.SessionService) *Gateway {
	return &Gateway{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Cross-origin policy is enforced by the HTTP middleware in
			// front of the upgrade.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// frame is the wire envelope for both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// conn is one connected client.
type conn struct {
	ws      *websocket.Conn
	session *dialog.SessionService
	limiter *rate.Limiter

	writeMu sync.Mutex

	// seq tracks the newest request per conversation so replies that were
	// overtaken by a newer message get dropped instead of delivered out of
	// order.
	seqMu sync.Mutex
	seq   map[string]uint64
}

// Handle upgrades the request and serves events until the peer disconnects.
func (g *Gateway) Handle(c echo.Context) error {
	ws, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	metrics.SocketConnected(1)
	defer metrics.SocketConnected(-1)

	client := &conn{
		ws:      ws,
		session: g.session,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), messageBurst),
		seq:     make(map[string]uint64),
	}
	client.serve(c.Request().Context())
	return nil
}

func (c *conn) serve(ctx context.Context) {
	defer c.ws.Close()

	slog.Debug("socket connected", "remote", c.ws.RemoteAddr())
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("socket read failed", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.emitError(eventError, "invalid frame", err.Error())
			continue
		}

		if !c.limiter.Allow() {
			c.emitError(eventError, "rate limit exceeded", "slow down and try again")
			continue
		}

		switch f.Event {
		case eventSendMessage:
			c.handleSendMessage(ctx, f.Data)
		case eventLocationUpdate:
			c.handleLocationUpdate(f.Data)
		case eventPlanJourney:
			c.handlePlanJourney(ctx, f.Data)
		case eventCheckStatus:
			c.handleCheckStatus(ctx, f.Data)
		default:
			c.emitError(eventError, "unknown event", f.Event)
		}
	}
}

// historyEntry is a client-supplied prior turn for stateless sessions.
type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sendMessageRequest struct {
	Message             string             `json:"message"`
	UserID              string             `json:"userId"`
	ConversationID      string             `json:"conversationId"`
	RequestID           string             `json:"requestId"`
	UserLocation        *location.GeoPoint `json:"userLocation"`
	ConversationHistory []historyEntry     `json:"conversationHistory"`
}

// messageReply is the receive_message / journey_planned / status_update
// payload: the reply envelope plus delivery metadata.
type messageReply struct {
	ID              string            `json:"id"`
	RequestID       string            `json:"requestId,omitempty"`
	Type            string            `json:"type"`
	Message         string            `json:"message"`
	Data            any               `json:"data,omitempty"`
	LocationContext *location.Context `json:"locationContext,omitempty"`
	Timestamp       string            `json:"timestamp"`
	Error           bool              `json:"error,omitempty"`
}

func (c *conn) handleSendMessage(ctx context.Context, data json.RawMessage) {
	var req sendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.emitError(eventError, "invalid send_message payload", err.Error())
		return
	}
	if req.Message == "" {
		c.emitError(eventError, "message is required", "")
		return
	}

	seq := c.nextSeq(req.ConversationID)

	history := make([]ai.Message, 0, len(req.ConversationHistory))
	for _, h := range req.ConversationHistory {
		history = append(history, ai.Message{Role: h.Role, Content: h.Content})
	}

	// Model calls can take seconds; process off the read loop so a slow
	// reply does not block location updates.
	go func() {
		envelope, err := c.session.Process(ctx, dialog.SessionInput{
			ConversationID: req.ConversationID,
			UserID:         req.UserID,
			Message:        req.Message,
			UserLocation:   req.UserLocation,
			History:        history,
		})
		if err != nil {
			c.emit(eventReceiveMessage, &messageReply{
				ID:        uuid.New().String(),
				RequestID: req.RequestID,
				Type:      "text",
				Message:   "Sorry, I encountered an error processing your request.",
				Timestamp: timestamp(),
				Error:     true,
			})
			return
		}

		if !c.isCurrent(req.ConversationID, seq) {
			slog.Debug("dropping stale reply",
				"conversation", req.ConversationID,
				"request", req.RequestID)
			return
		}

		c.emit(eventReceiveMessage, &messageReply{
			ID:              uuid.New().String(),
			RequestID:       req.RequestID,
			Type:            envelope.Type,
			Message:         envelope.Message,
			Data:            envelope.Data,
			LocationContext: envelope.LocationContext,
			Timestamp:       timestamp(),
		})
	}()
}

type locationUpdateRequest struct {
	UserLocation *location.GeoPoint `json:"userLocation"`
	Accuracy     float64            `json:"accuracy"`
}

func (c *conn) handleLocationUpdate(data json.RawMessage) {
	var req locationUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.emitError(eventError, "invalid location_update payload", err.Error())
		return
	}

	if req.UserLocation != nil {
		slog.Debug("location update",
			"lat", req.UserLocation.Lat,
			"lng", req.UserLocation.Lng,
			"accuracy", req.Accuracy)
	}

	c.emit(eventLocationAcknowledge, map[string]any{
		"received":  true,
		"timestamp": timestamp(),
	})
}

type planJourneyRequest struct {
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	RequestID    string             `json:"requestId"`
	UserLocation *location.GeoPoint `json:"userLocation"`
}

func (c *conn) handlePlanJourney(ctx context.Context, data json.RawMessage) {
	var req planJourneyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.emitError(eventJourneyError, "Failed to plan journey", err.Error())
		return
	}
	if req.Origin == "" || req.Destination == "" {
		c.emitError(eventJourneyError, "Failed to plan journey", "origin and destination are required")
		return
	}

	go func() {
		message := fmt.Sprintf("Plan a journey from %s to %s", req.Origin, req.Destination)
		envelope, err := c.session.Process(ctx, dialog.SessionInput{
			Message:      message,
			UserLocation: req.UserLocation,
		})
		if err != nil {
			c.emitError(eventJourneyError, "Failed to plan journey", err.Error())
			return
		}

		c.emit(eventJourneyPlanned, &messageReply{
			ID:              uuid.New().String(),
			RequestID:       req.RequestID,
			Type:            envelope.Type,
			Message:         envelope.Message,
			Data:            envelope.Data,
			LocationContext: envelope.LocationContext,
			Timestamp:       timestamp(),
		})
	}()
}

type checkStatusRequest struct {
	UserLocation *location.GeoPoint `json:"userLocation"`
}

func (c *conn) handleCheckStatus(ctx context.Context, data json.RawMessage) {
	var req checkStatusRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.emitError(eventStatusError, "Failed to check transport status", err.Error())
		return
	}

	go func() {
		envelope, err := c.session.Process(ctx, dialog.SessionInput{
			Message:      "Check current transport status",
			UserLocation: req.UserLocation,
		})
		if err != nil {
			c.emitError(eventStatusError, "Failed to check transport status", err.Error())
			return
		}

		c.emit(eventStatusUpdate, &messageReply{
			ID:        uuid.New().String(),
			Type:      envelope.Type,
			Message:   envelope.Message,
			Data:      envelope.Data,
			Timestamp: timestamp(),
		})
	}()
}

// nextSeq records a new request for the conversation and returns its
// sequence number.
func (c *conn) nextSeq(conversationID string) uint64 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	c.seq[conversationID]++
	return c.seq[conversationID]
}

// isCurrent reports whether seq is still the newest request for the
// conversation.
func (c *conn) isCurrent(conversationID string, seq uint64) bool {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	return c.seq[conversationID] == seq
}

func (c *conn) emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal socket payload", "event", event, "error", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(&frame{Event: event, Data: data}); err != nil {
		slog.Debug("socket write failed", "event", event, "error", err)
	}
}

type errorPayload struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (c *conn) emitError(event, message, details string) {
	c.emit(event, &errorPayload{
		Error:     message,
		Details:   details,
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
