package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/rwi-modeling/backend/internal/models"
)

// WebSocket message types for the event protocol
const (
	// Client -> Server messages
	MsgTypeSubscribe = "subscribe"
	MsgTypePing      = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeEvent     = "event"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

const (
	clientBufferSize = 64
	writeWait        = 10 * time.Second
)

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// SubscribePayload narrows a connection to the events of one session. An
// empty SessionID receives every event.
type SubscribePayload struct {
	SessionID string `json:"sessionId"`
}

// WebSocket error response
type WSErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	send chan WSMessage

	mu     sync.RWMutex
	filter string
}

func (c *wsClient) wants(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter == "" || c.filter == sessionID
}

// EventHub pushes session events to WebSocket clients
type EventHub struct {
	upgrader    websocket.Upgrader
	clients     map[*wsClient]struct{}
	clientsMu   sync.RWMutex
	unsubscribe func()
	logger      *log.Logger
}

// NewEventHub creates a hub subscribed to the events of sessions
func NewEventHub(sessions SessionManager) *EventHub {
	hub := &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		clients: make(map[*wsClient]struct{}),
		logger:  log.New("ws"),
	}
	hub.unsubscribe = sessions.Subscribe(hub.Broadcast)
	return hub
}

// Broadcast queues ev for every interested client. Clients whose buffer is
// full miss the event.
func (hub *EventHub) Broadcast(ev models.SessionEvent) {
	msg := WSMessage{
		Type:      MsgTypeEvent,
		ID:        ev.SessionID,
		Payload:   mustJSON(ev),
		Timestamp: ev.Timestamp,
	}

	hub.clientsMu.RLock()
	defer hub.clientsMu.RUnlock()
	for c := range hub.clients {
		if !c.wants(ev.SessionID) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			hub.logger.Warnf("dropping %s event for slow client", ev.Type)
		}
	}
}

// Logger returns the hub's logger.
func (hub *EventHub) Logger() *log.Logger {
	return hub.logger
}

// ClientCount returns the number of connected clients
func (hub *EventHub) ClientCount() int {
	hub.clientsMu.RLock()
	defer hub.clientsMu.RUnlock()
	return len(hub.clients)
}

// Close stops receiving session events
func (hub *EventHub) Close() {
	if hub.unsubscribe != nil {
		hub.unsubscribe()
	}
}

// HandleWebSocket upgrades HTTP connection to WebSocket and streams events
func (hub *EventHub) HandleWebSocket(c echo.Context) error {
	ws, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	client := &wsClient{send: make(chan WSMessage, clientBufferSize)}
	hub.register(client)
	hub.logger.Debugf("client connected (%d total)", hub.ClientCount())

	done := make(chan struct{})
	go hub.writeLoop(ws, client, done)

	client.send <- WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()}

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Warnf("connection error: %v", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			hub.trySend(client, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypeSubscribe:
			var payload SubscribePayload
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					hub.trySend(client, errorMessage("Invalid subscribe payload: "+err.Error(), "INVALID_PAYLOAD"))
					continue
				}
			}
			client.mu.Lock()
			client.filter = payload.SessionID
			client.mu.Unlock()
			hub.trySend(client, WSMessage{Type: MsgTypeSubscribe, ID: payload.SessionID, Timestamp: time.Now().UnixMilli()})
		default:
			hub.trySend(client, errorMessage("Unknown message type: "+msg.Type, "INVALID_TYPE"))
		}
	}

	hub.unregister(client)
	<-done
	hub.logger.Debugf("client disconnected")
	return nil
}

func (hub *EventHub) register(c *wsClient) {
	hub.clientsMu.Lock()
	defer hub.clientsMu.Unlock()
	hub.clients[c] = struct{}{}
}

func (hub *EventHub) unregister(c *wsClient) {
	hub.clientsMu.Lock()
	defer hub.clientsMu.Unlock()
	if _, ok := hub.clients[c]; ok {
		delete(hub.clients, c)
		close(c.send)
	}
}

// trySend queues a reply for a registered client.
func (hub *EventHub) trySend(c *wsClient, msg WSMessage) {
	hub.clientsMu.RLock()
	defer hub.clientsMu.RUnlock()
	if _, ok := hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (hub *EventHub) writeLoop(ws *websocket.Conn, c *wsClient, done chan<- struct{}) {
	defer close(done)
	for msg := range c.send {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(msg); err != nil {
			hub.logger.Warnf("failed to send message: %v", err)
			ws.Close()
			// drain until the read loop unregisters the client
			for range c.send {
			}
			return
		}
	}
}

func errorMessage(message, code string) WSMessage {
	return WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: message,
			Code:    code,
		}),
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
