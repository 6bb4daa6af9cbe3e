package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/id"
	"github.com/amterp/wallet/internal/wallet"
)

// Message types sent to WebSocket clients.
const (
	MessageConnected    = "connected"
	MessageCardsChanged = "cards_changed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHub manages WebSocket connections and broadcasts card list changes.
type WebSocketHub struct {
	log     zerolog.Logger
	current func() wallet.Snapshot

	mu      sync.RWMutex
	clients map[*WebSocketClient]bool
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	id   string
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

// WebSocketMessage is the JSON message sent to clients.
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CardsChanged is the payload of a cards_changed message.
type CardsChanged struct {
	Revision uint64         `json:"revision"`
	Cards    []CardResponse `json:"cards"`
}

// NewWebSocketHub creates a new WebSocket hub. current supplies the snapshot
// reported to newly connected clients.
func NewWebSocketHub(log zerolog.Logger, current func() wallet.Snapshot) *WebSocketHub {
	return &WebSocketHub{
		log:     log.With().Str("component", "ws").Logger(),
		current: current,
		clients: make(map[*WebSocketClient]bool),
	}
}

// OnSnapshot broadcasts snap to every client. It is meant to be passed to
// wallet.Store.Subscribe.
func (h *WebSocketHub) OnSnapshot(snap wallet.Snapshot) {
	msg := WebSocketMessage{
		Type: MessageCardsChanged,
		Data: CardsChanged{Revision: snap.Revision, Cards: toCardResponses(snap.Cards)},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal cards change")
		return
	}

	h.broadcast(data)
}

// broadcast sends a message to all connected clients.
func (h *WebSocketHub) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*WebSocketClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

// trySend attempts to send data to a client, handling the case where
// the client's channel was closed between snapshot and send.
func (h *WebSocketHub) trySend(client *WebSocketClient, data []byte) {
	defer func() {
		// Channel was closed by removeClient
		_ = recover()
	}()

	select {
	case client.send <- data:
	default:
		h.log.Warn().Str("client", client.id).Msg("client too slow, dropping")
		h.removeClient(client)
	}
}

func (h *WebSocketHub) addClient(client *WebSocketClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

// register queues the welcome and adds client under mu. A snapshot newer
// than the welcome's revision always reaches the client.
func (h *WebSocketHub) register(client *WebSocketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := h.current()
	welcome := WebSocketMessage{
		Type: MessageConnected,
		Data: map[string]any{
			"client_id": client.id,
			"revision":  snap.Revision,
		},
	}
	if data, err := json.Marshal(welcome); err == nil {
		client.send <- data
	}
	h.clients[client] = true
}

func (h *WebSocketHub) removeClient(client *WebSocketClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// CloseAll disconnects every client.
func (h *WebSocketHub) CloseAll() {
	h.mu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// ServeWS handles WebSocket connection requests.
func (h *WebSocketHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &WebSocketClient{
		id:   id.NewClientID(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register(client)
	h.log.Debug().Str("client", client.id).Msg("websocket connected")

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the WebSocket connection.
// Clients don't send anything; reading detects disconnects.
func (c *WebSocketClient) readPump() {
	defer func() {
		// writePump owns the connection and exits once send is closed
		c.hub.removeClient(c)
		c.hub.log.Debug().Str("client", c.id).Msg("websocket disconnected")
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("client", c.id).Msg("websocket read error")
			}
			break
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON message per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
