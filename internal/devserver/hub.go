package devserver

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types pushed to browsers
const (
	MsgHello  = "HELLO"
	MsgAck    = "ACK"
	MsgReload = "RELOAD"
	MsgError  = "ERROR"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Message is the JSON frame exchanged over the reload socket
type Message struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub tracks connected browsers and broadcasts reload messages
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// last is replayed to clients that connect after an error
	last *Message
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: map[string]*client{},
		upgrader: websocket.Upgrader{
			// dev only: any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Clients returns the number of connected browsers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Slow clients whose buffer is
// full are dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.Type == MsgError {
		m := msg
		h.last = &m
	} else {
		h.last = nil
	}

	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client", "client", id)
			delete(h.clients, id)
			close(c.send)
		}
	}
}

// ServeHTTP upgrades the request and serves one client
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan Message, sendBuffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	if h.last != nil {
		c.send <- *h.last
	}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "client", c.id)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "client", c.id, "error", err)
			}
			return
		}

		switch msg.Type {
		case MsgHello:
			h.mu.RLock()
			if _, ok := h.clients[c.id]; ok {
				select {
				case c.send <- Message{Type: MsgAck, ID: c.id}:
				default:
				}
			}
			h.mu.RUnlock()
		default:
			h.logger.Debug("unknown websocket message", "client", c.id, "type", msg.Type)
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("websocket write failed", "client", c.id, "error", err)
			h.remove(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
