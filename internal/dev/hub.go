package dev

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType represents the type of a session message.
type MessageType string

const (
	MessageRender MessageType = "render"
	MessageError  MessageType = "error"
	MessageReload MessageType = "reload"
	MessageEvent  MessageType = "event"
)

// Message is exchanged with browsers via WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	HTML  string      `json:"html,omitempty"`
	Error string      `json:"error,omitempty"`

	// Event fields, sent by the client.
	OID     string `json:"oid,omitempty"`
	Event   string `json:"event,omitempty"`
	Value   string `json:"value,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// Hub manages WebSocket connections and their sessions.
type Hub struct {
	sessions   map[*Session]bool
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	newSession func() (*Session, error)
	logger     *slog.Logger
}

// NewHub creates a hub that starts a session from newSession for every
// connection.
func NewHub(newSession func() (*Session, error), logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[*Session]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		newSession: newSession,
		logger:     logger,
	}
}

// HandleWebSocket upgrades the connection and runs a session on it until
// the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess, err := h.newSession()
	if err != nil {
		h.logger.Error("session failed to start", "error", err)
		conn.WriteJSON(Message{Type: MessageError, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	h.mu.Lock()
	h.sessions[sess] = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, sess)
		h.mu.Unlock()
	}()

	// Reads happen here; all writes happen on the session goroutine.
	go func() {
		defer cancel()
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type != MessageEvent {
				continue
			}
			if !sess.Deliver(ctx, msg) {
				return
			}
		}
	}()

	err = sess.Run(ctx, func(msg Message) error {
		return conn.WriteJSON(msg)
	})
	if err != nil && ctx.Err() == nil {
		h.logger.Debug("session ended", "session", sess.ID(), "error", err)
	}
}

// NotifyReload tells every connected browser to reload the page.
func (h *Hub) NotifyReload() {
	h.broadcast(Message{Type: MessageReload})
}

// NotifyError shows an error in every connected browser.
func (h *Hub) NotifyError(errMsg string) {
	h.broadcast(Message{Type: MessageError, Error: errMsg})
}

// broadcast hands msg to every session for delivery.
func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	h.mu.RUnlock()

	for _, sess := range sessions {
		sess.Notify(msg)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close stops every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sess := range h.sessions {
		sess.Close()
		delete(h.sessions, sess)
	}
}
