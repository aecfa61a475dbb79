package realtime

import (
	"sync"
)

// Conn abstracts a live client connection. The production implementation
// wraps a websocket connection; tests substitute an in-memory fake.
type Conn interface {
	// Send enqueues a frame for delivery. Returns false if the connection
	// cannot accept it (closed or backed up); the frame is dropped. Live
	// delivery is at-most-once, durability comes from the DB.
	Send(f Frame) bool
	// Close tears the connection down. Idempotent.
	Close()
}

// Hub maintains the process-local registry of online users.
//
// Policy: single active connection per user. Registering a new connection for
// a user evicts and closes the previous one, so a login from a second tab or
// device takes over the session.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Register binds conn to userID, evicting any previous connection.
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	prev := h.conns[userID]
	h.conns[userID] = conn
	h.mu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
	}
}

// Unregister removes the binding, but only if it still points at conn. A
// connection evicted by a newer Register must not tear down its successor's
// registration when its read loop exits.
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.conns[userID]; ok && current == conn {
		delete(h.conns, userID)
	}
}

// SendToUser pushes a frame to the user's live connection if present.
// Returns true only if the frame was accepted for delivery. A concurrent
// disconnect between lookup and send just means a failed push, which is fine:
// the payload is already durable.
func (h *Hub) SendToUser(userID string, f Frame) bool {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return conn.Send(f)
}

// IsOnline reports whether the user has a registered connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Online returns the number of registered connections.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
