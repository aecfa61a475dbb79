package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 32
)

// Client wraps a websocket connection with a buffered outbound queue and a
// single writer goroutine, since gorilla connections allow only one
// concurrent writer.
type Client struct {
	UserID string

	ws        *websocket.Conn
	send      chan Frame
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps ws and starts the write pump. The caller owns the read
// loop.
func NewClient(userID string, ws *websocket.Conn) *Client {
	c := &Client{
		UserID: userID,
		ws:     ws,
		send:   make(chan Frame, sendBuffer),
		done:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send enqueues a frame. Returns false when the client is gone or its queue
// is full; the frame is dropped rather than blocking the caller.
func (c *Client) Send(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

// Close shuts the connection down. Safe to call from any goroutine, multiple
// times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// ReadFrame blocks for the next inbound frame. Returns an error once the
// connection is closed; the caller unregisters and exits its loop.
func (c *Client) ReadFrame() (Frame, error) {
	var f Frame
	if err := c.ws.ReadJSON(&f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// SetupReadLimits configures read deadline handling. Pong receipts extend the
// deadline; a silent peer gets disconnected after pongWait. onAlive, if set,
// fires on every pong so callers can refresh external presence state.
func (c *Client) SetupReadLimits(onAlive func()) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		if onAlive != nil {
			onAlive()
		}
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// writePump serializes all writes: queued frames plus protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case f := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
