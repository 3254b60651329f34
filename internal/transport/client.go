package transport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// client couples one websocket connection with its outbound queue and
// update manager.
type client struct {
	id   uint16
	conn *websocket.Conn
	um   *UpdateManager

	send chan []byte

	// lastSeen is the unix-nano timestamp of the last inbound message,
	// used by the timeout watchdog.
	lastSeen atomic.Int64

	mu     sync.Mutex
	closed bool
}

func newClient(id uint16, conn *websocket.Conn) *client {
	c := &client{
		id:   id,
		conn: conn,
		um:   NewUpdateManager(),
		send: make(chan []byte, 64),
	}
	c.touch()
	return c
}

func (c *client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *client) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastSeen.Load()))
}

// enqueue queues a message for the write pump without blocking. When the
// queue is full the message is dropped; state updates carry absolute
// values, so a dropped tick is recovered by the next one.
func (c *client) enqueue(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// close shuts the outbound queue and the underlying connection. Safe to
// call more than once.
func (c *client) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()

	_ = c.conn.Close()
}

// writePump drains the send queue onto the websocket. Runs on its own
// goroutine per connection; exits when the queue is closed or a write
// fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
