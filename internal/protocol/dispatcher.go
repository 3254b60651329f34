package protocol

import (
	"fmt"
	"log/slog"
	"sync"
)

// HandlerFunc handles one decoded envelope from the given connection.
// The payload is the raw JSON for the message's tag.
type HandlerFunc func(connId uint16, payload []byte)

// Dispatcher routes inbound envelopes to the handler registered for
// their tag. The transport decodes the envelope framing; payload
// decoding is the handler's job.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a message tag. Each tag can have exactly
// one handler.
func (d *Dispatcher) Register(tag string, h HandlerFunc) error {
	if tag == "" {
		return fmt.Errorf("message tag cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[tag]; exists {
		return fmt.Errorf("handler for tag %q already registered", tag)
	}
	d.handlers[tag] = h
	return nil
}

// Dispatch invokes the handler for the envelope's tag. Envelopes with an
// unknown tag are logged and dropped; they must never take down the
// connection's read loop.
func (d *Dispatcher) Dispatch(connId uint16, env Envelope) {
	d.mu.RLock()
	h, ok := d.handlers[env.Type]
	d.mu.RUnlock()

	if !ok {
		slog.Warn("no handler for message", "tag", env.Type, "connId", connId)
		return
	}

	h(connId, env.Payload)
}
