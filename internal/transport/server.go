// Package transport is the websocket connection service. It accepts
// client connections, decodes inbound envelopes into the dispatcher,
// and flushes each connection's coalesced update buffer on the network
// tick. Connection ids are assigned here and never reused while the
// connection is live.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/relay"
)

const (
	DefaultSendInterval  = 50 * time.Millisecond
	DefaultClientTimeout = 10 * time.Second

	maxMessageSize = 1 << 20 // 1MB
)

type Server struct {
	port       uint16
	dispatcher *protocol.Dispatcher
	timeout    time.Duration

	mu      sync.RWMutex
	clients map[uint16]*client
	nextId  uint16

	cbMu       sync.RWMutex
	onTimeout  []func(id uint16)
	onShutdown []func()

	started  atomic.Bool
	upgrader websocket.Upgrader
}

type ServerOpt func(*Server)

// WithClientTimeout sets how long a client may stay silent before the
// watchdog declares it dead.
func WithClientTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.timeout = d
	}
}

func NewServer(port uint16, dispatcher *protocol.Dispatcher, opts ...ServerOpt) *Server {
	s := &Server{
		port:       port,
		dispatcher: dispatcher,
		timeout:    DefaultClientTimeout,
		clients:    make(map[uint16]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Game clients are not browsers; origin checks don't apply.
				return true
			},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start serves websocket connections until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	s.started.Store(true)
	defer s.started.Store(false)

	log.GetLogger(ctx).Infof("accepting client connections on port %d", s.port)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", s.port, err)
	}

	return nil
}

// Stop queues a shutdown notice for every client, flushes it out, and
// tears all connections down. Registered shutdown callbacks run first so
// session state is cleared before the sockets go away.
func (s *Server) Stop() {
	s.cbMu.RLock()
	callbacks := s.onShutdown
	s.cbMu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}

	for _, c := range s.snapshot() {
		c.um.SetShutdown()
		s.flushClient(c)
	}

	for _, c := range s.snapshot() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		c.close()
	}
}

// IsStarted reports whether the server is accepting connections.
func (s *Server) IsStarted() bool {
	return s.started.Load()
}

// SinkFor returns the update sink for a connection, or nil when the
// connection is already gone.
func (s *Server) SinkFor(id uint16) relay.UpdateSink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil
	}
	return c.um
}

// ForEachSink calls fn for every live connection's sink.
func (s *Server) ForEachSink(fn func(id uint16, sink relay.UpdateSink)) {
	for _, c := range s.snapshot() {
		fn(c.id, c.um)
	}
}

// DisconnectClient tears down one connection. Called by the relay on a
// graceful disconnect; a torn-down id is free for reuse afterwards.
func (s *Server) DisconnectClient(id uint16) {
	s.dropClient(id)
}

// RegisterOnClientTimeout adds a callback fired when a client is
// declared dead by the watchdog or its socket breaks without a
// disconnect message.
func (s *Server) RegisterOnClientTimeout(fn func(id uint16)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.onTimeout = append(s.onTimeout, fn)
}

// RegisterOnShutdown adds a callback fired when the server stops.
func (s *Server) RegisterOnShutdown(fn func()) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.onShutdown = append(s.onShutdown, fn)
}

// Flush sends every connection's pending coalesced update. Driven by the
// send-loop ticker.
func (s *Server) Flush(_ context.Context) error {
	for _, c := range s.snapshot() {
		s.flushClient(c)
	}
	return nil
}

// Reap drops clients that have been silent longer than the timeout and
// fires the timeout callbacks for them. Driven by the watchdog ticker.
func (s *Server) Reap(_ context.Context) error {
	now := time.Now()
	for _, c := range s.snapshot() {
		if c.idleSince(now) <= s.timeout {
			continue
		}
		slog.Warn("client timed out", "connId", c.id, "idle", c.idleSince(now))
		if s.dropClient(c.id) {
			s.fireTimeout(c.id)
		}
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := s.addClient(conn)
	slog.Info("client connected", "connId", c.id, "remote", r.RemoteAddr)

	go c.writePump()
	s.readLoop(c)
}

// addClient registers a new connection under a fresh id.
func (s *Server) addClient(conn *websocket.Conn) *client {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Skip ids still in use; with up to 65k concurrent connections this
	// terminates.
	for {
		id := s.nextId
		s.nextId++
		if _, inUse := s.clients[id]; inUse {
			continue
		}
		c := newClient(id, conn)
		s.clients[id] = c
		return c
	}
}

// dropClient removes and closes a connection. Returns whether the id was
// still registered, so callers can tell a second teardown from a first.
func (s *Server) dropClient(id uint16) bool {
	s.mu.Lock()
	c, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	c.close()
	return true
}

func (s *Server) readLoop(c *client) {
	defer func() {
		// Socket ended without a graceful disconnect: surface it as a
		// timeout so the session state gets cleaned up. After a graceful
		// disconnect the client is already dropped and this is a no-op.
		if s.dropClient(c.id) {
			slog.Info("client connection lost", "connId", c.id)
			s.fireTimeout(c.id)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.touch()

		var env protocol.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			slog.Warn("malformed envelope", "connId", c.id, "error", err)
			continue
		}

		s.dispatcher.Dispatch(c.id, env)
	}
}

func (s *Server) flushClient(c *client) {
	msg, ok, err := c.um.Flush()
	if err != nil {
		slog.Warn("flushing client update", "connId", c.id, "error", err)
		return
	}
	if ok {
		c.enqueue(msg)
	}
}

func (s *Server) fireTimeout(id uint16) {
	s.cbMu.RLock()
	callbacks := s.onTimeout
	s.cbMu.RUnlock()

	for _, fn := range callbacks {
		fn(id)
	}
}

func (s *Server) snapshot() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}
