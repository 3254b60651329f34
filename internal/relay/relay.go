// Package relay implements the player-state registry handlers and the
// scene-scoped update routing between connected clients. It decides, for
// every inbound state change, which peers must be notified and what
// delta they receive. It never touches sockets; all outbound traffic
// goes through per-connection update sinks owned by the transport.
package relay

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/skylight-games/scenesync/internal/events"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/settings"
	"github.com/skylight-games/scenesync/internal/state"
)

// UpdateSink is the per-connection outbound buffer the relay writes
// into. The transport coalesces everything added between network ticks
// into a single message. Implementations must be safe for concurrent
// use.
type UpdateSink interface {
	UpdateGameSettings(s *settings.GameSettings)

	AddPlayerConnect(id uint16, username string)
	AddPlayerEnterScene(notice protocol.PlayerEnterSceneNotice)
	AddAlreadyInScene(players []protocol.PlayerEnterSceneNotice, sceneEmpty bool)
	AddPlayerLeaveScene(id uint16)
	AddPlayerDisconnect(id uint16, username string, timeout bool)
	AddPlayerDeath(id uint16)
	AddPlayerTeamUpdate(id uint16, username string, team protocol.Team)
	AddPlayerSkinUpdate(id uint16, skinId uint16)

	UpdatePlayerPosition(id uint16, pos protocol.Vec2)
	UpdatePlayerScale(id uint16, scale protocol.Vec2)
	UpdatePlayerMapPosition(id uint16, pos protocol.Vec2)
	UpdatePlayerAnimation(id uint16, clipId uint16, frame uint8, effectInfo []byte)

	UpdateEntityPosition(entityType, entityId uint8, pos protocol.Vec2)
	UpdateEntityState(entityType, entityId uint8, entityState uint8)
	UpdateEntityVariables(entityType, entityId uint8, variables []byte)

	SetShutdown()
}

// Transport is the connection service the relay consumes. SinkFor
// returns nil when the connection is already gone; every caller must
// treat that as a silent no-op.
type Transport interface {
	IsStarted() bool
	SinkFor(id uint16) UpdateSink
	ForEachSink(fn func(id uint16, sink UpdateSink))
	DisconnectClient(id uint16)
	RegisterOnClientTimeout(fn func(id uint16))
	RegisterOnShutdown(fn func())
}

// EventPublisher receives session lifecycle events. Optional; a nil
// publisher disables event emission.
type EventPublisher interface {
	PublishLifecycle(ev events.Lifecycle) error
}

// Relay wires the registry, the transport, and the game settings
// together. One Relay serves all connections.
type Relay struct {
	registry  *state.Registry
	transport Transport
	events    EventPublisher

	mu       sync.RWMutex
	settings *settings.GameSettings
}

type Opt func(*Relay)

// WithEventPublisher enables lifecycle event emission.
func WithEventPublisher(p EventPublisher) Opt {
	return func(r *Relay) {
		r.events = p
	}
}

func New(registry *state.Registry, transport Transport, gs *settings.GameSettings, opts ...Opt) *Relay {
	r := &Relay{
		registry:  registry,
		transport: transport,
		settings:  gs.Clone(),
	}

	for _, opt := range opts {
		opt(r)
	}

	transport.RegisterOnClientTimeout(r.OnClientTimeout)
	transport.RegisterOnShutdown(r.onShutdown)

	return r
}

// RegisterHandlers binds the relay's handlers to their message tags.
func (r *Relay) RegisterHandlers(d *protocol.Dispatcher) error {
	handlers := map[string]protocol.HandlerFunc{
		protocol.MsgHello:            r.handleHello,
		protocol.MsgEnterScene:       r.handleEnterScene,
		protocol.MsgLeaveScene:       r.handleLeaveScene,
		protocol.MsgPlayerUpdate:     r.handlePlayerUpdate,
		protocol.MsgEntityUpdate:     r.handleEntityUpdate,
		protocol.MsgPlayerDisconnect: r.handleDisconnect,
		protocol.MsgPlayerDeath:      r.handleDeath,
		protocol.MsgTeamUpdate:       r.handleTeamUpdate,
		protocol.MsgSkinUpdate:       r.handleSkinUpdate,
	}

	for tag, h := range handlers {
		if err := d.Register(tag, h); err != nil {
			return fmt.Errorf("registering %q handler: %w", tag, err)
		}
	}
	return nil
}

// Players returns the status projection of all connected players.
func (r *Relay) Players() []state.PlayerInfo {
	return r.registry.Infos()
}

// Settings returns a copy of the current game settings.
func (r *Relay) Settings() *settings.GameSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.settings.Clone()
}

// UpdateSettings swaps the game settings and pushes the new values to
// every connected client.
func (r *Relay) UpdateSettings(gs *settings.GameSettings) {
	r.mu.Lock()
	r.settings = gs.Clone()
	r.mu.Unlock()

	r.BroadcastSettings()
}

// BroadcastSettings sends the current game settings to all clients.
func (r *Relay) BroadcastSettings() {
	if !r.transport.IsStarted() {
		return
	}

	gs := r.Settings()
	r.transport.ForEachSink(func(_ uint16, sink UpdateSink) {
		sink.UpdateGameSettings(gs)
	})
}

// onShutdown clears all session state when the transport shuts down.
func (r *Relay) onShutdown() {
	r.registry.Clear()
}

func (r *Relay) publishLifecycle(ev events.Lifecycle) {
	if r.events == nil {
		return
	}
	if err := r.events.PublishLifecycle(ev); err != nil {
		slog.Warn("publishing lifecycle event", "kind", ev.Kind, "connId", ev.ConnId, "error", err)
	}
}
