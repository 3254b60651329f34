// Package state is the single source of truth for who is connected and
// where. All access goes through the Registry to ensure thread-safety.
package state

import (
	"errors"
	"sync"
)

var (
	ErrPlayerExists   = errors.New("player already registered")
	ErrPlayerNotFound = errors.New("player not found")
)

// Registry maps connection ids to player state. It owns the lifetime of
// PlayerState objects: they are created on hello and destroyed on
// disconnect or timeout. Broadcast loops must iterate Snapshot(), never
// the live map, so concurrent inserts and removes cannot corrupt a scan.
type Registry struct {
	mu      sync.RWMutex
	players map[uint16]*PlayerState
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[uint16]*PlayerState),
	}
}

// Get returns the state for a connection id. A missing id is not an
// error at this layer; callers decide how to handle it.
func (r *Registry) Get(id uint16) (*PlayerState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ps, ok := r.players[id]
	return ps, ok
}

// Add registers a new player. Returns ErrPlayerExists if the id is
// already registered.
func (r *Registry) Add(id uint16, ps *PlayerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[id]; exists {
		return ErrPlayerExists
	}
	r.players[id] = ps
	return nil
}

// Remove deletes a player from the registry. Removing an unknown id is
// a no-op, which makes the disconnect path idempotent.
func (r *Registry) Remove(id uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.players, id)
}

// Snapshot returns an independent copy of the id-to-state mapping. The
// returned map is safe to iterate while other goroutines mutate the
// registry; the *PlayerState values are shared, per the per-connection
// write discipline.
func (r *Registry) Snapshot() map[uint16]*PlayerState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uint16]*PlayerState, len(r.players))
	for id, ps := range r.players {
		snap[id] = ps
	}
	return snap
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.players)
}

// Clear removes all players. Called when the server shuts down.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = make(map[uint16]*PlayerState)
}

// Usernames returns the display names of all registered players.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.players))
	for _, ps := range r.players {
		names = append(names, ps.Username)
	}
	return names
}

// Infos returns the status projection of every registered player.
func (r *Registry) Infos() []PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]PlayerInfo, 0, len(r.players))
	for id, ps := range r.players {
		infos = append(infos, PlayerInfo{
			Id:       id,
			Username: ps.Username,
			Scene:    ps.CurrentScene,
			Team:     ps.Team.String(),
			SkinId:   ps.SkinId,
		})
	}
	return infos
}
