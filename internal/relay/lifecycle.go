package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/skylight-games/scenesync/internal/events"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/state"
)

func (r *Relay) handleHello(id uint16, payload []byte) {
	var msg protocol.HelloServer
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed hello payload", "connId", id, "error", err)
		return
	}
	r.OnHello(id, msg)
}

func (r *Relay) handleEnterScene(id uint16, payload []byte) {
	var msg protocol.PlayerEnterScene
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed enter-scene payload", "connId", id, "error", err)
		return
	}
	r.OnEnterScene(id, msg)
}

func (r *Relay) handleLeaveScene(id uint16, _ []byte) {
	r.OnLeaveScene(id)
}

func (r *Relay) handleDisconnect(id uint16, _ []byte) {
	r.OnDisconnect(id)
}

// OnHello registers a new player and runs their initial scene entry.
// A hello for an id that is already registered is ignored; the transport
// never reuses a live id, so a duplicate means a confused client.
func (r *Relay) OnHello(id uint16, hello protocol.HelloServer) {
	slog.Info("received hello", "connId", id, "username", hello.Username)

	// Send the new client the current game settings before any peer
	// data so it can configure itself first.
	if sink := r.transport.SinkFor(id); sink != nil {
		sink.UpdateGameSettings(r.Settings())
	}

	ps := &state.PlayerState{
		Username:          hello.Username,
		LastPosition:      hello.Position,
		LastScale:         hello.Scale,
		LastAnimationClip: hello.AnimationClipId,
	}
	if err := r.registry.Add(id, ps); err != nil {
		slog.Warn("duplicate hello", "connId", id, "username", hello.Username)
		return
	}

	// Tell every other client a new player exists so they can allocate
	// a local representation before scene-entry data arrives.
	for otherId := range r.registry.Snapshot() {
		if otherId == id {
			continue
		}
		if sink := r.transport.SinkFor(otherId); sink != nil {
			sink.AddPlayerConnect(id, hello.Username)
		}
	}

	r.publishLifecycle(events.Lifecycle{
		Kind:     events.KindConnect,
		ConnId:   id,
		Username: hello.Username,
		Scene:    hello.SceneName,
	})

	r.enterScene(id, ps, hello.SceneName, hello.Position, hello.Scale, hello.AnimationClipId)
}

// OnEnterScene moves a registered player into a new scene, notifies the
// scene's occupants, and sends the player the catch-up batch.
func (r *Relay) OnEnterScene(id uint16, msg protocol.PlayerEnterScene) {
	ps, ok := r.registry.Get(id)
	if !ok {
		slog.Warn("enter-scene from unregistered connection", "connId", id)
		return
	}

	if ps.CurrentScene != "" && ps.CurrentScene == msg.NewSceneName {
		// Respawn-in-place; peers already have this player.
		slog.Info("enter-scene for current scene", "connId", id, "scene", msg.NewSceneName)
		return
	}

	slog.Info("received enter-scene", "connId", id, "scene", msg.NewSceneName)

	r.enterScene(id, ps, msg.NewSceneName, msg.Position, msg.Scale, msg.AnimationClipId)

	r.publishLifecycle(events.Lifecycle{
		Kind:     events.KindEnterScene,
		ConnId:   id,
		Username: ps.Username,
		Scene:    msg.NewSceneName,
	})
}

// enterScene applies the scene transition for ps and fans out the
// notifications. The occupant scan and the catch-up batch use one
// registry snapshot so both see the same scene membership.
func (r *Relay) enterScene(id uint16, ps *state.PlayerState, newScene string, pos, scale protocol.Vec2, clipId uint16) {
	ps.CurrentScene = newScene
	ps.LastPosition = pos
	ps.LastScale = scale
	ps.LastAnimationClip = clipId

	notice := protocol.PlayerEnterSceneNotice{
		Id:              id,
		Username:        ps.Username,
		Position:        pos,
		Scale:           scale,
		Team:            ps.Team,
		SkinId:          ps.SkinId,
		AnimationClipId: clipId,
	}

	var occupants []protocol.PlayerEnterSceneNotice
	if newScene != "" {
		for otherId, other := range r.registry.Snapshot() {
			if otherId == id || other.CurrentScene != newScene {
				continue
			}

			if sink := r.transport.SinkFor(otherId); sink != nil {
				sink.AddPlayerEnterScene(notice)
			}

			occupants = append(occupants, protocol.PlayerEnterSceneNotice{
				Id:              otherId,
				Username:        other.Username,
				Position:        other.LastPosition,
				Scale:           other.LastScale,
				Team:            other.Team,
				SkinId:          other.SkinId,
				AnimationClipId: other.LastAnimationClip,
			})
		}
	}

	// The batch is sent even when empty; SceneEmpty tells the client it
	// is alone rather than still waiting.
	if sink := r.transport.SinkFor(id); sink != nil {
		sink.AddAlreadyInScene(occupants, len(occupants) == 0)
	}
}

// OnLeaveScene clears the player's current scene and notifies everyone
// that was in it. Leaving twice, or leaving without having entered, is
// not an error.
func (r *Relay) OnLeaveScene(id uint16) {
	ps, ok := r.registry.Get(id)
	if !ok {
		slog.Warn("leave-scene from unregistered connection", "connId", id)
		return
	}

	oldScene := ps.CurrentScene
	if oldScene == "" {
		slog.Info("leave-scene without a current scene", "connId", id)
		return
	}

	slog.Info("received leave-scene", "connId", id, "scene", oldScene)

	ps.CurrentScene = ""

	for otherId, other := range r.registry.Snapshot() {
		if otherId == id || other.CurrentScene != oldScene {
			continue
		}
		if sink := r.transport.SinkFor(otherId); sink != nil {
			sink.AddPlayerLeaveScene(id)
		}
	}

	r.publishLifecycle(events.Lifecycle{
		Kind:     events.KindLeaveScene,
		ConnId:   id,
		Username: ps.Username,
		Scene:    oldScene,
	})
}

// OnDisconnect handles a graceful disconnect message from a client.
func (r *Relay) OnDisconnect(id uint16) {
	if _, ok := r.registry.Get(id); !ok {
		slog.Warn("disconnect from unregistered connection", "connId", id)
		return
	}

	slog.Info("received disconnect", "connId", id)

	r.disconnectPlayer(id, false)
}

// OnClientTimeout handles a transport-detected silent client death. The
// transport already considers the connection dead, so no explicit
// teardown is issued.
func (r *Relay) OnClientTimeout(id uint16) {
	if _, ok := r.registry.Get(id); !ok {
		slog.Warn("timeout for unregistered connection", "connId", id)
		return
	}

	r.disconnectPlayer(id, true)
}

func (r *Relay) disconnectPlayer(id uint16, timeout bool) {
	if !timeout {
		// Graceful disconnects need an explicit transport teardown;
		// timeouts were detected by the transport itself.
		r.transport.DisconnectClient(id)
	}

	ps, ok := r.registry.Get(id)
	if !ok {
		return
	}
	username := ps.Username

	for otherId := range r.registry.Snapshot() {
		if otherId == id {
			continue
		}
		if sink := r.transport.SinkFor(otherId); sink != nil {
			sink.AddPlayerDisconnect(id, username, timeout)
		}
	}

	// Remove last, after all notices are queued, so their construction
	// could still read the departing player's data.
	r.registry.Remove(id)

	r.publishLifecycle(events.Lifecycle{
		Kind:     events.KindDisconnect,
		ConnId:   id,
		Username: username,
		Timeout:  timeout,
	})
}
