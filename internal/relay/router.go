package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/skylight-games/scenesync/internal/protocol"
)

func (r *Relay) handlePlayerUpdate(id uint16, payload []byte) {
	var msg protocol.PlayerUpdate
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed player-update payload", "connId", id, "error", err)
		return
	}
	r.OnPlayerUpdate(id, msg)
}

func (r *Relay) handleDeath(id uint16, _ []byte) {
	r.OnPlayerDeath(id)
}

func (r *Relay) handleTeamUpdate(id uint16, payload []byte) {
	var msg protocol.PlayerTeamUpdate
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed team-update payload", "connId", id, "error", err)
		return
	}
	r.OnTeamUpdate(id, msg)
}

func (r *Relay) handleSkinUpdate(id uint16, payload []byte) {
	var msg protocol.PlayerSkinUpdate
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed skin-update payload", "connId", id, "error", err)
		return
	}
	r.OnSkinUpdate(id, msg)
}

// broadcastInScene invokes action for every other registered connection
// in the source's current scene. The whole scan runs against one
// registry snapshot, so scene membership stays consistent even when a
// disconnect lands mid-broadcast. An unknown source is a no-op: the
// update raced a disconnect and is simply stale.
func (r *Relay) broadcastInScene(sourceId uint16, action func(otherId uint16, sink UpdateSink)) {
	snap := r.registry.Snapshot()

	source, ok := snap[sourceId]
	if !ok {
		slog.Warn("scene broadcast from unregistered connection", "connId", sourceId)
		return
	}
	if source.CurrentScene == "" {
		// Not in a scene; nobody to relay to.
		return
	}

	for otherId, other := range snap {
		if otherId == sourceId || other.CurrentScene != source.CurrentScene {
			continue
		}
		if sink := r.transport.SinkFor(otherId); sink != nil {
			action(otherId, sink)
		}
	}
}

// OnPlayerUpdate applies the flagged fields of a player update to the
// registry and relays each present field to the player's scene peers.
// One relay call per field keeps the peer-side payloads simple.
func (r *Relay) OnPlayerUpdate(id uint16, upd protocol.PlayerUpdate) {
	ps, ok := r.registry.Get(id)
	if !ok {
		slog.Warn("player-update from unregistered connection", "connId", id)
		return
	}

	if upd.UpdateTypes.Has(protocol.UpdatePosition) {
		ps.LastPosition = upd.Position

		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			sink.UpdatePlayerPosition(id, upd.Position)
		})
	}

	if upd.UpdateTypes.Has(protocol.UpdateScale) {
		ps.LastScale = upd.Scale

		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			sink.UpdatePlayerScale(id, upd.Scale)
		})
	}

	if upd.UpdateTypes.Has(protocol.UpdateMapPosition) {
		// Stored regardless of the broadcast flags so late joiners can
		// still be seeded; relayed only when map icons are enabled.
		ps.LastMapPosition = upd.MapPosition

		if r.Settings().BroadcastMapIcons() {
			// Map markers are visible across scenes, so this fan-out is
			// not scene-scoped.
			for otherId := range r.registry.Snapshot() {
				if otherId == id {
					continue
				}
				if sink := r.transport.SinkFor(otherId); sink != nil {
					sink.UpdatePlayerMapPosition(id, upd.MapPosition)
				}
			}
		}
	}

	if upd.UpdateTypes.Has(protocol.UpdateAnimation) && len(upd.AnimationFrames) != 0 {
		frames := upd.AnimationFrames

		// The stored clip snaps to the batch's last frame, but peers get
		// every frame in order so intermediate states are not skipped.
		ps.LastAnimationClip = frames[len(frames)-1].ClipId

		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			for _, f := range frames {
				sink.UpdatePlayerAnimation(id, f.ClipId, f.Frame, f.EffectInfo)
			}
		})
	}
}

// OnPlayerDeath relays a death notice to the player's scene peers.
func (r *Relay) OnPlayerDeath(id uint16) {
	if _, ok := r.registry.Get(id); !ok {
		slog.Warn("death from unregistered connection", "connId", id)
		return
	}

	slog.Info("received death", "connId", id)

	r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
		sink.AddPlayerDeath(id)
	})
}

// OnTeamUpdate stores the new team and broadcasts it to every other
// registered connection. Team is a cross-scene visible attribute, so
// this is deliberately not scene-scoped and has no same-value early-out.
func (r *Relay) OnTeamUpdate(id uint16, upd protocol.PlayerTeamUpdate) {
	ps, ok := r.registry.Get(id)
	if !ok {
		slog.Warn("team-update from unregistered connection", "connId", id)
		return
	}

	slog.Info("received team-update", "connId", id, "team", upd.Team)

	ps.Team = upd.Team

	for otherId := range r.registry.Snapshot() {
		if otherId == id {
			continue
		}
		if sink := r.transport.SinkFor(otherId); sink != nil {
			sink.AddPlayerTeamUpdate(id, ps.Username, upd.Team)
		}
	}
}

// OnSkinUpdate stores the new skin and relays it to scene peers. An
// update carrying the currently stored skin never broadcasts.
func (r *Relay) OnSkinUpdate(id uint16, upd protocol.PlayerSkinUpdate) {
	ps, ok := r.registry.Get(id)
	if !ok {
		slog.Warn("skin-update from unregistered connection", "connId", id)
		return
	}

	if ps.SkinId == upd.SkinId {
		slog.Info("skin-update with unchanged skin", "connId", id, "skinId", upd.SkinId)
		return
	}

	slog.Info("received skin-update", "connId", id, "skinId", upd.SkinId)

	ps.SkinId = upd.SkinId

	r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
		sink.AddPlayerSkinUpdate(id, upd.SkinId)
	})
}
