package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/skylight-games/scenesync/internal/protocol"
)

func (r *Relay) handleEntityUpdate(id uint16, payload []byte) {
	var msg protocol.EntityUpdate
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("malformed entity-update payload", "connId", id, "error", err)
		return
	}
	r.OnEntityUpdate(id, msg)
}

// OnEntityUpdate relays world-entity deltas to the sender's scene peers.
// The server keeps no entity state; payloads are opaque and pass through
// keyed by (entityType, entityId). Only the sender's registration is
// checked; updates from unknown senders are dropped, never retried.
func (r *Relay) OnEntityUpdate(id uint16, upd protocol.EntityUpdate) {
	if _, ok := r.registry.Get(id); !ok {
		slog.Warn("entity-update from unregistered connection", "connId", id)
		return
	}

	if upd.UpdateTypes.Has(protocol.EntityUpdatePosition) {
		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			sink.UpdateEntityPosition(upd.EntityType, upd.EntityId, upd.Position)
		})
	}

	if upd.UpdateTypes.Has(protocol.EntityUpdateState) {
		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			sink.UpdateEntityState(upd.EntityType, upd.EntityId, upd.State)
		})
	}

	if upd.UpdateTypes.Has(protocol.EntityUpdateVariables) {
		r.broadcastInScene(id, func(_ uint16, sink UpdateSink) {
			sink.UpdateEntityVariables(upd.EntityType, upd.EntityId, upd.Variables)
		})
	}
}
