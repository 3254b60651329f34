package transport

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/settings"
)

// UpdateManager is the per-connection outbound buffer. Relay handlers
// add notices and set fields from any goroutine; between network ticks
// everything is coalesced into one ServerUpdate, which Flush turns into
// a single wire message.
//
// "Update" methods are setters: one entry per subject per tick, last
// write wins. "Add" methods append: every notice is delivered.
type UpdateManager struct {
	mu      sync.Mutex
	pending protocol.ServerUpdate
	dirty   bool
}

func NewUpdateManager() *UpdateManager {
	return &UpdateManager{}
}

// Flush marshals and clears the pending update. Returns false when
// nothing was added since the last flush.
func (u *UpdateManager) Flush() ([]byte, bool, error) {
	u.mu.Lock()
	if !u.dirty {
		u.mu.Unlock()
		return nil, false, nil
	}
	upd := u.pending
	u.pending = protocol.ServerUpdate{}
	u.dirty = false
	u.mu.Unlock()

	payload, err := json.Marshal(upd)
	if err != nil {
		return nil, false, fmt.Errorf("marshalling server update: %w", err)
	}
	msg, err := json.Marshal(protocol.Envelope{
		Type:    protocol.MsgServerUpdate,
		Payload: payload,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshalling envelope: %w", err)
	}
	return msg, true, nil
}

func (u *UpdateManager) UpdateGameSettings(s *settings.GameSettings) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.Settings = s
	u.dirty = true
}

func (u *UpdateManager) AddPlayerConnect(id uint16, username string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.PlayerConnects = append(u.pending.PlayerConnects, protocol.PlayerConnectNotice{
		Id:       id,
		Username: username,
	})
	u.dirty = true
}

func (u *UpdateManager) AddPlayerEnterScene(notice protocol.PlayerEnterSceneNotice) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.PlayerEnterScenes = append(u.pending.PlayerEnterScenes, notice)
	u.dirty = true
}

func (u *UpdateManager) AddAlreadyInScene(players []protocol.PlayerEnterSceneNotice, sceneEmpty bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.AlreadyInScene = &protocol.AlreadyInSceneNotice{
		Players:    players,
		SceneEmpty: sceneEmpty,
	}
	u.dirty = true
}

func (u *UpdateManager) AddPlayerLeaveScene(id uint16) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.PlayerLeaveScenes = append(u.pending.PlayerLeaveScenes, id)
	u.dirty = true
}

func (u *UpdateManager) AddPlayerDisconnect(id uint16, username string, timeout bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.PlayerDisconnects = append(u.pending.PlayerDisconnects, protocol.PlayerDisconnectNotice{
		Id:       id,
		Username: username,
		Timeout:  timeout,
	})
	u.dirty = true
}

func (u *UpdateManager) AddPlayerDeath(id uint16) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.PlayerDeaths = append(u.pending.PlayerDeaths, id)
	u.dirty = true
}

func (u *UpdateManager) AddPlayerTeamUpdate(id uint16, username string, team protocol.Team) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.TeamUpdates = append(u.pending.TeamUpdates, protocol.PlayerTeamNotice{
		Id:       id,
		Username: username,
		Team:     team,
	})
	u.dirty = true
}

func (u *UpdateManager) AddPlayerSkinUpdate(id uint16, skinId uint16) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.SkinUpdates = append(u.pending.SkinUpdates, protocol.PlayerSkinNotice{
		Id:     id,
		SkinId: skinId,
	})
	u.dirty = true
}

func (u *UpdateManager) UpdatePlayerPosition(id uint16, pos protocol.Vec2) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.Positions {
		if u.pending.Positions[i].Id == id {
			u.pending.Positions[i].Position = pos
			u.dirty = true
			return
		}
	}
	u.pending.Positions = append(u.pending.Positions, protocol.PlayerPositionUpdate{Id: id, Position: pos})
	u.dirty = true
}

func (u *UpdateManager) UpdatePlayerScale(id uint16, scale protocol.Vec2) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.Scales {
		if u.pending.Scales[i].Id == id {
			u.pending.Scales[i].Scale = scale
			u.dirty = true
			return
		}
	}
	u.pending.Scales = append(u.pending.Scales, protocol.PlayerScaleUpdate{Id: id, Scale: scale})
	u.dirty = true
}

func (u *UpdateManager) UpdatePlayerMapPosition(id uint16, pos protocol.Vec2) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.MapPositions {
		if u.pending.MapPositions[i].Id == id {
			u.pending.MapPositions[i].MapPosition = pos
			u.dirty = true
			return
		}
	}
	u.pending.MapPositions = append(u.pending.MapPositions, protocol.PlayerMapUpdate{Id: id, MapPosition: pos})
	u.dirty = true
}

// UpdatePlayerAnimation appends rather than overwrites: animation frames
// form a sequence the client replays in order.
func (u *UpdateManager) UpdatePlayerAnimation(id uint16, clipId uint16, frame uint8, effectInfo []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.Animations = append(u.pending.Animations, protocol.PlayerAnimationUpdate{
		Id:         id,
		ClipId:     clipId,
		Frame:      frame,
		EffectInfo: effectInfo,
	})
	u.dirty = true
}

func (u *UpdateManager) UpdateEntityPosition(entityType, entityId uint8, pos protocol.Vec2) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.EntityPositions {
		e := &u.pending.EntityPositions[i]
		if e.EntityType == entityType && e.EntityId == entityId {
			e.Position = pos
			u.dirty = true
			return
		}
	}
	u.pending.EntityPositions = append(u.pending.EntityPositions, protocol.EntityPositionUpdate{
		EntityType: entityType,
		EntityId:   entityId,
		Position:   pos,
	})
	u.dirty = true
}

func (u *UpdateManager) UpdateEntityState(entityType, entityId uint8, entityState uint8) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.EntityStates {
		e := &u.pending.EntityStates[i]
		if e.EntityType == entityType && e.EntityId == entityId {
			e.State = entityState
			u.dirty = true
			return
		}
	}
	u.pending.EntityStates = append(u.pending.EntityStates, protocol.EntityStateUpdate{
		EntityType: entityType,
		EntityId:   entityId,
		State:      entityState,
	})
	u.dirty = true
}

func (u *UpdateManager) UpdateEntityVariables(entityType, entityId uint8, variables []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.pending.EntityVariables {
		e := &u.pending.EntityVariables[i]
		if e.EntityType == entityType && e.EntityId == entityId {
			e.Variables = variables
			u.dirty = true
			return
		}
	}
	u.pending.EntityVariables = append(u.pending.EntityVariables, protocol.EntityVariableUpdate{
		EntityType: entityType,
		EntityId:   entityId,
		Variables:  variables,
	})
	u.dirty = true
}

func (u *UpdateManager) SetShutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.pending.Shutdown = true
	u.dirty = true
}
