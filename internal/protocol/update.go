package protocol

import "github.com/skylight-games/scenesync/internal/settings"

// PlayerConnectNotice tells a client that a new player joined the server.
type PlayerConnectNotice struct {
	Id       uint16 `json:"id"`
	Username string `json:"username"`
}

// PlayerEnterSceneNotice tells a client that a player is present in its
// scene, either because they just entered or as part of the catch-up
// batch sent to a newly entering player.
type PlayerEnterSceneNotice struct {
	Id              uint16 `json:"id"`
	Username        string `json:"username"`
	Position        Vec2   `json:"position"`
	Scale           Vec2   `json:"scale"`
	Team            Team   `json:"team"`
	SkinId          uint16 `json:"skin_id"`
	AnimationClipId uint16 `json:"animation_clip_id"`
}

// AlreadyInSceneNotice is the catch-up batch sent to a player right after
// they enter a scene. SceneEmpty distinguishes "no prior occupants" from
// "batch not yet received".
type AlreadyInSceneNotice struct {
	Players    []PlayerEnterSceneNotice `json:"players,omitempty"`
	SceneEmpty bool                     `json:"scene_empty"`
}

// PlayerDisconnectNotice tells a client that a player left the server.
// Timeout distinguishes a silent drop from a graceful exit.
type PlayerDisconnectNotice struct {
	Id       uint16 `json:"id"`
	Username string `json:"username"`
	Timeout  bool   `json:"timeout,omitempty"`
}

// PlayerTeamNotice tells a client about another player's team change.
type PlayerTeamNotice struct {
	Id       uint16 `json:"id"`
	Username string `json:"username"`
	Team     Team   `json:"team"`
}

// PlayerSkinNotice tells a client about another player's skin change.
type PlayerSkinNotice struct {
	Id     uint16 `json:"id"`
	SkinId uint16 `json:"skin_id"`
}

// PlayerPositionUpdate carries a scene peer's new position.
type PlayerPositionUpdate struct {
	Id       uint16 `json:"id"`
	Position Vec2   `json:"position"`
}

// PlayerScaleUpdate carries a scene peer's new scale.
type PlayerScaleUpdate struct {
	Id    uint16 `json:"id"`
	Scale Vec2   `json:"scale"`
}

// PlayerMapUpdate carries a player's new map marker location.
type PlayerMapUpdate struct {
	Id          uint16 `json:"id"`
	MapPosition Vec2   `json:"map_position"`
}

// PlayerAnimationUpdate carries one animation frame of a scene peer.
// Frames are relayed in the order the sender produced them.
type PlayerAnimationUpdate struct {
	Id         uint16 `json:"id"`
	ClipId     uint16 `json:"clip_id"`
	Frame      uint8  `json:"frame,omitempty"`
	EffectInfo []byte `json:"effect_info,omitempty"`
}

// EntityPositionUpdate carries a world entity's new position.
type EntityPositionUpdate struct {
	EntityType uint8 `json:"entity_type"`
	EntityId   uint8 `json:"entity_id"`
	Position   Vec2  `json:"position"`
}

// EntityStateUpdate carries a world entity's new state tag.
type EntityStateUpdate struct {
	EntityType uint8 `json:"entity_type"`
	EntityId   uint8 `json:"entity_id"`
	State      uint8 `json:"state"`
}

// EntityVariableUpdate carries a world entity's opaque variable blob.
type EntityVariableUpdate struct {
	EntityType uint8  `json:"entity_type"`
	EntityId   uint8  `json:"entity_id"`
	Variables  []byte `json:"variables,omitempty"`
}

// ServerUpdate is the coalesced per-connection outbound message. The
// update manager accumulates notices into one ServerUpdate between
// network ticks and sends it as a single envelope.
type ServerUpdate struct {
	Settings *settings.GameSettings `json:"settings,omitempty"`

	PlayerConnects    []PlayerConnectNotice    `json:"player_connects,omitempty"`
	PlayerEnterScenes []PlayerEnterSceneNotice `json:"player_enter_scenes,omitempty"`
	AlreadyInScene    *AlreadyInSceneNotice    `json:"already_in_scene,omitempty"`
	PlayerLeaveScenes []uint16                 `json:"player_leave_scenes,omitempty"`
	PlayerDisconnects []PlayerDisconnectNotice `json:"player_disconnects,omitempty"`
	PlayerDeaths      []uint16                 `json:"player_deaths,omitempty"`
	TeamUpdates       []PlayerTeamNotice       `json:"team_updates,omitempty"`
	SkinUpdates       []PlayerSkinNotice       `json:"skin_updates,omitempty"`

	Positions    []PlayerPositionUpdate  `json:"positions,omitempty"`
	Scales       []PlayerScaleUpdate     `json:"scales,omitempty"`
	MapPositions []PlayerMapUpdate       `json:"map_positions,omitempty"`
	Animations   []PlayerAnimationUpdate `json:"animations,omitempty"`

	EntityPositions []EntityPositionUpdate `json:"entity_positions,omitempty"`
	EntityStates    []EntityStateUpdate    `json:"entity_states,omitempty"`
	EntityVariables []EntityVariableUpdate `json:"entity_variables,omitempty"`

	Shutdown bool `json:"shutdown,omitempty"`
}
