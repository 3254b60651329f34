package protocol

import "encoding/json"

// Message tags for client-to-server traffic. Each tag has exactly one
// registered handler on the server side.
const (
	MsgHello            = "hello"
	MsgEnterScene       = "enter-scene"
	MsgLeaveScene       = "leave-scene"
	MsgPlayerUpdate     = "player-update"
	MsgEntityUpdate     = "entity-update"
	MsgPlayerDisconnect = "disconnect"
	MsgPlayerDeath      = "death"
	MsgTeamUpdate       = "team-update"
	MsgSkinUpdate       = "skin-update"
)

// MsgServerUpdate tags the coalesced server-to-client update envelope.
const MsgServerUpdate = "server-update"

// Envelope is the wire framing for a single message. The payload layout
// depends on the tag.
type Envelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

// HelloServer is the first message a client sends after connecting. It
// identifies the player and carries their initial presentation state.
type HelloServer struct {
	Username        string `json:"username"`
	SceneName       string `json:"scene_name"`
	Position        Vec2   `json:"position"`
	Scale           Vec2   `json:"scale"`
	AnimationClipId uint16 `json:"animation_clip_id"`
}

// PlayerEnterScene announces that the sending client entered a new scene.
type PlayerEnterScene struct {
	NewSceneName    string `json:"new_scene_name"`
	Position        Vec2   `json:"position"`
	Scale           Vec2   `json:"scale"`
	AnimationClipId uint16 `json:"animation_clip_id"`
}

// PlayerUpdate carries the changed fields of the sending player's state.
// Only fields whose flag is set in UpdateTypes are meaningful.
type PlayerUpdate struct {
	UpdateTypes     UpdateType       `json:"update_types"`
	Position        Vec2             `json:"position,omitempty"`
	Scale           Vec2             `json:"scale,omitempty"`
	MapPosition     Vec2             `json:"map_position,omitempty"`
	AnimationFrames []AnimationFrame `json:"animation_frames,omitempty"`
}

// EntityUpdate carries deltas for a non-player world entity. The server
// does not track entities; it only relays these to the sender's scene.
type EntityUpdate struct {
	UpdateTypes EntityUpdateType `json:"update_types"`
	EntityType  uint8            `json:"entity_type"`
	EntityId    uint8            `json:"entity_id"`
	Position    Vec2             `json:"position,omitempty"`
	State       uint8            `json:"state,omitempty"`
	Variables   []byte           `json:"variables,omitempty"`
}

// PlayerTeamUpdate announces the sending player's new team.
type PlayerTeamUpdate struct {
	Team Team `json:"team"`
}

// PlayerSkinUpdate announces the sending player's new cosmetic skin.
type PlayerSkinUpdate struct {
	SkinId uint16 `json:"skin_id"`
}
