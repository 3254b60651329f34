package state

import "github.com/skylight-games/scenesync/internal/protocol"

// PlayerState holds the last-known presentation state for one connected
// player. It is a cache of what the client last reported, not simulation
// state; fields may be stale between updates by design.
//
// A PlayerState is only ever mutated by handlers for its own connection
// (the transport serializes messages per connection), so fields need no
// lock of their own. The registry lock covers insert/remove/snapshot.
type PlayerState struct {
	// Username is the display name, immutable after creation.
	Username string

	// CurrentScene is the scene the player is in. Empty string means
	// "not in any scene" (between scenes, or just joined).
	CurrentScene string

	LastPosition    protocol.Vec2
	LastScale       protocol.Vec2
	LastMapPosition protocol.Vec2

	// LastAnimationClip seeds peers that enter the player's scene late.
	LastAnimationClip uint16

	Team   protocol.Team
	SkinId uint16
}

// PlayerInfo is the read-only projection of a player exposed to the
// status API.
type PlayerInfo struct {
	Id       uint16 `json:"id"`
	Username string `json:"username"`
	Scene    string `json:"scene"`
	Team     string `json:"team"`
	SkinId   uint16 `json:"skin_id"`
}
