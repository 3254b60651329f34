// Package settings holds the server-side game settings that are both
// consumed by the relay core and pushed to clients.
package settings

// GameSettings are the flags the server shares with every client. The
// relay core only reads the map icon flags; the rest is pass-through.
type GameSettings struct {
	// AlwaysShowMapIcons broadcasts every player's map marker to all
	// connected clients regardless of equipment.
	AlwaysShowMapIcons bool `json:"always_show_map_icons"`

	// OnlyBroadcastMapIconWithMarkerItem broadcasts map markers only for
	// players holding the marker item. Evaluated client-side; for the
	// relay it just enables the map position fan-out.
	OnlyBroadcastMapIconWithMarkerItem bool `json:"only_broadcast_map_icon_with_marker_item"`

	// TeamsEnabled allows clients to pick a team.
	TeamsEnabled bool `json:"teams_enabled"`

	// AllowSkins allows clients to apply cosmetic skins.
	AllowSkins bool `json:"allow_skins"`
}

// BroadcastMapIcons reports whether map marker updates should be relayed
// to other clients at all.
func (s *GameSettings) BroadcastMapIcons() bool {
	return s.AlwaysShowMapIcons || s.OnlyBroadcastMapIconWithMarkerItem
}

// Clone returns an independent copy.
func (s *GameSettings) Clone() *GameSettings {
	c := *s
	return &c
}
