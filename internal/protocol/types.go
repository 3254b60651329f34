package protocol

import "fmt"

// Vec2 is a 2D vector as used for positions and scales.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Team is a player's team affiliation. TeamNone is the valid default for
// players that have not picked a team.
type Team uint8

const (
	TeamNone Team = iota
	TeamMoss
	TeamHive
	TeamGrimm
	TeamLifeblood
)

func (t Team) String() string {
	switch t {
	case TeamNone:
		return "none"
	case TeamMoss:
		return "moss"
	case TeamHive:
		return "hive"
	case TeamGrimm:
		return "grimm"
	case TeamLifeblood:
		return "lifeblood"
	default:
		return fmt.Sprintf("team(%d)", uint8(t))
	}
}

// UpdateType is a flag set describing which player fields an inbound
// update carries. Fields without their flag set are untouched.
type UpdateType uint8

const (
	UpdatePosition UpdateType = 1 << iota
	UpdateScale
	UpdateMapPosition
	UpdateAnimation
)

// Has reports whether all flags in f are set.
func (u UpdateType) Has(f UpdateType) bool {
	return u&f == f
}

// EntityUpdateType is the flag set for entity deltas.
type EntityUpdateType uint8

const (
	EntityUpdatePosition EntityUpdateType = 1 << iota
	EntityUpdateState
	EntityUpdateVariables
)

// Has reports whether all flags in f are set.
func (u EntityUpdateType) Has(f EntityUpdateType) bool {
	return u&f == f
}

// AnimationFrame is a single animation sample in an update batch.
// EffectInfo is an opaque blob interpreted client-side.
type AnimationFrame struct {
	ClipId     uint16 `json:"clip_id"`
	Frame      uint8  `json:"frame,omitempty"`
	EffectInfo []byte `json:"effect_info,omitempty"`
}
