// Package events publishes session lifecycle events on an embedded NATS
// bus so external tooling (dashboards, moderation bots) can observe the
// server without polling the status API.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event kinds.
const (
	KindConnect    = "connect"
	KindEnterScene = "enter-scene"
	KindLeaveScene = "leave-scene"
	KindDisconnect = "disconnect"
)

// Lifecycle is one session lifecycle event. Scene is empty for events
// that are not scene-related; Timeout is only meaningful for disconnects.
type Lifecycle struct {
	Id       string    `json:"id"`
	Kind     string    `json:"kind"`
	ConnId   uint16    `json:"conn_id"`
	Username string    `json:"username"`
	Scene    string    `json:"scene,omitempty"`
	Timeout  bool      `json:"timeout,omitempty"`
	Time     time.Time `json:"time"`
}

// Bus is the publish side of the message broker.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Publisher emits lifecycle events on per-kind subjects.
type Publisher struct {
	bus Bus
}

func NewPublisher(bus Bus) *Publisher {
	return &Publisher{bus: bus}
}

// PublishLifecycle assigns the event an id and timestamp and publishes
// it as JSON on "scenesync.lifecycle.<kind>".
func (p *Publisher) PublishLifecycle(ev Lifecycle) error {
	ev.Id = uuid.NewString()
	ev.Time = time.Now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling lifecycle event: %w", err)
	}

	return p.bus.Publish(fmt.Sprintf("scenesync.lifecycle.%s", ev.Kind), data)
}
