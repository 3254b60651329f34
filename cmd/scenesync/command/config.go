package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/skylight-games/scenesync/internal/settings"
)

type Config struct {
	Transport TransportConfig       `json:"transport"`
	Nats      NatsConfig            `json:"nats"`
	Status    StatusConfig          `json:"status"`
	Settings  settings.GameSettings `json:"game_settings"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Transport.validate())
	el.Add(c.Nats.validate())

	if c.Status.Enabled() && c.Status.Port == c.Transport.Port {
		el.Add(fmt.Errorf("status port must differ from transport port"))
	}

	return el.Err()
}
