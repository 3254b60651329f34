package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/skylight-games/scenesync/internal/events"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	return el.Err()
}

func (n *NatsConfig) buildNatsServer() (*events.NatsServer, error) {
	var opts []events.NatsServerOpt
	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, events.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, events.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, events.WithPort(n.Port))
	}

	s, err := events.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
