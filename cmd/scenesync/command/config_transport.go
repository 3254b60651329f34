package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/transport"
)

type TransportConfig struct {
	Port uint16 `json:"port"`

	// SendInterval is the network tick: how often each connection's
	// coalesced update is flushed. Defaults to 50ms.
	SendInterval string `json:"send_interval,omitempty"`

	// ClientTimeout is how long a client may stay silent before it is
	// considered dead. Defaults to 10s.
	ClientTimeout string `json:"client_timeout,omitempty"`
}

func (c *TransportConfig) validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("transport port must be set to a positive integer"))
	}

	send, err := c.sendInterval()
	if err != nil {
		el.Add(fmt.Errorf("parsing send_interval: %w", err))
	}

	timeout, err := c.clientTimeout()
	if err != nil {
		el.Add(fmt.Errorf("parsing client_timeout: %w", err))
	} else if send != 0 && timeout <= send {
		el.Add(fmt.Errorf("client_timeout must be longer than send_interval"))
	}

	return el.Err()
}

func (c *TransportConfig) sendInterval() (time.Duration, error) {
	if c.SendInterval == "" {
		return transport.DefaultSendInterval, nil
	}
	return time.ParseDuration(c.SendInterval)
}

func (c *TransportConfig) clientTimeout() (time.Duration, error) {
	if c.ClientTimeout == "" {
		return transport.DefaultClientTimeout, nil
	}
	return time.ParseDuration(c.ClientTimeout)
}

func (c *TransportConfig) BuildServer(d *protocol.Dispatcher) (*transport.Server, error) {
	timeout, err := c.clientTimeout()
	if err != nil {
		return nil, fmt.Errorf("parsing client_timeout: %w", err)
	}

	return transport.NewServer(c.Port, d, transport.WithClientTimeout(timeout)), nil
}
