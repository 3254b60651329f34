package command

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/skylight-games/scenesync/internal/transport"
)

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		config Config
		expErr string
	}{
		"valid minimal": {
			config: Config{Transport: TransportConfig{Port: 26950}},
		},
		"missing transport port": {
			config: Config{},
			expErr: "transport port must be set",
		},
		"bad send interval": {
			config: Config{Transport: TransportConfig{Port: 26950, SendInterval: "banana"}},
			expErr: "parsing send_interval",
		},
		"timeout shorter than tick": {
			config: Config{Transport: TransportConfig{
				Port:          26950,
				SendInterval:  "100ms",
				ClientTimeout: "50ms",
			}},
			expErr: "client_timeout must be longer than send_interval",
		},
		"bad nats timeout": {
			config: Config{
				Transport: TransportConfig{Port: 26950},
				Nats:      NatsConfig{StartTimeout: "soon"},
			},
			expErr: "parsing start_timeout",
		},
		"status port clash": {
			config: Config{
				Transport: TransportConfig{Port: 26950},
				Status:    StatusConfig{Port: 26950},
			},
			expErr: "status port must differ",
		},
		"status disabled never clashes": {
			config: Config{Transport: TransportConfig{Port: 26950}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tc.expErr)
		})
	}
}

func TestTransportConfigDefaults(t *testing.T) {
	c := TransportConfig{Port: 26950}

	send, err := c.sendInterval()
	if err != nil {
		t.Fatalf("parsing send interval: %v", err)
	}
	testutil.AssertEqual(t, "send interval", send, transport.DefaultSendInterval)

	timeout, err := c.clientTimeout()
	if err != nil {
		t.Fatalf("parsing client timeout: %v", err)
	}
	testutil.AssertEqual(t, "client timeout", timeout, transport.DefaultClientTimeout)

	c.SendInterval = "25ms"
	send, err = c.sendInterval()
	if err != nil {
		t.Fatalf("parsing send interval: %v", err)
	}
	testutil.AssertEqual(t, "custom send interval", send, 25*time.Millisecond)
}
