package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/skylight-games/scenesync/internal/driver"
	"github.com/skylight-games/scenesync/internal/events"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/relay"
	"github.com/skylight-games/scenesync/internal/state"
	"github.com/skylight-games/scenesync/internal/status"
)

// watchdogTick is how often silent clients are checked for timeout.
const watchdogTick = time.Second

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Event bus for external tooling
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Transport with the message dispatch registry
	dispatcher := protocol.NewDispatcher()
	ws, err := cfg.Transport.BuildServer(dispatcher)
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	// The relay core and its registry
	registry := state.NewRegistry()
	rly := relay.New(registry, ws, &cfg.Settings,
		relay.WithEventPublisher(events.NewPublisher(natsServer)),
	)
	if err := rly.RegisterHandlers(dispatcher); err != nil {
		return nil, fmt.Errorf("registering relay handlers: %w", err)
	}

	// Network tick: flush the coalesced per-connection updates
	sendInterval, err := cfg.Transport.sendInterval()
	if err != nil {
		return nil, fmt.Errorf("parsing send_interval: %w", err)
	}
	sendLoop := driver.NewDriver(
		[]driver.Manager{driver.ManagerFunc(ws.Flush)},
		driver.WithTickLength(sendInterval),
	)

	// Watchdog: reap silently-dead clients
	watchdog := driver.NewDriver(
		[]driver.Manager{driver.ManagerFunc(ws.Reap)},
		driver.WithTickLength(watchdogTick),
	)

	workers := service.WorkerList{
		"nats":      natsServer,
		"transport": ws,
		"send-loop": sendLoop,
		"watchdog":  watchdog,
	}

	if cfg.Status.Enabled() {
		workers["status"] = status.NewServer(cfg.Status.Port, rly)
	}

	return workers, nil
}
