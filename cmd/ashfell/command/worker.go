package command

import (
	"fmt"

	"github.com/pixil98/go-service"

	"github.com/dreyloch/ashfell/internal/admin"
	"github.com/dreyloch/ashfell/internal/combat"
	"github.com/dreyloch/ashfell/internal/driver"
	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/listener"
	"github.com/dreyloch/ashfell/internal/messaging"
	"github.com/dreyloch/ashfell/internal/session"
)

const defaultSnapshotEvery = 5

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load world content
	stores, err := cfg.Storage.BuildStores()
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	spells, err := combat.NewSpellBook(stores.Spells)
	if err != nil {
		return nil, fmt.Errorf("building spell book: %w", err)
	}

	world := game.NewWorld(cfg.World.buildOptions(), stores.Npcs)

	// Observer bus
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	sessions := session.NewManager(world, spells, messaging.NewEventPublisher(nats))

	// Connection ingress: one game port plus any admin console listeners
	console := admin.NewConsole(world, sessions)
	cm := listener.NewConnectionManager(sessions, console)

	adminListeners := make(service.WorkerList, len(cfg.AdminListeners))
	for i, l := range cfg.AdminListeners {
		worker, err := l.buildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating admin listener %d: %w", i, err)
		}
		adminListeners[fmt.Sprintf("admin-listener-%d", i)] = worker
	}

	// Tick driver: world simulation first, then session broadcasts, then the
	// snapshot publisher so observers see the post-broadcast state.
	every := cfg.SnapshotEvery
	if every == 0 {
		every = defaultSnapshotEvery
	}
	managers := []driver.Manager{
		world,
		sessions,
		messaging.NewSnapshotPublisher(nats, world, every),
	}

	var driverOpts []driver.DriverOpt
	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	if tick > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(tick))
	}

	return service.WorkerList{
		"nats":            nats,
		"driver":          driver.NewDriver(managers, driverOpts...),
		"sessions":        sessions,
		"game-listener":   listener.NewTcpListener(cfg.GamePort, cm),
		"admin-listeners": &adminListeners,
	}, nil
}
