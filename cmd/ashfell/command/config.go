package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval   string           `json:"tick_interval"`
	GamePort       uint16           `json:"game_port"`
	AdminListeners []ListenerConfig `json:"admin_listeners,omitempty"`
	Storage        StorageConfig    `json:"storage"`
	Nats           NatsConfig       `json:"nats"`
	World          WorldConfig      `json:"world"`
	SnapshotEvery  int              `json:"snapshot_every,omitempty"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.validateTick())

	if c.GamePort == 0 {
		el.Add(fmt.Errorf("game_port must be set to a positive integer"))
	}

	for i, l := range c.AdminListeners {
		if err := l.validate(); err != nil {
			el.Add(fmt.Errorf("admin listener %d: %w", i, err))
		}
	}

	if c.SnapshotEvery < 0 {
		el.Add(fmt.Errorf("snapshot_every must be non-negative"))
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.World.validate())

	return el.Err()
}

func (c *Config) validateTick() error {
	if c.TickInterval == "" {
		return nil
	}

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return fmt.Errorf("parsing tick_interval: %w", err)
	}
	if d < 100*time.Millisecond {
		return fmt.Errorf("tick_interval must be at least 100ms")
	}
	return nil
}

func (c *Config) tickInterval() (time.Duration, error) {
	if c.TickInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TickInterval)
}
