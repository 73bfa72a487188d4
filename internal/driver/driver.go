package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = 600 * time.Millisecond
)

// Manager is anything advanced by the world tick. Managers run in list
// order each tick, which is how the wander/respawn passes are guaranteed to
// precede the broadcast pass.
type Manager interface {
	Tick(context.Context) error
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start runs the tick loop until the context is canceled. A failing manager
// is logged and the loop keeps going: one bad tick must never stall the
// world for everyone.
func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				slog.WarnContext(ctx, "tick error", "error", err)
			}
		}
	}
}

// Tick advances every manager once, in order. Errors are collected rather
// than short-circuiting so a failure in one manager cannot starve the ones
// after it.
func (d *Driver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()
	for _, m := range d.managers {
		el.Add(m.Tick(ctx))
	}
	return el.Err()
}
