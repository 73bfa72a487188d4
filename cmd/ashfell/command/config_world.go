package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/dreyloch/ashfell/internal/game"
)

const (
	defaultWorldWidth   = 100
	defaultWorldHeight  = 100
	defaultViewDistance = 15
	defaultMoveCap      = 2
)

type WorldConfig struct {
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	ViewDistance float64 `json:"view_distance,omitempty"`
	MoveCap      float64 `json:"move_cap,omitempty"`
	SpawnX       int     `json:"spawn_x"`
	SpawnY       int     `json:"spawn_y"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 || c.Height < 0 {
		el.Add(fmt.Errorf("world dimensions must be non-negative"))
	}
	if c.ViewDistance < 0 {
		el.Add(fmt.Errorf("view_distance must be non-negative"))
	}
	if c.MoveCap < 0 {
		el.Add(fmt.Errorf("move_cap must be non-negative"))
	}

	w, h := c.Width, c.Height
	if w == 0 {
		w = defaultWorldWidth
	}
	if h == 0 {
		h = defaultWorldHeight
	}
	if c.SpawnX < 0 || c.SpawnX >= w || c.SpawnY < 0 || c.SpawnY >= h {
		el.Add(fmt.Errorf("spawn point (%d,%d) is outside the %dx%d grid", c.SpawnX, c.SpawnY, w, h))
	}

	return el.Err()
}

// buildOptions applies defaults for any unset dimensions.
func (c *WorldConfig) buildOptions() game.Options {
	opts := game.Options{
		Width:        c.Width,
		Height:       c.Height,
		ViewDistance: c.ViewDistance,
		MoveCap:      c.MoveCap,
		SpawnX:       c.SpawnX,
		SpawnY:       c.SpawnY,
	}
	if opts.Width == 0 {
		opts.Width = defaultWorldWidth
	}
	if opts.Height == 0 {
		opts.Height = defaultWorldHeight
	}
	if opts.ViewDistance == 0 {
		opts.ViewDistance = defaultViewDistance
	}
	if opts.MoveCap == 0 {
		opts.MoveCap = defaultMoveCap
	}
	return opts
}
