package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dreyloch/ashfell/internal/game"
)

// Subjects observers can subscribe to.
const (
	SubjectEvents   = "world.events"
	SubjectSnapshot = "world.snapshot"
)

// publisher is the narrow bus surface needed here; *NatsServer satisfies it.
type publisher interface {
	Publish(subject string, data []byte) error
}

// eventEnvelope wraps every event with its kind and wall-clock time.
type eventEnvelope struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// EventPublisher pushes game events onto the observer bus. Implements
// game.Publisher; failures are logged and swallowed, observers are strictly
// best-effort.
type EventPublisher struct {
	bus publisher
}

func NewEventPublisher(bus publisher) *EventPublisher {
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) PublishEvent(kind string, payload any) {
	data, err := json.Marshal(eventEnvelope{Kind: kind, At: time.Now(), Data: payload})
	if err != nil {
		slog.Warn("marshalling event", "kind", kind, "error", err)
		return
	}
	if err := p.bus.Publish(SubjectEvents, data); err != nil {
		slog.Warn("publishing event", "kind", kind, "error", err)
	}
}

// playerSummary is the per-player slice of a snapshot.
type playerSummary struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Level    int    `json:"level"`
}

type snapshot struct {
	At      time.Time       `json:"at"`
	Stats   game.Stats      `json:"stats"`
	Players []playerSummary `json:"players"`
}

// SnapshotPublisher is a driver manager that publishes a world snapshot
// every N ticks. It runs last in the manager list so observers see the
// post-broadcast state of the tick.
type SnapshotPublisher struct {
	bus   publisher
	world *game.World
	every int
	n     int
}

func NewSnapshotPublisher(bus publisher, world *game.World, every int) *SnapshotPublisher {
	if every < 1 {
		every = 1
	}
	return &SnapshotPublisher{bus: bus, world: world, every: every}
}

func (p *SnapshotPublisher) Tick(ctx context.Context) error {
	p.n++
	if p.n%p.every != 0 {
		return nil
	}

	snap := snapshot{
		At:    time.Now(),
		Stats: p.world.Stats(),
	}
	p.world.ForEachPlayer(func(pl game.PlayerView) {
		snap.Players = append(snap.Players, playerSummary{
			Id:       pl.Id,
			Username: pl.Username,
			X:        pl.X,
			Y:        pl.Y,
			Level:    pl.Level,
		})
	})

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := p.bus.Publish(SubjectSnapshot, data); err != nil {
		// Observer bus trouble is not world trouble.
		slog.WarnContext(ctx, "publishing snapshot", "error", err)
	}
	return nil
}
