package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dreyloch/ashfell/internal/game"
	"github.com/pixil98/go-testutil"
)

type fakeBus struct {
	published map[string][][]byte
	err       error
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: map[string][][]byte{}}
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	if b.err != nil {
		return b.err
	}
	b.published[subject] = append(b.published[subject], data)
	return nil
}

func TestEventPublisher(t *testing.T) {
	bus := newFakeBus()
	p := NewEventPublisher(bus)

	p.PublishEvent(game.EventChat, game.ChatEvent{
		PlayerId: "p1",
		Username: "alice",
		Text:     "hello",
	})

	testutil.AssertEqual(t, "published count", len(bus.published[SubjectEvents]), 1)

	var env struct {
		Kind string         `json:"kind"`
		Data game.ChatEvent `json:"data"`
	}
	if err := json.Unmarshal(bus.published[SubjectEvents][0], &env); err != nil {
		t.Fatalf("unmarshalling envelope: %v", err)
	}
	testutil.AssertEqual(t, "kind", env.Kind, game.EventChat)
	testutil.AssertEqual(t, "text", env.Data.Text, "hello")
}

func TestSnapshotPublisher(t *testing.T) {
	bus := newFakeBus()
	world := game.NewWorld(game.Options{
		Width:        100,
		Height:       100,
		ViewDistance: 15,
		MoveCap:      2,
		SpawnX:       50,
		SpawnY:       50,
	}, nil)

	if _, err := world.SpawnPlayer("s1", "alice"); err != nil {
		t.Fatalf("spawning player: %v", err)
	}

	p := NewSnapshotPublisher(bus, world, 3)

	// Only every third tick publishes.
	for i := 0; i < 3; i++ {
		if err := p.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	testutil.AssertEqual(t, "published count", len(bus.published[SubjectSnapshot]), 1)

	var snap struct {
		Stats   game.Stats `json:"stats"`
		Players []struct {
			Username string `json:"username"`
		} `json:"players"`
	}
	if err := json.Unmarshal(bus.published[SubjectSnapshot][0], &snap); err != nil {
		t.Fatalf("unmarshalling snapshot: %v", err)
	}
	testutil.AssertEqual(t, "player count", snap.Stats.Players, 1)
	testutil.AssertEqual(t, "player username", snap.Players[0].Username, "alice")
}

func TestSnapshotPublisher_BusErrorIsNotFatal(t *testing.T) {
	bus := newFakeBus()
	bus.err = context.DeadlineExceeded

	world := game.NewWorld(game.Options{Width: 10, Height: 10, ViewDistance: 5, MoveCap: 2}, nil)
	p := NewSnapshotPublisher(bus, world, 1)

	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("tick should swallow bus errors, got: %v", err)
	}
}
