package admin

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/storage"
)

type fakeCounter int

func (c fakeCounter) Count() int { return int(c) }

type npcStore map[storage.Identifier]*game.NpcSpec

func (s npcStore) Get(id storage.Identifier) *game.NpcSpec      { return s[id] }
func (s npcStore) GetAll() map[storage.Identifier]*game.NpcSpec { return s }

func testWorld(t *testing.T) *game.World {
	t.Helper()

	spawns := npcStore{
		"rat": {Kind: "rat", KindCode: 1, X: 50, Y: 50, HP: 10, Level: 1},
	}
	world := game.NewWorld(game.Options{
		Width:        100,
		Height:       100,
		ViewDistance: 15,
		MoveCap:      2,
		SpawnX:       50,
		SpawnY:       50,
	}, spawns)

	if _, err := world.SpawnPlayer("s1", "alice"); err != nil {
		t.Fatalf("spawning player: %v", err)
	}
	return world
}

func TestConsole_Who(t *testing.T) {
	c := NewConsole(testWorld(t), fakeCounter(1))

	out, quit, err := c.Execute("who")
	if err != nil {
		t.Fatalf("executing who: %v", err)
	}
	testutil.AssertEqual(t, "quit", quit, false)
	if !strings.Contains(out, "1 player(s) online") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("missing player in %q", out)
	}
	// Fresh level-1 character: the full next-level requirement remains.
	if !strings.Contains(out, "50 xp to next") {
		t.Errorf("missing xp progress in %q", out)
	}
}

func TestConsole_Npcs(t *testing.T) {
	c := NewConsole(testWorld(t), fakeCounter(1))

	out, _, err := c.Execute("npcs")
	if err != nil {
		t.Fatalf("executing npcs: %v", err)
	}
	if !strings.Contains(out, "rat") || !strings.Contains(out, "10/10 hp") {
		t.Errorf("unexpected npcs output %q", out)
	}
}

func TestConsole_Stats(t *testing.T) {
	c := NewConsole(testWorld(t), fakeCounter(3))

	out, _, err := c.Execute("stats")
	if err != nil {
		t.Fatalf("executing stats: %v", err)
	}
	if !strings.Contains(out, "sessions:     3") {
		t.Errorf("missing session count in %q", out)
	}
	if !strings.Contains(out, "npcs alive:   1") {
		t.Errorf("missing npc count in %q", out)
	}
}

func TestConsole_Items_Empty(t *testing.T) {
	c := NewConsole(testWorld(t), nil)

	out, _, err := c.Execute("items")
	if err != nil {
		t.Fatalf("executing items: %v", err)
	}
	if !strings.Contains(out, "0 ground item(s)") {
		t.Errorf("unexpected items output %q", out)
	}
}

func TestConsole_UnknownCommand(t *testing.T) {
	c := NewConsole(testWorld(t), nil)

	_, _, err := c.Execute("reboot")
	testutil.AssertErrorContains(t, err, "unknown command")
}

func TestConsole_Quit(t *testing.T) {
	c := NewConsole(testWorld(t), nil)

	_, quit, err := c.Execute("quit")
	if err != nil {
		t.Fatalf("executing quit: %v", err)
	}
	testutil.AssertEqual(t, "quit", quit, true)
}

func TestConsole_RunLoop(t *testing.T) {
	c := NewConsole(testWorld(t), fakeCounter(1))

	rw := &scriptedConn{in: strings.NewReader("who\nquit\n")}
	if err := c.Run(t.Context(), rw); err != nil {
		t.Fatalf("running console: %v", err)
	}

	out := rw.out.String()
	if !strings.Contains(out, "alice") {
		t.Errorf("who output missing from session transcript %q", out)
	}
	if !strings.Contains(out, "bye") {
		t.Errorf("quit acknowledgement missing from %q", out)
	}
}

type scriptedConn struct {
	in  *strings.Reader
	out strings.Builder
}

func (c *scriptedConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *scriptedConn) Write(p []byte) (int, error) { return c.out.Write(p) }
