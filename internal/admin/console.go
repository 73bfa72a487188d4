package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dreyloch/ashfell/internal/display"
	"github.com/dreyloch/ashfell/internal/game"
)

// SessionCounter is the slice of the session layer the console reads.
type SessionCounter interface {
	Count() int
}

// Console is a read-only operator console. It inspects the world but never
// mutates it, so it can run concurrently with the tick loop on the world's
// read lock.
type Console struct {
	world    *game.World
	sessions SessionCounter
	started  time.Time
}

func NewConsole(world *game.World, sessions SessionCounter) *Console {
	return &Console{
		world:    world,
		sessions: sessions,
		started:  time.Now(),
	}
}

const prompt = "> "

// Run drives one console connection until the client quits, disconnects, or
// the context is cancelled.
func (c *Console) Run(ctx context.Context, rw io.ReadWriter) error {
	c.write(rw, "ashfell admin console. Type 'help' for commands.\n")

	scanner := bufio.NewScanner(rw)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.write(rw, prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		out, quit, err := c.Execute(line)
		if err != nil {
			c.write(rw, fmt.Sprintf("error: %v\n", err))
			continue
		}
		if out != "" {
			c.write(rw, out)
		}
		if quit {
			return nil
		}
	}
}

func (c *Console) write(w io.Writer, s string) {
	if _, err := w.Write([]byte(display.Wrap(s))); err != nil {
		slog.Debug("writing to admin console", "error", err)
	}
}

// Execute runs a single console command and returns its rendered output.
// The second return is true when the client asked to quit.
func (c *Console) Execute(line string) (string, bool, error) {
	cmd, _, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch strings.ToLower(cmd) {
	case "who":
		return c.who()
	case "npcs":
		return c.npcs()
	case "items":
		return c.items()
	case "stats":
		return c.stats()
	case "help":
		return helpText, false, nil
	case "quit", "exit":
		return "bye\n", true, nil
	default:
		return "", false, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

const helpText = `Commands:
  who    list connected players
  npcs   list the NPC population and respawn timers
  items  list items on the ground
  stats  world counters and uptime
  quit   close the console
`

const whoTemplate = `{{ len .Players }} player(s) online:
{{- range .Players }}
  {{ printf "%-12s" .Username }} lvl {{ .Level }} ({{ .XPNext }} xp to next)  ({{ .X }},{{ .Y }})  {{ .HP }}/{{ .MaxHP }} hp
{{- end }}
`

func (c *Console) who() (string, bool, error) {
	type row struct {
		game.PlayerView
		XPNext int
	}

	var players []row
	c.world.ForEachPlayer(func(p game.PlayerView) {
		players = append(players, row{
			PlayerView: p,
			XPNext:     game.XPToNextLevel(p.Level, p.XP),
		})
	})
	sort.Slice(players, func(i, j int) bool { return players[i].Username < players[j].Username })

	out, err := expandTemplate(whoTemplate, struct{ Players []row }{players})
	return out, false, err
}

const npcsTemplate = `{{ len .Npcs }} npc(s):
{{- range .Npcs }}
  {{ printf "%-12s" .Kind }} ({{ .X }},{{ .Y }})  {{ if .Alive }}{{ .HP }}/{{ .MaxHP }} hp{{ else }}dead, respawns in {{ .Respawn }}{{ end }}
{{- end }}
`

func (c *Console) npcs() (string, bool, error) {
	type row struct {
		game.NpcView
		Respawn time.Duration
	}

	npcs := c.world.Npcs()
	sort.Slice(npcs, func(i, j int) bool { return npcs[i].Id < npcs[j].Id })

	rows := make([]row, 0, len(npcs))
	now := time.Now()
	for _, n := range npcs {
		r := row{NpcView: n}
		if !n.Alive {
			r.Respawn = n.RespawnAt.Sub(now).Round(time.Second)
			if r.Respawn < 0 {
				r.Respawn = 0
			}
		}
		rows = append(rows, r)
	}

	out, err := expandTemplate(npcsTemplate, struct{ Npcs []row }{rows})
	return out, false, err
}

const itemsTemplate = `{{ len .Items }} ground item(s):
{{- range .Items }}
  {{ printf "%-16s" .Item }} x{{ .Qty }} ({{ .X }},{{ .Y }}) dropped by {{ .DroppedBy | default "-" }}
{{- end }}
`

func (c *Console) items() (string, bool, error) {
	items := c.world.GroundItems()
	sort.Slice(items, func(i, j int) bool { return items[i].InstanceId < items[j].InstanceId })

	out, err := expandTemplate(itemsTemplate, struct{ Items []*game.GroundItem }{items})
	return out, false, err
}

const statsTemplate = `uptime:       {{ .Uptime }}
sessions:     {{ .Sessions }}
players:      {{ .Stats.Players }}
npcs alive:   {{ .Stats.NpcsAlive }}
npcs dead:    {{ .Stats.NpcsDead }}
ground items: {{ .Stats.GroundItems }}
`

func (c *Console) stats() (string, bool, error) {
	sessions := 0
	if c.sessions != nil {
		sessions = c.sessions.Count()
	}

	out, err := expandTemplate(statsTemplate, struct {
		Uptime   time.Duration
		Sessions int
		Stats    game.Stats
	}{
		Uptime:   time.Since(c.started).Round(time.Second),
		Sessions: sessions,
		Stats:    c.world.Stats(),
	})
	return out, false, err
}
