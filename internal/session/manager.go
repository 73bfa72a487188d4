package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/dreyloch/ashfell/internal/combat"
	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/protocol"
)

// Manager owns the set of live sessions: it runs each connection's read
// loop, routes decoded packets to the dispatch table, and runs the per-tick
// broadcast pass. Session ids double as player ids in the world index.
type Manager struct {
	world  *game.World
	spells *combat.SpellBook
	pub    game.Publisher

	handlers map[protocol.Opcode]packetHandler

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(world *game.World, spells *combat.SpellBook, pub game.Publisher) *Manager {
	m := &Manager{
		world:    world,
		spells:   spells,
		pub:      pub,
		sessions: make(map[string]*Session),
	}
	m.handlers = m.dispatchTable()
	return m
}

// Start blocks until shutdown, then closes every live connection so their
// read loops unwind through the normal disconnect path.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()

	for _, s := range m.snapshot() {
		m.Disconnect(s.Id())
	}
	return nil
}

// RunSession drives one connection from accept to teardown. It never returns
// a protocol violation as an error: malformed packets are dropped with a
// warning and only transport failures or framing loss end the session.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriteCloser) error {
	uid := uuid.New()
	s := newSession(uid.String(), conn)

	m.mu.Lock()
	m.sessions[s.Id()] = s
	m.mu.Unlock()
	defer m.Disconnect(s.Id())

	go s.writeLoop()
	slog.InfoContext(ctx, "session connected", "session", s.Id())

	welcome := protocol.Welcome{Version: protocol.Version}
	copy(welcome.SessionId[:], uid[:])
	if err := s.Send(welcome.Encode()); err != nil {
		return err
	}

	fr := protocol.NewFrameReader(conn)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		pkt, err := fr.Next()
		switch {
		case err == nil:
		case errors.Is(err, protocol.ErrPayloadTooLarge):
			// Packet consumed whole; the stream is still framed.
			slog.WarnContext(ctx, "dropping oversize packet", "session", s.Id(), "error", err)
			continue
		case errors.Is(err, protocol.ErrUnknownOpcode):
			// Framing is lost; nothing after this byte can be trusted.
			slog.WarnContext(ctx, "unknown opcode, closing session", "session", s.Id(), "error", err)
			return nil
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
			// Peer hung up or we tore the session down ourselves.
			return nil
		default:
			return err
		}

		s.touch()
		if done := m.dispatch(ctx, s, pkt); done {
			return nil
		}
	}
}

// Disconnect tears a session down: player out of the world index, session
// out of the registry, connection closed. Idempotent; a disconnect after a
// failed handshake or a repeated disconnect is a no-op.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	s, exists := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !exists {
		return
	}

	username := s.Username()
	if err := m.world.RemovePlayer(id); err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		slog.Warn("removing player from world", "session", id, "error", err)
	}

	s.close()
	m.pub.PublishEvent(game.EventLogout, game.LogoutEvent{PlayerId: id, Username: username})
	slog.Info("session disconnected", "session", id)
}

// Session returns the live session for id, nil if gone.
func (m *Manager) Session(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Tick is the broadcast pass: each in-game session gets the NPCs within its
// player's view distance. It runs after the world's wander/respawn passes in
// the driver's manager list, so a respawn is visible the same tick. A failed
// send tears down that one session and never aborts the pass.
func (m *Manager) Tick(ctx context.Context) error {
	var dead []string

	for _, s := range m.snapshot() {
		if !s.InGame() {
			continue
		}
		p, ok := m.world.PlayerView(s.Id())
		if !ok {
			continue
		}

		npcs := m.world.NpcsNear(p.X, p.Y)
		update := protocol.NpcUpdate{Npcs: make([]protocol.NpcInfo, 0, len(npcs))}
		for _, n := range npcs {
			update.Npcs = append(update.Npcs, protocol.NpcInfo{
				Id:    n.Id,
				Kind:  n.KindCode,
				X:     int16(n.X),
				Y:     int16(n.Y),
				HP:    uint16(n.HP),
				Level: uint8(n.Level),
			})
		}

		if err := s.Send(update.Encode()); err != nil {
			slog.WarnContext(ctx, "npc update send failed", "session", s.Id(), "error", err)
			dead = append(dead, s.Id())
		}
	}

	for _, id := range dead {
		m.Disconnect(id)
	}
	return nil
}

// sendNear delivers a packet to every session whose player is within view
// distance of (x, y), best-effort. Sessions in excludeId are skipped.
func (m *Manager) sendNear(x, y int, pkt []byte, excludeId string) {
	for _, p := range m.world.PlayersNear(x, y) {
		if p.Id == excludeId {
			continue
		}
		s := m.Session(p.Id)
		if s == nil {
			continue
		}
		if err := s.Send(pkt); err != nil {
			slog.Warn("proximity send failed", "session", p.Id, "error", err)
		}
	}
}
