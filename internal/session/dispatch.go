package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dreyloch/ashfell/internal/combat"
	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/protocol"
)

// stateMask says which session states may send an opcode.
type stateMask uint8

const (
	maskLobby stateMask = 1 << iota
	maskInGame
	maskCombat

	maskAny     = maskLobby | maskInGame | maskCombat
	maskPlaying = maskInGame | maskCombat
)

func (m stateMask) allows(s State) bool {
	switch s {
	case StateLobby:
		return m&maskLobby != 0
	case StateInGame:
		return m&maskInGame != 0
	case StateCombat:
		return m&maskCombat != 0
	}
	return false
}

type handlerFunc func(ctx context.Context, s *Session, payload []byte) bool

type packetHandler struct {
	states stateMask
	fn     handlerFunc
}

// dispatchTable is the closed opcode set. Adding a client opcode means a
// layout entry in protocol and a row here; there is no default branch.
func (m *Manager) dispatchTable() map[protocol.Opcode]packetHandler {
	return map[protocol.Opcode]packetHandler{
		protocol.OpLoginRequest: {states: maskLobby, fn: m.handleLogin},
		protocol.OpPlayerUpdate: {states: maskPlaying, fn: m.handleMove},
		protocol.OpChatMessage:  {states: maskPlaying, fn: m.handleChat},
		protocol.OpCombatAction: {states: maskPlaying, fn: m.handleCombat},
		protocol.OpSpellCast:    {states: maskPlaying, fn: m.handleSpell},
		protocol.OpLogout:       {states: maskAny, fn: m.handleLogout},
	}
}

// dispatch routes one packet. Returns true when the session should end.
// Invalid packets and wrong-state packets are dropped with a warning and no
// reply; the connection stays open.
func (m *Manager) dispatch(ctx context.Context, s *Session, pkt protocol.Packet) bool {
	h, ok := m.handlers[pkt.Op]
	if !ok {
		// Frame layer accepted it but no handler row exists; treat like an
		// unknown opcode minus the framing concern.
		slog.WarnContext(ctx, "no handler for opcode", "session", s.Id(), "opcode", pkt.Op.String())
		return false
	}

	if !h.states.allows(s.State()) {
		slog.WarnContext(ctx, "packet in wrong state",
			"session", s.Id(), "opcode", pkt.Op.String(), "state", s.State().String())
		return false
	}

	return h.fn(ctx, s, pkt.Payload)
}

func (m *Manager) handleLogin(ctx context.Context, s *Session, payload []byte) bool {
	var req protocol.LoginRequest
	if err := req.Decode(payload); err != nil {
		slog.WarnContext(ctx, "malformed login", "session", s.Id(), "error", err)
		return false
	}

	if req.Username == "" {
		_ = s.Send(protocol.LoginResponse{Success: false}.Encode())
		return false
	}

	p, err := m.world.SpawnPlayer(s.Id(), req.Username)
	if err != nil {
		slog.WarnContext(ctx, "spawning player", "session", s.Id(), "error", err)
		return false
	}
	s.setUsername(p.Username)

	resp := protocol.LoginResponse{
		Success: true,
		X:       int16(p.X),
		Y:       int16(p.Y),
		HP:      uint16(p.HP),
	}
	if err := s.Send(resp.Encode()); err != nil {
		slog.WarnContext(ctx, "login response send failed", "session", s.Id(), "error", err)
		return true
	}

	m.pub.PublishEvent(game.EventLogin, game.LoginEvent{
		PlayerId: p.Id,
		Username: p.Username,
		X:        p.X,
		Y:        p.Y,
	})
	slog.InfoContext(ctx, "player logged in", "session", s.Id(), "username", p.Username, "x", p.X, "y", p.Y)
	return false
}

func (m *Manager) handleMove(ctx context.Context, s *Session, payload []byte) bool {
	var req protocol.PlayerUpdate
	if err := req.Decode(payload); err != nil {
		slog.WarnContext(ctx, "malformed movement", "session", s.Id(), "error", err)
		return false
	}

	p, err := m.world.MovePlayer(s.Id(), int(req.X), int(req.Y))
	if err != nil {
		if errors.Is(err, game.ErrMoveTooFar) {
			// Anti-teleport bound. Drop, log, keep the connection; repeated
			// violations are a matter for operators, not this check.
			slog.WarnContext(ctx, "suspicious movement dropped",
				"session", s.Id(), "to_x", req.X, "to_y", req.Y)
		} else {
			slog.WarnContext(ctx, "movement rejected", "session", s.Id(), "error", err)
		}
		return false
	}

	// Moving breaks off combat.
	if s.State() == StateCombat {
		s.setState(StateInGame)
	}

	moved := protocol.PlayerMoved{Username: p.Username, X: int16(p.X), Y: int16(p.Y)}
	m.sendNear(p.X, p.Y, moved.Encode(), s.Id())
	return false
}

func (m *Manager) handleChat(ctx context.Context, s *Session, payload []byte) bool {
	var req protocol.ChatMessage
	if err := req.Decode(payload); err != nil {
		slog.WarnContext(ctx, "malformed chat", "session", s.Id(), "error", err)
		return false
	}

	p, ok := m.world.PlayerView(s.Id())
	if !ok {
		slog.WarnContext(ctx, "chat from unindexed player", "session", s.Id())
		return false
	}
	bcast := protocol.ChatBroadcast{
		Username: p.Username,
		X:        int16(p.X),
		Y:        int16(p.Y),
		Text:     req.Text,
	}
	// Sender hears themselves; everyone else within view distance does too.
	m.sendNear(p.X, p.Y, bcast.Encode(), "")

	m.pub.PublishEvent(game.EventChat, game.ChatEvent{
		PlayerId: p.Id,
		Username: p.Username,
		Text:     req.Text,
	})
	return false
}

func (m *Manager) handleCombat(ctx context.Context, s *Session, payload []byte) bool {
	var req protocol.CombatAction
	if err := req.Decode(payload); err != nil {
		slog.WarnContext(ctx, "malformed combat action", "session", s.Id(), "error", err)
		return false
	}

	m.resolveAttack(ctx, s, req.TargetId, combat.RollMelee())
	return false
}

func (m *Manager) handleSpell(ctx context.Context, s *Session, payload []byte) bool {
	var req protocol.SpellCast
	if err := req.Decode(payload); err != nil {
		slog.WarnContext(ctx, "malformed spell cast", "session", s.Id(), "error", err)
		return false
	}

	spell := m.spells.Lookup(req.SpellId)
	if spell == nil {
		slog.WarnContext(ctx, "unknown spell", "session", s.Id(), "spell", req.SpellId)
		return false
	}

	m.resolveAttack(ctx, s, req.TargetId, combat.RollSpell(spell))
	return false
}

// resolveAttack is the shared melee/spell path: apply damage, reply with the
// result, and on a kill publish the death event. Unavailable targets get
// silence per protocol convention.
func (m *Manager) resolveAttack(ctx context.Context, s *Session, targetId string, damage int) {
	res, err := m.world.ApplyAttack(s.Id(), targetId, damage)
	if err != nil {
		if errors.Is(err, game.ErrTargetUnavailable) {
			slog.DebugContext(ctx, "attack on unavailable target", "session", s.Id(), "target", targetId)
		} else {
			slog.WarnContext(ctx, "attack rejected", "session", s.Id(), "error", err)
		}
		return
	}

	s.setState(StateCombat)

	result := protocol.CombatResult{
		Damage:   uint16(res.Damage),
		TargetHP: uint16(res.TargetHP),
		XP:       uint32(res.XP),
	}
	if err := s.Send(result.Encode()); err != nil {
		slog.WarnContext(ctx, "combat result send failed", "session", s.Id(), "error", err)
		return
	}

	if res.Killed {
		s.setState(StateInGame)
		m.pub.PublishEvent(game.EventNpcDeath, game.NpcDeathEvent{
			NpcId:    targetId,
			Kind:     res.TargetKind,
			KilledBy: s.Id(),
			Drops:    len(res.Drops),
		})
	}
}

func (m *Manager) handleLogout(ctx context.Context, s *Session, _ []byte) bool {
	slog.InfoContext(ctx, "logout requested", "session", s.Id())
	return true
}
