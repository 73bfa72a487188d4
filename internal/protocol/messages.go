package protocol

import "fmt"

// Typed packet bodies. Encode returns the full wire form including the
// opcode; Decode parses a payload as framed by FrameReader.

// Welcome is sent once on connect, before login.
type Welcome struct {
	Version   uint8
	SessionId [16]byte
}

func (p Welcome) Encode() []byte {
	return NewWriter(OpWelcome).
		Uint8(p.Version).
		Bytes(p.SessionId[:]).
		Packet()
}

type LoginRequest struct {
	Username string
	Password string
}

func (p LoginRequest) Encode() []byte {
	return NewWriter(OpLoginRequest).
		StringFixed(p.Username, UsernameLen).
		StringFixed(p.Password, UsernameLen).
		Packet()
}

func (p *LoginRequest) Decode(payload []byte) error {
	r := NewReader(payload)
	p.Username = r.StringFixed(UsernameLen)
	p.Password = r.StringFixed(UsernameLen)
	return checkDecode(OpLoginRequest, r)
}

type LoginResponse struct {
	Success bool
	X, Y    int16
	HP      uint16
}

func (p LoginResponse) Encode() []byte {
	success := uint8(0)
	if p.Success {
		success = 1
	}
	return NewWriter(OpLoginResponse).
		Uint8(success).
		Int16(p.X).
		Int16(p.Y).
		Uint16(p.HP).
		Packet()
}

func (p *LoginResponse) Decode(payload []byte) error {
	r := NewReader(payload)
	p.Success = r.Uint8() == 1
	p.X = r.Int16()
	p.Y = r.Int16()
	p.HP = r.Uint16()
	return checkDecode(OpLoginResponse, r)
}

// PlayerUpdate is a client's requested position.
type PlayerUpdate struct {
	X, Y int16
}

func (p PlayerUpdate) Encode() []byte {
	return NewWriter(OpPlayerUpdate).
		Int16(p.X).
		Int16(p.Y).
		Packet()
}

func (p *PlayerUpdate) Decode(payload []byte) error {
	r := NewReader(payload)
	p.X = r.Int16()
	p.Y = r.Int16()
	return checkDecode(OpPlayerUpdate, r)
}

// PlayerMoved tells a client that a nearby player changed position.
type PlayerMoved struct {
	Username string
	X, Y     int16
}

func (p PlayerMoved) Encode() []byte {
	return NewWriter(OpPlayerMoved).
		StringFixed(p.Username, UsernameLen).
		Int16(p.X).
		Int16(p.Y).
		Packet()
}

func (p *PlayerMoved) Decode(payload []byte) error {
	r := NewReader(payload)
	p.Username = r.StringFixed(UsernameLen)
	p.X = r.Int16()
	p.Y = r.Int16()
	return checkDecode(OpPlayerMoved, r)
}

// NpcInfo is one entry in an NpcUpdate list.
type NpcInfo struct {
	Id    string
	Kind  uint8
	X, Y  int16
	HP    uint16
	Level uint8
}

type NpcUpdate struct {
	Npcs []NpcInfo
}

func (p NpcUpdate) Encode() []byte {
	npcs := p.Npcs
	if len(npcs) > MaxNpcsPerUpdate {
		npcs = npcs[:MaxNpcsPerUpdate]
	}
	w := NewWriter(OpNpcUpdate).Uint8(uint8(len(npcs)))
	for _, n := range npcs {
		w.StringFixed(n.Id, EntityIdLen).
			Uint8(n.Kind).
			Int16(n.X).
			Int16(n.Y).
			Uint16(n.HP).
			Uint8(n.Level)
	}
	return w.Packet()
}

func (p *NpcUpdate) Decode(payload []byte) error {
	r := NewReader(payload)
	count := int(r.Uint8())
	p.Npcs = make([]NpcInfo, 0, count)
	for i := 0; i < count; i++ {
		p.Npcs = append(p.Npcs, NpcInfo{
			Id:    r.StringFixed(EntityIdLen),
			Kind:  r.Uint8(),
			X:     r.Int16(),
			Y:     r.Int16(),
			HP:    r.Uint16(),
			Level: r.Uint8(),
		})
	}
	return checkDecode(OpNpcUpdate, r)
}

// ChatMessage is client-sent chat text. The wire form carries a uint8 length
// prefix handled by the frame layer; Decode receives just the text bytes.
type ChatMessage struct {
	Text string
}

func (p ChatMessage) Encode() []byte {
	text := p.Text
	if len(text) > MaxChatLen {
		text = text[:MaxChatLen]
	}
	return NewWriter(OpChatMessage).
		Uint8(uint8(len(text))).
		Bytes([]byte(text)).
		Packet()
}

func (p *ChatMessage) Decode(payload []byte) error {
	p.Text = string(payload)
	return nil
}

type ChatBroadcast struct {
	Username string
	X, Y     int16
	Text     string
}

func (p ChatBroadcast) Encode() []byte {
	text := p.Text
	if len(text) > MaxChatLen {
		text = text[:MaxChatLen]
	}
	return NewWriter(OpChatBroadcast).
		StringFixed(p.Username, UsernameLen).
		Int16(p.X).
		Int16(p.Y).
		Uint8(uint8(len(text))).
		Bytes([]byte(text)).
		Packet()
}

func (p *ChatBroadcast) Decode(payload []byte) error {
	r := NewReader(payload)
	p.Username = r.StringFixed(UsernameLen)
	p.X = r.Int16()
	p.Y = r.Int16()
	n := int(r.Uint8())
	p.Text = string(r.Bytes(n))
	return checkDecode(OpChatBroadcast, r)
}

type CombatAction struct {
	TargetId string
}

func (p CombatAction) Encode() []byte {
	return NewWriter(OpCombatAction).
		StringFixed(p.TargetId, EntityIdLen).
		Packet()
}

func (p *CombatAction) Decode(payload []byte) error {
	r := NewReader(payload)
	p.TargetId = r.StringFixed(EntityIdLen)
	return checkDecode(OpCombatAction, r)
}

type CombatResult struct {
	Damage   uint16
	TargetHP uint16
	XP       uint32
}

func (p CombatResult) Encode() []byte {
	return NewWriter(OpCombatResult).
		Uint16(p.Damage).
		Uint16(p.TargetHP).
		Uint32(p.XP).
		Packet()
}

func (p *CombatResult) Decode(payload []byte) error {
	r := NewReader(payload)
	p.Damage = r.Uint16()
	p.TargetHP = r.Uint16()
	p.XP = r.Uint32()
	return checkDecode(OpCombatResult, r)
}

type SpellCast struct {
	SpellId  uint8
	TargetId string
}

func (p SpellCast) Encode() []byte {
	return NewWriter(OpSpellCast).
		Uint8(p.SpellId).
		StringFixed(p.TargetId, EntityIdLen).
		Packet()
}

func (p *SpellCast) Decode(payload []byte) error {
	r := NewReader(payload)
	p.SpellId = r.Uint8()
	p.TargetId = r.StringFixed(EntityIdLen)
	return checkDecode(OpSpellCast, r)
}

// Logout carries no payload.
type Logout struct{}

func (Logout) Encode() []byte {
	return NewWriter(OpLogout).Packet()
}

func checkDecode(op Opcode, r *Reader) error {
	if r.Short() {
		return fmt.Errorf("%s: payload too short", op)
	}
	return nil
}
