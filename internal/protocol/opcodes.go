// Package protocol implements the binary wire protocol spoken between game
// clients and the server. Every packet is a one-byte opcode followed by a
// payload whose layout is fixed per opcode; multi-byte integers are
// big-endian and strings are fixed-width, null-padded ASCII.
package protocol

// Opcode identifies a packet type.
type Opcode byte

const (
	OpWelcome       Opcode = 0x00 // S->C on connect
	OpLoginRequest  Opcode = 0x01 // C->S
	OpLoginResponse Opcode = 0x02 // S->C
	OpPlayerUpdate  Opcode = 0x10 // C->S requested position
	OpNpcUpdate     Opcode = 0x11 // S->C npcs in view
	OpPlayerMoved   Opcode = 0x12 // S->C neighbor movement
	OpChatMessage   Opcode = 0x20 // C->S
	OpChatBroadcast Opcode = 0x21 // S->C
	OpCombatAction  Opcode = 0x30 // C->S
	OpCombatResult  Opcode = 0x31 // S->C
	OpSpellCast     Opcode = 0x32 // C->S
	OpLogout        Opcode = 0x3F // C->S
)

var opcodeNames = map[Opcode]string{
	OpWelcome:       "Welcome",
	OpLoginRequest:  "LoginRequest",
	OpLoginResponse: "LoginResponse",
	OpPlayerUpdate:  "PlayerUpdate",
	OpNpcUpdate:     "NpcUpdate",
	OpPlayerMoved:   "PlayerMoved",
	OpChatMessage:   "ChatMessage",
	OpChatBroadcast: "ChatBroadcast",
	OpCombatAction:  "CombatAction",
	OpCombatResult:  "CombatResult",
	OpSpellCast:     "SpellCast",
	OpLogout:        "Logout",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "Unknown"
}

// Field widths shared across packet layouts.
const (
	// Version is the protocol version sent in the Welcome packet.
	Version uint8 = 1

	// UsernameLen is the fixed width of username (and password) fields.
	UsernameLen = 12

	// EntityIdLen is the fixed width of NPC/entity id fields, sized for a
	// canonical uuid string.
	EntityIdLen = 36

	// MaxChatLen bounds the variable text portion of a chat packet.
	MaxChatLen = 100

	// MaxNpcsPerUpdate bounds an NpcUpdate list; the count field is a uint8.
	MaxNpcsPerUpdate = 255
)
