package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Layout describes how many payload bytes follow an inbound opcode. Packets
// are either entirely fixed-size or carry a single uint8 length prefix for a
// bounded variable tail (chat text). New client opcodes are declared here,
// not in parsing code.
type Layout struct {
	Fixed     int  // fixed payload bytes
	LenPrefix bool // payload starts with a uint8 length + that many bytes
	MaxVar    int  // upper bound for the variable portion
}

// clientLayouts is the closed set of opcodes the server accepts. Anything
// else is a framing error: without a global length prefix the stream cannot
// be resynchronized past an unknown opcode.
var clientLayouts = map[Opcode]Layout{
	OpLoginRequest: {Fixed: UsernameLen * 2},
	OpPlayerUpdate: {Fixed: 4},
	OpChatMessage:  {LenPrefix: true, MaxVar: MaxChatLen},
	OpCombatAction: {Fixed: EntityIdLen},
	OpSpellCast:    {Fixed: 1 + EntityIdLen},
	OpLogout:       {Fixed: 0},
}

var (
	// ErrUnknownOpcode means the stream carried an opcode outside the client
	// layout table. The connection must be dropped; framing is lost.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrPayloadTooLarge means a variable-length packet exceeded its bound.
	// The packet has been consumed; the stream remains framed.
	ErrPayloadTooLarge = errors.New("payload exceeds bound")
)

// Packet is one decoded frame off the wire.
type Packet struct {
	Op      Opcode
	Payload []byte
}

// FrameReader peels complete packets off a TCP stream, tolerating arbitrary
// fragmentation: each read blocks until the packet's declared layout is
// fully buffered.
type FrameReader struct {
	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the next complete packet. It returns ErrPayloadTooLarge for an
// over-bound variable packet (recoverable: the caller may keep reading),
// ErrUnknownOpcode for an unrecognized opcode (fatal to the connection), and
// io.EOF when the peer closes cleanly between packets.
func (fr *FrameReader) Next() (Packet, error) {
	opByte, err := fr.r.ReadByte()
	if err != nil {
		return Packet{}, err
	}
	op := Opcode(opByte)

	layout, ok := clientLayouts[op]
	if !ok {
		return Packet{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, opByte)
	}

	varLen := 0
	if layout.LenPrefix {
		n, err := fr.r.ReadByte()
		if err != nil {
			return Packet{}, err
		}
		varLen = int(n)
	}

	payload := make([]byte, varLen+layout.Fixed)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return Packet{}, err
	}

	if layout.LenPrefix && varLen > layout.MaxVar {
		return Packet{Op: op}, fmt.Errorf("%w: %s %d > %d", ErrPayloadTooLarge, op, varLen, layout.MaxVar)
	}

	return Packet{Op: op, Payload: payload}, nil
}
