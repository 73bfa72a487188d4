package protocol

import (
	"encoding/binary"
	"strings"
)

// Writer builds a packet payload. Append-only; the zero value is ready to use.
type Writer struct {
	buf []byte
}

func NewWriter(op Opcode) *Writer {
	return &Writer{buf: []byte{byte(op)}}
}

func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) Uint16(v uint16) *Writer {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) Int16(v int16) *Writer {
	return w.Uint16(uint16(v))
}

func (w *Writer) Uint32(v uint32) *Writer {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	return w
}

// StringFixed writes s into a fixed-width field, truncating or null-padding
// as needed.
func (w *Writer) StringFixed(s string, width int) *Writer {
	field := make([]byte, width)
	copy(field, s)
	w.buf = append(w.buf, field...)
	return w
}

func (w *Writer) Bytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) Packet() []byte {
	return w.buf
}

// Reader walks a packet payload. Reads past the end do not panic; they set a
// sticky short flag checked via Short(), so decoders can read every field and
// bounds-check once at the end.
type Reader struct {
	buf   []byte
	off   int
	short bool
}

func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

func (r *Reader) take(n int) []byte {
	if r.off+n > len(r.buf) {
		r.short = true
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// StringFixed reads a fixed-width field and strips trailing null padding.
func (r *Reader) StringFixed(width int) string {
	b := r.take(width)
	if b == nil {
		return ""
	}
	return strings.TrimRight(string(b), "\x00")
}

func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Short reports whether any read ran past the end of the payload.
func (r *Reader) Short() bool {
	return r.short
}

// Remaining returns the number of unread payload bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}
