// Package wire implements the binary format crossing the core boundary.
//
// Every message between the core and its hosts, and every value the local
// store structures for persistence-adjacent hashing, is framed with the
// same primitive layout:
//
//   - booleans: 1 byte, 0 or 1
//   - integers: fixed width, little-endian, two's complement for signed
//   - floats: IEEE-754 bit pattern, little-endian
//   - strings and byte arrays: u64 byte-length prefix + raw bytes
//   - sequence/map lengths: u64
//   - union tags: u32 positional variant index, declaration order
//   - options: 1-byte tag (0 absent, 1 present) + encoded value
//
// The codec carries no schema of its own. Which fields appear in which
// order is the business of the encoders riding on top (see
// internal/domain). Nesting is bounded by a depth budget so hostile input
// fails with a typed error instead of exhausting the call stack.
package wire

import (
	"bytes"
	"encoding/binary"
	"math"
)

// DefaultMaxDepth is the default container nesting budget.
const DefaultMaxDepth = 500

// Encoder accumulates a wire-format message.
//
// Encoding is total for in-range values: only negative lengths, values
// that do not fit their target width, and nesting past the depth budget
// are rejected, and they are rejected before any bytes are written.
type Encoder struct {
	buf      bytes.Buffer
	depth    int
	maxDepth int
}

// NewEncoder creates an Encoder with the default depth budget.
func NewEncoder() *Encoder {
	return &Encoder{maxDepth: DefaultMaxDepth}
}

// NewEncoderWithDepth creates an Encoder with a custom depth budget.
// Used by tests probing the budget boundary.
func NewEncoderWithDepth(maxDepth int) *Encoder {
	return &Encoder{maxDepth: maxDepth}
}

// Data returns the bytes encoded so far.
func (e *Encoder) Data() []byte {
	return e.buf.Bytes()
}

// WriteBool writes a boolean as a single 0/1 byte.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// WriteUint8 writes an unsigned 8-bit integer.
func (e *Encoder) WriteUint8(v uint8) {
	e.buf.WriteByte(v)
}

// WriteUint16 writes an unsigned 16-bit integer, little-endian.
func (e *Encoder) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

// WriteUint32 writes an unsigned 32-bit integer, little-endian.
func (e *Encoder) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// WriteUint64 writes an unsigned 64-bit integer, little-endian.
func (e *Encoder) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// WriteInt8 writes a signed 8-bit integer (two's complement).
func (e *Encoder) WriteInt8(v int8) {
	e.buf.WriteByte(byte(v))
}

// WriteInt16 writes a signed 16-bit integer, little-endian.
func (e *Encoder) WriteInt16(v int16) {
	e.WriteUint16(uint16(v))
}

// WriteInt32 writes a signed 32-bit integer, little-endian.
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteInt64 writes a signed 64-bit integer, little-endian.
func (e *Encoder) WriteInt64(v int64) {
	e.WriteUint64(uint64(v))
}

// WriteFloat32 writes the IEEE-754 bit pattern, little-endian.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes the IEEE-754 bit pattern, little-endian.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteString writes a u64 byte-length prefix followed by raw UTF-8.
// Go strings are written as-is; decode-side validation rejects invalid
// UTF-8, keeping the failure on the boundary that can act on it.
func (e *Encoder) WriteString(v string) {
	e.WriteUint64(uint64(len(v)))
	e.buf.WriteString(v)
}

// WriteBytes writes a u64 length prefix followed by the raw bytes.
func (e *Encoder) WriteBytes(v []byte) {
	e.WriteUint64(uint64(len(v)))
	e.buf.Write(v)
}

// WriteLen writes a sequence/map length as u64.
// Negative lengths are rejected before any bytes are written.
func (e *Encoder) WriteLen(n int) error {
	if n < 0 {
		return &RangeError{Kind: "length", Value: int64(n)}
	}
	e.WriteUint64(uint64(n))
	return nil
}

// WriteVariant writes a union tag as a u32 positional variant index.
func (e *Encoder) WriteVariant(idx uint32) {
	e.WriteUint32(idx)
}

// WriteUintAs32 writes an int as u32, rejecting values outside [0, 2^32).
// Used where a Go int crosses the boundary into a fixed u32 slot.
func (e *Encoder) WriteUintAs32(v int) error {
	if v < 0 || int64(v) > math.MaxUint32 {
		return &RangeError{Kind: "u32", Value: int64(v)}
	}
	e.WriteUint32(uint32(v))
	return nil
}

// WriteOption writes the 1-byte presence tag. The caller encodes the
// value itself when present is true.
func (e *Encoder) WriteOption(present bool) {
	e.WriteBool(present)
}

// Enter records descent into a nested container. Fails with a depth
// RangeError once nesting exceeds the budget.
func (e *Encoder) Enter() error {
	e.depth++
	if e.depth > e.maxDepth {
		return &RangeError{Kind: "depth", Value: int64(e.depth)}
	}
	return nil
}

// Leave records ascent out of a nested container.
func (e *Encoder) Leave() {
	e.depth--
}
