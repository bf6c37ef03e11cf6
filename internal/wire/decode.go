package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Decoder reads a wire-format message.
//
// Decode fails closed: any malformed, truncated, or out-of-domain input
// yields a *DecodeError, after which the Decoder is sticky - every
// subsequent read returns the same error and consumes no further input.
type Decoder struct {
	data     []byte
	off      int
	depth    int
	maxDepth int
	err      error
}

// NewDecoder creates a Decoder over data with the default depth budget.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, maxDepth: DefaultMaxDepth}
}

// NewDecoderWithDepth creates a Decoder with a custom depth budget.
func NewDecoderWithDepth(data []byte, maxDepth int) *Decoder {
	return &Decoder{data: data, maxDepth: maxDepth}
}

// Err returns the sticky error, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Offset returns the current read offset.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// fail records the first error and returns it. Later reads short-circuit.
func (d *Decoder) fail(code DecodeErrorCode, format string, args ...any) error {
	if d.err == nil {
		d.err = &DecodeError{Code: code, Offset: d.off, Message: fmt.Sprintf(format, args...)}
	}
	return d.err
}

// take consumes n bytes, or fails with a truncation error.
func (d *Decoder) take(n int) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.Remaining() < n {
		return nil, d.fail(ErrCodeTruncated, "need %d bytes, have %d", n, d.Remaining())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// ReadBool reads a single 0/1 byte.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.fail(ErrCodeInvalidInput, "boolean byte %d", b[0])
	}
}

// ReadUint8 reads an unsigned 8-bit integer.
func (d *Decoder) ReadUint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian unsigned 32-bit integer.
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian unsigned 64-bit integer.
func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt8 reads a signed 8-bit integer.
func (d *Decoder) ReadInt8() (int8, error) {
	v, err := d.ReadUint8()
	return int8(v), err
}

// ReadInt16 reads a little-endian signed 16-bit integer.
func (d *Decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a little-endian signed 32-bit integer.
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads a little-endian signed 64-bit integer.
func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 single.
func (d *Decoder) ReadFloat32() (float32, error) {
	v, err := d.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadString reads a u64 length prefix and that many bytes of UTF-8.
// Invalid UTF-8 is an INVALID_INPUT error per the wire contract.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadLen()
	if err != nil {
		return "", err
	}
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.fail(ErrCodeInvalidInput, "string bytes are not valid UTF-8")
	}
	return string(b), nil
}

// ReadBytes reads a u64 length prefix and that many raw bytes.
// The returned slice aliases the input buffer.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadLen()
	if err != nil {
		return nil, err
	}
	return d.take(n)
}

// ReadLen reads a u64 sequence/map length and bounds it against the
// remaining input, so a hostile prefix cannot force a huge allocation.
func (d *Decoder) ReadLen() (int, error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	if v > uint64(math.MaxInt) {
		return 0, d.fail(ErrCodeInvalidInput, "length %d exceeds addressable range", v)
	}
	if v > uint64(d.Remaining()) {
		return 0, d.fail(ErrCodeTruncated, "length %d exceeds %d remaining bytes", v, d.Remaining())
	}
	return int(v), nil
}

// ReadVariant reads a u32 union tag and checks it against the union's
// variant count. An out-of-range index is unrecoverable.
func (d *Decoder) ReadVariant(numVariants uint32) (uint32, error) {
	v, err := d.ReadUint32()
	if err != nil {
		return 0, err
	}
	if v >= numVariants {
		return 0, d.fail(ErrCodeUnknownVariant, "variant index %d, union has %d variants", v, numVariants)
	}
	return v, nil
}

// ReadOption reads the 1-byte presence tag. The caller decodes the value
// itself when the result is true.
func (d *Decoder) ReadOption() (bool, error) {
	b, err := d.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.fail(ErrCodeInvalidInput, "option tag %d", b[0])
	}
}

// Enter records descent into a nested container. Fails with
// DEPTH_EXCEEDED once nesting passes the budget, instead of letting a
// crafted stream overflow the call stack.
func (d *Decoder) Enter() error {
	if d.err != nil {
		return d.err
	}
	d.depth++
	if d.depth > d.maxDepth {
		return d.fail(ErrCodeDepthExceeded, "nesting depth %d exceeds budget %d", d.depth, d.maxDepth)
	}
	return nil
}

// Leave records ascent out of a nested container.
func (d *Decoder) Leave() {
	d.depth--
}
