package wire

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_Primitives(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteUint8(0xFF)
	e.WriteUint16(0xBEEF)
	e.WriteUint32(0xDEADBEEF)
	e.WriteUint64(1<<63 + 42)
	e.WriteInt8(-128)
	e.WriteInt16(-300)
	e.WriteInt32(-70000)
	e.WriteInt64(-1 << 62)
	e.WriteFloat32(1.5)
	e.WriteFloat64(-2.25)

	d := NewDecoder(e.Data())
	b1, err := d.ReadBool()
	require.NoError(t, err)
	assert.True(t, b1)
	b2, err := d.ReadBool()
	require.NoError(t, err)
	assert.False(t, b2)

	u8, err := d.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), u8)
	u16, err := d.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)
	u32, err := d.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	u64, err := d.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63+42), u64)

	i8, err := d.ReadInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-128), i8)
	i16, err := d.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-300), i16)
	i32, err := d.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-70000), i32)
	i64, err := d.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<62), i64)

	f32, err := d.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)
	f64, err := d.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, -2.25, f64)

	assert.Equal(t, 0, d.Remaining())
}

func TestRoundTrip_Strings(t *testing.T) {
	cases := []string{"", "scales", "práctica", "練習", "a\x00b"}
	for _, s := range cases {
		e := NewEncoder()
		e.WriteString(s)

		d := NewDecoder(e.Data())
		got, err := d.ReadString()
		require.NoError(t, err, "string %q", s)
		assert.Equal(t, s, got)
		assert.Equal(t, 0, d.Remaining())
	}
}

func TestRoundTrip_Bytes(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xFE, 0xFF}
	e := NewEncoder()
	e.WriteBytes(payload)
	e.WriteBytes(nil)

	d := NewDecoder(e.Data())
	got, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	empty, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Len(t, empty, 0)
}

func TestRoundTrip_Options(t *testing.T) {
	e := NewEncoder()
	e.WriteOption(false)
	e.WriteOption(true)
	e.WriteUint32(99)

	d := NewDecoder(e.Data())
	present, err := d.ReadOption()
	require.NoError(t, err)
	assert.False(t, present)
	present, err = d.ReadOption()
	require.NoError(t, err)
	assert.True(t, present)
	v, err := d.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(99), v)
}

func TestReadString_InvalidUTF8(t *testing.T) {
	e := NewEncoder()
	e.WriteBytes([]byte{0xFF, 0xFE, 0xFD})

	d := NewDecoder(e.Data())
	_, err := d.ReadString()
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeInvalidInput, de.Code)
}

func TestReadBool_InvalidByte(t *testing.T) {
	d := NewDecoder([]byte{2})
	_, err := d.ReadBool()
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeInvalidInput, de.Code)
}

func TestReadVariant_UnknownIndex(t *testing.T) {
	e := NewEncoder()
	e.WriteVariant(7)

	d := NewDecoder(e.Data())
	_, err := d.ReadVariant(3)
	require.Error(t, err)
	assert.True(t, IsUnknownVariant(err))
}

func TestDecoder_Truncation(t *testing.T) {
	e := NewEncoder()
	e.WriteString("intention")
	full := e.Data()

	// Every strict prefix of a valid message must fail closed.
	for n := 0; n < len(full); n++ {
		d := NewDecoder(full[:n])
		_, err := d.ReadString()
		require.Error(t, err, "prefix of %d bytes", n)
		assert.True(t, IsTruncated(err), "prefix of %d bytes: %v", n, err)
	}
}

func TestReadLen_HostileLengthPrefix(t *testing.T) {
	// Claims 2^60 elements with only a handful of bytes behind it.
	e := NewEncoder()
	e.WriteUint64(1 << 60)
	e.WriteUint8(1)

	d := NewDecoder(e.Data())
	_, err := d.ReadLen()
	require.Error(t, err)
	assert.True(t, IsTruncated(err))
}

func TestDecoder_StickyAfterFailure(t *testing.T) {
	d := NewDecoder([]byte{2, 1, 1}) // bad bool, then two valid ones
	_, err := d.ReadBool()
	require.Error(t, err)
	off := d.Offset()

	// All subsequent reads return the same error and consume nothing.
	_, err2 := d.ReadBool()
	assert.Same(t, err, err2)
	_, err3 := d.ReadUint64()
	assert.Same(t, err, err3)
	assert.Equal(t, off, d.Offset())
}

func TestDepthBudget_DecodeBoundary(t *testing.T) {
	d := NewDecoder(nil)

	// Exactly at the budget: fine.
	for i := 0; i < DefaultMaxDepth; i++ {
		require.NoError(t, d.Enter())
	}
	// One past: dedicated depth error, not a crash.
	err := d.Enter()
	require.Error(t, err)
	assert.True(t, IsDepthExceeded(err))
}

func TestDepthBudget_EncodeBoundary(t *testing.T) {
	e := NewEncoderWithDepth(3)
	require.NoError(t, e.Enter())
	require.NoError(t, e.Enter())
	require.NoError(t, e.Enter())
	err := e.Enter()
	require.Error(t, err)
	assert.True(t, IsDepthExceeded(err))
}

func TestDepthBudget_LeaveRestores(t *testing.T) {
	d := NewDecoderWithDepth(nil, 2)
	require.NoError(t, d.Enter())
	require.NoError(t, d.Enter())
	d.Leave()
	require.NoError(t, d.Enter())
}

func TestWriteLen_RejectsNegative(t *testing.T) {
	e := NewEncoder()
	err := e.WriteLen(-1)
	require.Error(t, err)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "length", re.Kind)
	assert.Empty(t, e.Data(), "no bytes written for rejected value")
}

func TestWriteUintAs32_RejectsOutOfRange(t *testing.T) {
	e := NewEncoder()
	require.Error(t, e.WriteUintAs32(-5))
	require.Error(t, e.WriteUintAs32(1<<33))
	assert.Empty(t, e.Data())
	require.NoError(t, e.WriteUintAs32(120))
	assert.Equal(t, []byte{120, 0, 0, 0}, e.Data())
}

// TestGolden_PrimitiveLayout pins the byte-level layout. If this golden
// changes, every host decoder breaks with it.
func TestGolden_PrimitiveLayout(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteUint8(7)
	e.WriteUint16(0x0102)
	e.WriteUint32(0xDEADBEEF)
	e.WriteUint64(1000000007)
	e.WriteInt8(-1)
	e.WriteInt16(-300)
	e.WriteInt32(-70000)
	e.WriteInt64(-2)
	e.WriteFloat32(1.5)
	e.WriteFloat64(-2.25)
	e.WriteString("práctica")
	e.WriteOption(false)
	e.WriteOption(true)
	e.WriteUint8(9)
	e.WriteVariant(3)
	require.NoError(t, e.WriteLen(2))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "primitive_layout", e.Data())
}

func TestEncoder_DataAccumulates(t *testing.T) {
	e := NewEncoder()
	e.WriteUint8(1)
	first := append([]byte(nil), e.Data()...)
	e.WriteUint8(2)
	assert.True(t, bytes.HasPrefix(e.Data(), first))
	assert.Len(t, e.Data(), 2)
}
