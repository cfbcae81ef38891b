package frame

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"
	"testing"

	"github.com/rawbytedev/cstruct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var def = cstruct.Definition{
	cstruct.Field("uint8", "kind"),
	cstruct.Field("cstring", "label"),
	cstruct.Field("uint32", "value"),
}

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestEncodeDecodeRaw(t *testing.T) {
	c := newCodec(t)
	payload := []byte("Hello I'm Test 1")
	enc, err := c.Encode(payload, 0, 0)
	require.NoError(t, err)
	assert.Len(t, enc, headerSize+len(payload)+crcSize)

	f, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, payload, f.Payload)
	assert.False(t, f.Compressed())
	assert.True(t, f.LittleEndian())
}

func TestEncodeDecodeCompressedWithOffset(t *testing.T) {
	c := newCodec(t)
	payload := bytes.Repeat([]byte("Heavy Data "), 40)
	enc, err := c.Encode(payload, FlagCompressed|FlagHasOffset, 300)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(payload))

	f, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, payload, f.Payload)
	assert.Equal(t, 300, f.Offset)
	assert.True(t, f.Compressed())
}

func TestDecodeErrors(t *testing.T) {
	c := newCodec(t)
	enc, err := c.Encode([]byte{1, 2, 3}, 0, 0)
	require.NoError(t, err)

	_, err = c.Decode(enc[:5])
	require.ErrorIs(t, err, ErrShortFrame)

	bad := bytes.Clone(enc)
	bad[0] = 0
	_, err = c.Decode(bad)
	require.ErrorIs(t, err, ErrBadMagic)

	_, err = c.Decode(append(bytes.Clone(enc), 0))
	require.ErrorIs(t, err, ErrLengthMismatch)

	bad = bytes.Clone(enc)
	bad[headerSize] ^= 0xff
	_, err = c.Decode(bad)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestDecodeRejectsOffsetPastPayload(t *testing.T) {
	c := newCodec(t)
	for _, off := range []int{math.MaxInt, 5} {
		enc, err := c.Encode([]byte{1, 2, 3, 4}, FlagHasOffset, off)
		require.NoError(t, err)
		_, err = c.Decode(enc)
		require.ErrorIs(t, err, ErrLengthMismatch, "offset %d", off)

		s, err := cstruct.New(cstruct.Definition{cstruct.Field("uint16", "value")})
		require.NoError(t, err)
		require.ErrorIs(t, c.DecodeInto(s, enc), ErrLengthMismatch)
		assert.Zero(t, s.Offset())
	}

	// a varint above math.MaxInt
	raw := []byte{Magic0, Magic1, TypeStruct, 0, 0, 0, 0, FlagHasOffset}
	raw = append(raw, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0)
	binary.LittleEndian.PutUint32(raw[3:], uint32(len(raw)+crcSize))
	raw = binary.LittleEndian.AppendUint32(raw, crc32.ChecksumIEEE(raw[3:]))
	_, err := c.Decode(raw)
	require.ErrorIs(t, err, ErrLengthMismatch)

	enc, err := c.Encode([]byte{1, 2, 3, 4}, FlagHasOffset, 4)
	require.NoError(t, err)
	f, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Offset)
}

func TestStructSnapshot(t *testing.T) {
	c := newCodec(t)
	for _, compress := range []bool{false, true} {
		src, err := cstruct.New(def, cstruct.WithBigEndian(), cstruct.WithOffset(2))
		require.NoError(t, err)
		require.NoError(t, src.Set("kind", cstruct.Uint(4)).Set("label", cstruct.Text("frame")).Set("value", cstruct.Uint(70000)).Err())

		enc, err := c.EncodeStruct(src, compress)
		require.NoError(t, err)

		dst, err := cstruct.New(def)
		require.NoError(t, err)
		require.NoError(t, c.DecodeInto(dst, enc))
		assert.False(t, dst.LittleEndian())
		assert.Equal(t, 2, dst.Offset())
		assert.Equal(t, src.View(), dst.View())

		want, err := src.Prop()
		require.NoError(t, err)
		got, err := dst.Prop()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeIntoDoesNotAliasFrame(t *testing.T) {
	c := newCodec(t)
	src, err := cstruct.New(def)
	require.NoError(t, err)
	require.NoError(t, src.Set("kind", cstruct.Uint(1)).Err())
	enc, err := c.EncodeStruct(src, false)
	require.NoError(t, err)

	dst, err := cstruct.New(def)
	require.NoError(t, err)
	require.NoError(t, c.DecodeInto(dst, enc))
	require.NoError(t, dst.Set("kind", cstruct.Uint(9)).Err())
	assert.Equal(t, byte(1), enc[headerSize])
}
