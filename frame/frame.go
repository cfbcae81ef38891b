// Package frame wraps a struct's bytes in a checksummed envelope for
// storage or transport.
//
// Layout (little endian):
//
//	magic(2) | type(1) | length u32 | flags(1) | [offset varint] | payload | crc32 u32
//
// length covers the whole frame including the CRC. The CRC-32 (IEEE) covers
// everything from the length field through the payload.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/rawbytedev/cstruct"
	"github.com/rawbytedev/cstruct/internal/common"
)

const (
	Magic0     = 0xC5
	Magic1     = 0x57
	TypeStruct = 0x01

	headerSize = 8 // magic + type + length + flags
	crcSize    = 4
)

const (
	FlagCompressed byte = 1 << iota
	FlagBigEndian
	FlagHasOffset
)

var (
	ErrShortFrame     = errors.New("frame too short")
	ErrBadMagic       = errors.New("not a struct frame")
	ErrLengthMismatch = errors.New("frame length mismatch")
	ErrChecksum       = errors.New("crc mismatch")
	ErrCompression    = errors.New("payload compression failed")
)

// Frame is a decoded envelope.
type Frame struct {
	Flags   byte
	Offset  int
	Payload []byte
}

func (f Frame) Compressed() bool   { return f.Flags&FlagCompressed != 0 }
func (f Frame) LittleEndian() bool { return f.Flags&FlagBigEndian == 0 }

// Codec encodes and decodes frames. It keeps one zstd encoder and decoder
// for reuse and is safe for concurrent use.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewCodec() (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Close releases the zstd resources.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}

// Encode builds a frame around payload. With FlagCompressed the payload is
// zstd-compressed; with FlagHasOffset offset is stored after the flags.
func (c *Codec) Encode(payload []byte, flags byte, offset int) ([]byte, error) {
	if flags&FlagCompressed != 0 {
		payload = c.enc.EncodeAll(payload, nil)
	}
	out := make([]byte, 0, headerSize+binary.MaxVarintLen64+len(payload)+crcSize)
	out = append(out, Magic0, Magic1, TypeStruct)

	// reserve length
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = append(out, flags)
	if flags&FlagHasOffset != 0 {
		out = common.WriteVarUint(out, uint64(offset))
	}
	out = append(out, payload...)

	binary.LittleEndian.PutUint32(out[3:], uint32(len(out)+crcSize))
	crc := crc32.ChecksumIEEE(out[3:])
	out = binary.LittleEndian.AppendUint32(out, crc)
	return out, nil
}

// Decode validates data and returns its frame. The payload of an
// uncompressed frame aliases data.
func (c *Codec) Decode(data []byte) (Frame, error) {
	if len(data) < headerSize+crcSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if data[0] != Magic0 || data[1] != Magic1 || data[2] != TypeStruct {
		return Frame{}, ErrBadMagic
	}
	if n := binary.LittleEndian.Uint32(data[3:]); int(n) != len(data) {
		return Frame{}, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, n, len(data))
	}
	end := len(data) - crcSize
	if crc32.ChecksumIEEE(data[3:end]) != binary.LittleEndian.Uint32(data[end:]) {
		return Frame{}, ErrChecksum
	}

	f := Frame{Flags: data[7]}
	pos := headerSize
	if f.Flags&FlagHasOffset != 0 {
		off, n := common.ReadVarUint(data[pos:end])
		if n == 0 {
			return Frame{}, fmt.Errorf("%w: truncated offset", ErrShortFrame)
		}
		if off > math.MaxInt {
			return Frame{}, fmt.Errorf("%w: offset %d out of range", ErrLengthMismatch, off)
		}
		f.Offset = int(off)
		pos += n
	}
	f.Payload = data[pos:end]
	if f.Compressed() {
		raw, err := c.dec.DecodeAll(f.Payload, nil)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %w", ErrCompression, err)
		}
		f.Payload = raw
	}
	if f.Offset > len(f.Payload) {
		return Frame{}, fmt.Errorf("%w: offset %d past %d payload bytes", ErrLengthMismatch, f.Offset, len(f.Payload))
	}
	return f, nil
}

// EncodeStruct frames the whole backing store of s together with its
// offset and byte order.
func (c *Codec) EncodeStruct(s *cstruct.Struct, compress bool) ([]byte, error) {
	var flags byte
	if compress {
		flags |= FlagCompressed
	}
	if !s.LittleEndian() {
		flags |= FlagBigEndian
	}
	if s.Offset() != 0 {
		flags |= FlagHasOffset
	}
	return c.Encode(s.View(), flags, s.Offset())
}

// DecodeInto replaces the view of s with a copy of the frame payload and
// restores the framed offset and byte order.
func (c *Codec) DecodeInto(s *cstruct.Struct, data []byte) error {
	f, err := c.Decode(data)
	if err != nil {
		return err
	}
	payload := f.Payload
	if !f.Compressed() {
		payload = bytes.Clone(payload)
	}
	s.SetView(payload).SetOffset(f.Offset).SetLittleEndian(f.LittleEndian())
	return nil
}
