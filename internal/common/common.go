package common

import (
	"encoding/binary"
	"math"
)

// Order returns the byte order for the little-endian flag.
func Order(little bool) binary.ByteOrder {
	if little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// PutUint writes the low size bytes of x into b using order.
// size must be 1, 2, 4 or 8 and b at least size bytes long.
func PutUint(b []byte, size int, x uint64, order binary.ByteOrder) {
	switch size {
	case 1:
		b[0] = byte(x)
	case 2:
		order.PutUint16(b, uint16(x))
	case 4:
		order.PutUint32(b, uint32(x))
	case 8:
		order.PutUint64(b, x)
	default:
		panic("common: unsupported width")
	}
}

// Uint reads a size-byte unsigned integer from b using order.
func Uint(b []byte, size int, order binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	default:
		panic("common: unsupported width")
	}
}

// SignExtend interprets the low size bytes of x as a two's-complement integer.
func SignExtend(x uint64, size int) int64 {
	shift := uint(64 - 8*size)
	return int64(x<<shift) >> shift
}

// PutFloat writes f as an IEEE 754 value of size 4 or 8.
func PutFloat(b []byte, size int, f float64, order binary.ByteOrder) {
	if size == 4 {
		order.PutUint32(b, math.Float32bits(float32(f)))
		return
	}
	order.PutUint64(b, math.Float64bits(f))
}

// Float reads an IEEE 754 value of size 4 or 8.
func Float(b []byte, size int, order binary.ByteOrder) float64 {
	if size == 4 {
		return float64(math.Float32frombits(order.Uint32(b)))
	}
	return math.Float64frombits(order.Uint64(b))
}

// DoubledCapacity returns the smallest capacity reachable from cur by
// repeated doubling that is >= target. An empty buffer doubles from 1.
// It returns -1 when doubling would overflow int.
func DoubledCapacity(cur, target int) int {
	if cur >= target {
		return cur
	}
	if cur < 1 {
		cur = 1
	}
	for cur < target {
		if cur > math.MaxInt/2 {
			return -1
		}
		cur *= 2
	}
	return cur
}

// WriteVarUint appends a varint to buf (allocating if needed).
func WriteVarUint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
// It returns 0, 0 when b ends before the varint does.
func ReadVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		x |= uint64(c&0x7F) << s
		if c&0x80 == 0 {
			return x, i + 1
		}
		s += 7
	}
	return 0, 0
}
