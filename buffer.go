package cstruct

import (
	"fmt"

	"github.com/rawbytedev/cstruct/internal/common"
	"go.uber.org/zap"
)

// DefaultMaxCapacity bounds buffer growth when no other limit is configured.
const DefaultMaxCapacity = 1 << 30

// Buffer is a byte store that grows by doubling and never shrinks.
// Its length is its capacity: every byte up to Len is addressable.
type Buffer struct {
	data []byte
	max  int
	log  *zap.Logger
}

// NewBuffer allocates a zeroed buffer of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size), max: DefaultMaxCapacity}
}

// WrapBuffer uses b as the backing store without copying it. The caller
// keeps ownership of b until the buffer grows, after which the Buffer
// holds a private copy.
func WrapBuffer(b []byte) *Buffer {
	return &Buffer{data: b, max: DefaultMaxCapacity}
}

func (b *Buffer) Bytes() []byte { return b.data }
func (b *Buffer) Len() int      { return len(b.data) }

// SetMax sets the growth ceiling. Values <= 0 restore DefaultMaxCapacity.
func (b *Buffer) SetMax(n int) {
	if n <= 0 {
		n = DefaultMaxCapacity
	}
	b.max = n
}

// Grow ensures at least target bytes are addressable. Existing content is
// copied into the new allocation before it replaces the old one, so a
// failed Grow leaves the buffer untouched.
func (b *Buffer) Grow(target int) error {
	if target <= len(b.data) {
		if target < 0 {
			return fmt.Errorf("%w: negative target %d", ErrCapacity, target)
		}
		return nil
	}
	if target > b.max {
		return fmt.Errorf("%w: target %d exceeds limit %d", ErrCapacity, target, b.max)
	}
	size := common.DoubledCapacity(len(b.data), target)
	if size < 0 {
		return fmt.Errorf("%w: target %d overflows", ErrCapacity, target)
	}
	if size > b.max {
		size = b.max
	}
	grown := make([]byte, size)
	copy(grown, b.data)
	if b.log != nil {
		b.log.Debug("buffer grown", zap.Int("from", len(b.data)), zap.Int("to", size))
	}
	b.data = grown
	return nil
}
