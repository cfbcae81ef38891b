package cstruct

import (
	"encoding/binary"
	"fmt"

	"github.com/rawbytedev/cstruct/internal/common"
	"golang.org/x/text/encoding/charmap"
)

// RawGet decodes a scalar from b, which is exactly the type's size long.
type RawGet func(b []byte, order binary.ByteOrder) Value

// RawSet encodes v into b, which is exactly the type's size long.
type RawSet func(b []byte, v Value, order binary.ByteOrder)

// Type describes how one primitive is laid out and coded.
// Types are immutable once registered.
type Type struct {
	Name string
	// Size is the fixed width in bytes, or the placeholder width a dynamic
	// type contributes to a layout's minimum size.
	Size    int
	Dynamic bool
	Kind    Kind

	get func(buf *Buffer, off int, order binary.ByteOrder) (Value, int, error)
	set func(buf *Buffer, off int, v Value, order binary.ByteOrder) (int, error)
}

// Get decodes the value at off and reports how many bytes it occupied.
func (t *Type) Get(buf *Buffer, off int, order binary.ByteOrder) (Value, int, error) {
	return t.get(buf, off, order)
}

// Set encodes v at off, growing buf if needed, and reports how many
// bytes were written.
func (t *Type) Set(buf *Buffer, off int, v Value, order binary.ByteOrder) (int, error) {
	if !t.Accepts(v.Kind()) {
		return 0, fmt.Errorf("%w: %s into %s", ErrTypeMismatch, v.Kind(), t.Name)
	}
	return t.set(buf, off, v, order)
}

// Accepts reports whether values of kind k can be stored by t.
func (t *Type) Accepts(k Kind) bool {
	if t.Kind == KindText {
		return k == KindText
	}
	return k.numeric()
}

// Registry maps type names to descriptors. The zero value is not usable;
// use NewRegistry or Builtin.
type Registry struct {
	types map[string]*Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Builtin returns a new registry holding the integer, float, bool and
// cstring types.
func Builtin() *Registry {
	r := NewRegistry()
	for _, w := range []int{1, 2, 4, 8} {
		bits := w * 8
		g, s := intCodec(w)
		r.mustRegister(fmt.Sprintf("int%d", bits), w, KindInt, g, s)
		g, s = uintCodec(w)
		r.mustRegister(fmt.Sprintf("uint%d", bits), w, KindUint, g, s)
	}
	for _, w := range []int{4, 8} {
		g, s := floatCodec(w)
		r.mustRegister(fmt.Sprintf("float%d", w*8), w, KindFloat, g, s)
	}
	r.mustRegister("bool", 1, KindBool,
		func(b []byte, _ binary.ByteOrder) Value { return Bool(b[0] != 0) },
		func(b []byte, v Value, _ binary.ByteOrder) {
			b[0] = 0
			if v.Bool() {
				b[0] = 1
			}
		})
	r.types["cstring"] = cstringType()
	return r
}

// defaultRegistry backs New when no registry option is given. It is never
// mutated after init.
var defaultRegistry = Builtin()

// Register installs a fixed-width scalar type.
func (r *Registry) Register(name string, size int, kind Kind, get RawGet, set RawSet) error {
	if name == "" {
		return fmt.Errorf("%w: type name", ErrEmptyName)
	}
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	if size <= 0 {
		return fmt.Errorf("%w: %s has size %d", ErrInvalidSize, name, size)
	}
	r.types[name] = scalarType(name, size, kind, get, set)
	return nil
}

func (r *Registry) mustRegister(name string, size int, kind Kind, get RawGet, set RawSet) {
	if err := r.Register(name, size, kind, get, set); err != nil {
		panic(err)
	}
}

// Alias makes alias resolve to the same descriptor as target.
func (r *Registry) Alias(alias, target string) error {
	t, err := r.Lookup(target)
	if err != nil {
		return err
	}
	if _, ok := r.types[alias]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, alias)
	}
	r.types[alias] = t
	return nil
}

func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

func scalarType(name string, size int, kind Kind, get RawGet, set RawSet) *Type {
	return &Type{
		Name: name,
		Size: size,
		Kind: kind,
		get: func(buf *Buffer, off int, order binary.ByteOrder) (Value, int, error) {
			if off < 0 || off > buf.Len()-size {
				return Value{}, 0, fmt.Errorf("%w: %s at %d needs %d bytes, have %d",
					ErrOutOfBounds, name, off, size, buf.Len())
			}
			return get(buf.Bytes()[off:off+size], order), size, nil
		},
		set: func(buf *Buffer, off int, v Value, order binary.ByteOrder) (int, error) {
			if off < 0 {
				return 0, fmt.Errorf("%w: %s at %d", ErrOutOfBounds, name, off)
			}
			if err := buf.Grow(off + size); err != nil {
				return 0, err
			}
			set(buf.Bytes()[off:off+size], v, order)
			return size, nil
		},
	}
}

func intCodec(size int) (RawGet, RawSet) {
	return func(b []byte, order binary.ByteOrder) Value {
			return Int(common.SignExtend(common.Uint(b, size, order), size))
		}, func(b []byte, v Value, order binary.ByteOrder) {
			common.PutUint(b, size, v.Uint(), order)
		}
}

func uintCodec(size int) (RawGet, RawSet) {
	return func(b []byte, order binary.ByteOrder) Value {
			return Uint(common.Uint(b, size, order))
		}, func(b []byte, v Value, order binary.ByteOrder) {
			common.PutUint(b, size, v.Uint(), order)
		}
}

func floatCodec(size int) (RawGet, RawSet) {
	return func(b []byte, order binary.ByteOrder) Value {
			return Float(common.Float(b, size, order))
		}, func(b []byte, v Value, order binary.ByteOrder) {
			common.PutFloat(b, size, v.Float(), order)
		}
}

// cstringType codes NUL-terminated Latin-1 text. Reads stop at the first
// zero byte or the end of the buffer; the advance always counts one
// terminator byte. A read starting past the end fails.
func cstringType() *Type {
	latin1 := charmap.ISO8859_1
	return &Type{
		Name:    "cstring",
		Size:    1,
		Dynamic: true,
		Kind:    KindText,
		get: func(buf *Buffer, off int, _ binary.ByteOrder) (Value, int, error) {
			if off < 0 {
				return Value{}, 0, fmt.Errorf("%w: cstring at %d", ErrOutOfBounds, off)
			}
			data := buf.Bytes()
			if off > len(data) {
				return Value{}, 0, fmt.Errorf("%w: cstring at %d, have %d bytes", ErrOutOfBounds, off, len(data))
			}
			runes := make([]rune, 0, 16)
			for i := off; i < len(data) && data[i] != 0; i++ {
				runes = append(runes, latin1.DecodeByte(data[i]))
			}
			return Text(string(runes)), len(runes) + 1, nil
		},
		set: func(buf *Buffer, off int, v Value, _ binary.ByteOrder) (int, error) {
			if off < 0 {
				return 0, fmt.Errorf("%w: cstring at %d", ErrOutOfBounds, off)
			}
			s := v.Text()
			raw := make([]byte, 0, len(s)+1)
			for _, r := range s {
				if r == 0 {
					return 0, fmt.Errorf("%w: %q", ErrEmbeddedNUL, s)
				}
				c, ok := latin1.EncodeRune(r)
				if !ok {
					return 0, fmt.Errorf("%w: %q", ErrTextEncoding, r)
				}
				raw = append(raw, c)
			}
			raw = append(raw, 0)
			if err := buf.Grow(off + len(raw)); err != nil {
				return 0, err
			}
			copy(buf.Bytes()[off:], raw)
			return len(raw), nil
		},
	}
}
