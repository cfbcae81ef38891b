// Package cstruct reads and writes C-like structs directly in a byte buffer.
//
// A Definition lists typed members in order. It compiles into a Layout that
// assigns each flattened field an offset; a Struct binds a Layout to a
// growable buffer, a base offset and a byte order:
//
//	s, err := cstruct.New(cstruct.Definition{
//		cstruct.Field("uint8", "kind"),
//		cstruct.Field("cstring", "label"),
//		cstruct.Field("uint16", "value"),
//	})
//	s.Set("kind", cstruct.Uint(1)).Set("label", cstruct.Text("hi")).Set("value", cstruct.Uint(300))
//
// Fields after a cstring have data-dependent offsets and must be accessed
// left to right.
package cstruct

import (
	"fmt"

	"go.uber.org/zap"
)

type config struct {
	reg    *Registry
	little bool
	offset int
	view   []byte
	max    int
	log    *zap.Logger
}

type Option func(*config)

// WithRegistry resolves definition type names against r instead of the
// builtin types.
func WithRegistry(r *Registry) Option { return func(c *config) { c.reg = r } }

func WithBigEndian() Option { return func(c *config) { c.little = false } }

func WithOffset(n int) Option { return func(c *config) { c.offset = n } }

// WithView uses b as the backing store instead of allocating one.
func WithView(b []byte) Option { return func(c *config) { c.view = b } }

// WithMaxCapacity bounds how far the backing store may grow.
func WithMaxCapacity(n int) Option { return func(c *config) { c.max = n } }

func WithLogger(l *zap.Logger) Option { return func(c *config) { c.log = l } }

func newConfig(opts []Option) config {
	c := config{reg: defaultRegistry, little: true}
	for _, o := range opts {
		o(&c)
	}
	if c.log == nil {
		c.log = Logger()
	}
	return c
}

// Struct is a layout bound to a byte buffer. A Struct carries cursor state
// between accesses and must not be used from several goroutines at once.
type Struct struct {
	layout    *Layout
	accessors []Accessor
	buf       *Buffer
	offset    int
	little    bool
	log       *zap.Logger
	err       error

	cursor      int
	last        int
	lastAdvance int
}

// New compiles def and returns a little-endian Struct at offset 0 with a
// buffer of the layout's minimum size.
func New(def Definition, opts ...Option) (*Struct, error) {
	c := newConfig(opts)
	l, err := c.reg.Compile(def)
	if err != nil {
		return nil, err
	}
	return newStruct(l, c), nil
}

// FromLayout binds an already compiled layout.
func FromLayout(l *Layout, opts ...Option) *Struct {
	return newStruct(l, newConfig(opts))
}

func newStruct(l *Layout, c config) *Struct {
	s := &Struct{
		layout: l,
		offset: c.offset,
		little: c.little,
		log:    c.log,
		last:   -1,
	}
	if c.view != nil {
		s.buf = WrapBuffer(c.view)
	} else {
		s.buf = NewBuffer(c.offset + l.size)
	}
	s.buf.SetMax(c.max)
	s.buf.log = s.log
	s.bind()
	s.cursor = s.offset
	return s
}

func (s *Struct) bind() {
	s.accessors = make([]Accessor, len(s.layout.fields))
	for i := range s.layout.fields {
		s.accessors[i] = Accessor{s: s, spec: &s.layout.fields[i]}
	}
}

func (s *Struct) Layout() *Layout { return s.layout }

// Field returns the accessor for a flattened field name.
func (s *Struct) Field(name string) (*Accessor, error) {
	i, ok := s.layout.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return &s.accessors[i], nil
}

// Accessor returns the accessor for the i-th flattened field. Like a slice
// index it panics when i is outside [0, Layout().Len()).
func (s *Struct) Accessor(i int) *Accessor { return &s.accessors[i] }

func (s *Struct) Get(name string) (Value, error) {
	a, err := s.Field(name)
	if err != nil {
		return Value{}, err
	}
	return a.Get()
}

// Set writes one field; see Accessor.Set for the chaining error rules.
func (s *Struct) Set(name string, v Value) *Struct {
	if s.err != nil {
		return s
	}
	a, err := s.Field(name)
	if err != nil {
		s.err = err
		return s
	}
	return a.Set(v)
}

// Err returns the first error recorded by a chained write.
func (s *Struct) Err() error { return s.err }

func (s *Struct) ClearErr() { s.err = nil }

// Prop reads every field left to right.
func (s *Struct) Prop() ([]Entry, error) {
	out := make([]Entry, len(s.accessors))
	for i := range s.accessors {
		a := &s.accessors[i]
		v, err := a.Get()
		if err != nil {
			return nil, err
		}
		out[i] = Entry{Name: a.Name(), Value: v}
	}
	return out, nil
}

// PropMap is Prop keyed by field name.
func (s *Struct) PropMap() (map[string]Value, error) {
	entries, err := s.Prop()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Value
	}
	return m, nil
}

// SetProp writes entries in the order given.
func (s *Struct) SetProp(entries ...Entry) *Struct {
	for _, e := range entries {
		s.Set(e.Name, e.Value)
	}
	return s
}

// Assign writes the fields present in m in declaration order. Unknown
// names are rejected before anything is written.
func (s *Struct) Assign(m map[string]Value) *Struct {
	if s.err != nil {
		return s
	}
	for name := range m {
		if _, ok := s.layout.index[name]; !ok {
			s.err = fmt.Errorf("%w: %q", ErrUnknownField, name)
			return s
		}
	}
	for i := range s.accessors {
		a := &s.accessors[i]
		if v, ok := m[a.Name()]; ok {
			a.Set(v)
		}
	}
	return s
}

// View returns the backing bytes, including any growth slack.
func (s *Struct) View() []byte { return s.buf.Bytes() }

// SetView replaces the backing store with b and restarts cursor state.
func (s *Struct) SetView(b []byte) *Struct {
	buf := WrapBuffer(b)
	buf.max = s.buf.max
	buf.log = s.log
	s.buf = buf
	s.Reset()
	return s
}

// Size is the current length of the backing store.
func (s *Struct) Size() int { return s.buf.Len() }

func (s *Struct) Offset() int { return s.offset }

// SetOffset moves the base offset all fields are addressed from and
// restarts cursor state.
func (s *Struct) SetOffset(n int) *Struct {
	s.offset = n
	s.Reset()
	return s
}

func (s *Struct) LittleEndian() bool { return s.little }

func (s *Struct) SetLittleEndian(little bool) *Struct {
	s.little = little
	return s
}

// Reset forgets the last accessed field so dynamic access starts over.
func (s *Struct) Reset() {
	s.cursor = s.offset
	s.last = -1
	s.lastAdvance = 0
}

// Clone returns an independent Struct with a copy of the buffer and the
// same layout, offset, byte order and cursor state.
func (s *Struct) Clone() *Struct {
	data := make([]byte, s.buf.Len())
	copy(data, s.buf.Bytes())
	c := *s
	c.buf = WrapBuffer(data)
	c.buf.max = s.buf.max
	c.buf.log = s.log
	c.bind()
	return &c
}
