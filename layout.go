package cstruct

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Transform rewrites a value before it is written, e.g. a unit conversion.
// Out declares the kind Fn returns so it can be checked against the field
// type when the layout is compiled.
type Transform struct {
	Out Kind
	Fn  func(Value) Value
}

// Member is one entry of a Definition: either a registry type name or an
// embedded layout, under a member name.
type Member struct {
	Type      string
	Embedded  *Layout
	Name      string
	Transform *Transform
}

// Field declares a member of the named registry type.
func Field(typ, name string) Member {
	return Member{Type: typ, Name: name}
}

// Embed declares a nested struct. Its fields are flattened into the parent
// with name as a camel-case prefix.
func Embed(l *Layout, name string) Member {
	return Member{Embedded: l, Name: name}
}

// With attaches a write transform to the member.
func (m Member) With(t Transform) Member {
	m.Transform = &t
	return m
}

// Definition is an ordered member list.
type Definition []Member

// FieldSpec is a compiled, flattened field.
type FieldSpec struct {
	Name string
	Type *Type
	// ByteIndex is the offset from the struct base. It is only meaningful
	// when Dynamic is false.
	ByteIndex int
	Transform *Transform
	Dynamic   bool
	Index     int
}

// Layout is a compiled Definition. It is immutable and may be shared by
// any number of Structs.
type Layout struct {
	fields []FieldSpec
	index  map[string]int
	size   int
	def    Definition
}

// Fields returns a copy of the flattened field table.
func (l *Layout) Fields() []FieldSpec {
	out := make([]FieldSpec, len(l.fields))
	copy(out, l.fields)
	return out
}

func (l *Layout) Field(name string) (FieldSpec, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return l.fields[i], true
}

func (l *Layout) Len() int { return len(l.fields) }

// Size is the minimum footprint: fixed fields up to and including the
// first dynamic field, which counts at its placeholder width.
func (l *Layout) Size() int { return l.size }

// Dynamic reports whether any field has a data-dependent offset.
func (l *Layout) Dynamic() bool {
	return len(l.fields) > 0 && l.fields[len(l.fields)-1].Dynamic
}

func (l *Layout) Definition() Definition { return l.def }

// Compile builds a layout using the builtin types.
func Compile(def Definition) (*Layout, error) {
	return defaultRegistry.Compile(def)
}

// Compile flattens def into a layout, resolving type names against r.
func (r *Registry) Compile(def Definition) (*Layout, error) {
	l := &Layout{index: make(map[string]int), def: def}
	c := compiler{reg: r, layout: l}
	if err := c.members(def, ""); err != nil {
		return nil, err
	}
	l.size = c.running
	Logger().Debug("layout compiled",
		zap.Int("fields", len(l.fields)),
		zap.Int("size", l.size),
		zap.Bool("dynamic", l.Dynamic()))
	return l, nil
}

type compiler struct {
	reg     *Registry
	layout  *Layout
	running int
}

func (c *compiler) members(def Definition, prefix string) error {
	for _, m := range def {
		if m.Name == "" {
			return fmt.Errorf("%w: member of type %q", ErrEmptyName, m.Type)
		}
		name := joinName(prefix, m.Name)
		if m.Embedded != nil {
			if err := c.splice(m.Embedded, name); err != nil {
				return err
			}
			continue
		}
		typ, err := c.reg.Lookup(m.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if t := m.Transform; t != nil {
			if t.Fn == nil || !typ.Accepts(t.Out) {
				return fmt.Errorf("%w: field %s returns %s, type %s", ErrTransformKind, name, t.Out, typ.Name)
			}
		}
		if err := c.emit(FieldSpec{Name: name, Type: typ, Transform: m.Transform}); err != nil {
			return err
		}
	}
	return nil
}

// splice appends the already-flattened leaves of an embedded layout,
// rebasing their offsets and continuing the parent's dynamism chain.
func (c *compiler) splice(child *Layout, prefix string) error {
	for _, f := range child.fields {
		f.Name = joinName(prefix, f.Name)
		if err := c.emit(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) emit(f FieldSpec) error {
	l := c.layout
	if _, dup := l.index[f.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
	}
	f.Index = len(l.fields)
	inherited := f.Index > 0 && l.fields[f.Index-1].Dynamic
	f.ByteIndex = c.running
	f.Dynamic = f.Type.Dynamic || inherited
	l.fields = append(l.fields, f)
	l.index[f.Name] = f.Index
	// Past the first dynamic field offsets are unknown, so nothing more
	// counts toward the minimum size.
	if !inherited {
		c.running += f.Type.Size
	}
	return nil
}

// joinName camel-joins a member name onto a prefix: "pos", "x" -> "posX".
func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	r, n := utf8.DecodeRuneInString(name)
	return prefix + string(unicode.ToUpper(r)) + name[n:]
}
