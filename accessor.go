package cstruct

import (
	"fmt"

	"github.com/rawbytedev/cstruct/internal/common"
	"go.uber.org/zap"
)

// Accessor reads and writes one field of a Struct. Accessors are created
// with the Struct and stay bound to it.
type Accessor struct {
	s    *Struct
	spec *FieldSpec
}

func (a *Accessor) Name() string    { return a.spec.Name }
func (a *Accessor) Spec() FieldSpec { return *a.spec }

// Get reads the field at the resolved cursor.
func (a *Accessor) Get() (Value, error) {
	s := a.s
	at, err := a.resolve()
	if err != nil {
		return Value{}, err
	}
	v, n, err := a.spec.Type.Get(s.buf, at, common.Order(s.little))
	if err != nil {
		return Value{}, fmt.Errorf("field %s: %w", a.spec.Name, err)
	}
	a.commit(at, n)
	return v, nil
}

// Set writes v (after the field's transform) and returns the Struct so
// writes can be chained. If the Struct already holds an error, Set does
// nothing; a failed write records its error for Err.
func (a *Accessor) Set(v Value) *Struct {
	s := a.s
	if s.err != nil {
		return s
	}
	if err := a.Store(v); err != nil {
		s.err = err
	}
	return s
}

// Store writes v like Set but reports the error directly and ignores any
// error recorded by earlier chained writes.
func (a *Accessor) Store(v Value) error {
	s := a.s
	at, err := a.resolve()
	if err != nil {
		return err
	}
	if t := a.spec.Transform; t != nil {
		v = t.Fn(v)
	}
	n, err := a.spec.Type.Set(s.buf, at, v, common.Order(s.little))
	if err != nil {
		return fmt.Errorf("field %s: %w", a.spec.Name, err)
	}
	a.commit(at, n)
	return nil
}

// resolve returns the absolute position of the field for this access
// without changing the Struct's cursor state.
func (a *Accessor) resolve() (int, error) {
	s, f := a.s, a.spec
	switch {
	case !f.Dynamic:
		return s.offset + f.ByteIndex, nil
	case f.Index == 0:
		return s.offset, nil
	case s.last == f.Index:
		return s.cursor - s.lastAdvance, nil
	case s.last != f.Index-1:
		prev := "<none>"
		if s.last >= 0 {
			prev = s.layout.fields[s.last].Name
		}
		s.log.Debug("sequential access rejected", zap.String("field", f.Name), zap.String("last", prev))
		return 0, fmt.Errorf("%w: %s accessed after %s", ErrSequentialAccess, f.Name, prev)
	}
	return s.cursor, nil
}

func (a *Accessor) commit(at, advance int) {
	s := a.s
	s.cursor = at + advance
	s.lastAdvance = advance
	s.last = a.spec.Index
}
