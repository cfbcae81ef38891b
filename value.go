package cstruct

import (
	"math"
	"strconv"
)

// Kind identifies which member of a Value is populated.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// numeric reports whether values of kind k can be coerced into any scalar.
func (k Kind) numeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat || k == KindBool
}

// Value is a field value. The zero Value is invalid.
// Values are comparable with ==.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value   { return Value{kind: KindUint, u: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Text(v string) Value   { return Value{kind: KindText, s: v} }

func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, u: 1}
	}
	return Value{kind: KindBool}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Int returns v as a signed integer. Unsigned values are reinterpreted,
// floats are truncated toward zero and text yields 0.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindUint, KindBool:
		return int64(v.u)
	case KindFloat:
		return int64(v.f)
	}
	return 0
}

// Uint returns v as an unsigned integer using two's-complement
// reinterpretation for negative integers.
func (v Value) Uint() uint64 {
	switch v.kind {
	case KindInt:
		return uint64(v.i)
	case KindUint, KindBool:
		return v.u
	case KindFloat:
		if v.f < 0 {
			return uint64(int64(v.f))
		}
		return uint64(v.f)
	}
	return 0
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindUint, KindBool:
		return float64(v.u)
	case KindFloat:
		return v.f
	}
	return 0
}

// Bool reports whether v is a nonzero number or a true bool.
func (v Value) Bool() bool {
	switch v.kind {
	case KindInt:
		return v.i != 0
	case KindUint, KindBool:
		return v.u != 0
	case KindFloat:
		return v.f != 0 && !math.IsNaN(v.f)
	}
	return false
}

// Text returns the string held by a text value, or "" for other kinds.
func (v Value) Text() string {
	if v.kind == KindText {
		return v.s
	}
	return ""
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.u != 0)
	case KindText:
		return strconv.Quote(v.s)
	default:
		return "<invalid>"
	}
}

// Entry pairs a field name with a value, in declaration order when
// produced by Prop.
type Entry struct {
	Name  string
	Value Value
}
