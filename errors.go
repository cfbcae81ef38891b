package cstruct

import "errors"

var (
	ErrUnknownType      = errors.New("unknown type")
	ErrDuplicateType    = errors.New("type already registered")
	ErrInvalidSize      = errors.New("invalid type size")
	ErrUnknownField     = errors.New("unknown field")
	ErrDuplicateField   = errors.New("duplicate field name")
	ErrEmptyName        = errors.New("empty field name")
	ErrTransformKind    = errors.New("transform output kind not storable by field type")
	ErrSequentialAccess = errors.New("dynamic field requires sequential access")
	ErrCapacity         = errors.New("backing store cannot grow to requested size")
	ErrOutOfBounds      = errors.New("access past end of buffer")
	ErrTypeMismatch     = errors.New("value kind not storable by field type")
	ErrTextEncoding     = errors.New("text not representable as latin-1")
	ErrEmbeddedNUL      = errors.New("text contains NUL byte")
)
