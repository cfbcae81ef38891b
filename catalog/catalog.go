// Package catalog compiles named struct definitions, optionally read from
// YAML or HCL documents. A member type may name a registry type or any
// struct defined earlier in the same catalog, which is then embedded.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rawbytedev/cstruct"
	"go.uber.org/zap"
)

var (
	ErrUnknownStruct    = errors.New("unknown struct")
	ErrDuplicateStruct  = errors.New("struct name already in use")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrFormat           = errors.New("malformed definition document")
)

type Catalog struct {
	reg        *cstruct.Registry
	transforms map[string]cstruct.Transform
	names      []string
	layouts    map[string]*cstruct.Layout
}

type Option func(*Catalog)

// WithRegistry resolves type names against r instead of the builtin types.
func WithRegistry(r *cstruct.Registry) Option {
	return func(c *Catalog) { c.reg = r }
}

// WithTransforms makes the named transforms available to field documents.
func WithTransforms(m map[string]cstruct.Transform) Option {
	return func(c *Catalog) { c.transforms = m }
}

func New(opts ...Option) *Catalog {
	c := &Catalog{layouts: make(map[string]*cstruct.Layout)}
	for _, o := range opts {
		o(c)
	}
	if c.reg == nil {
		c.reg = cstruct.Builtin()
	}
	return c
}

// Add compiles def under name.
func (c *Catalog) Add(name string, def cstruct.Definition) (*cstruct.Layout, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: struct name", cstruct.ErrEmptyName)
	}
	if _, ok := c.layouts[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateStruct, name)
	}
	if _, err := c.reg.Lookup(name); err == nil {
		return nil, fmt.Errorf("%w: %s is a registry type", ErrDuplicateStruct, name)
	}
	l, err := c.reg.Compile(def)
	if err != nil {
		return nil, fmt.Errorf("struct %s: %w", name, err)
	}
	c.layouts[name] = l
	c.names = append(c.names, name)
	return l, nil
}

func (c *Catalog) Layout(name string) (*cstruct.Layout, error) {
	l, ok := c.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStruct, name)
	}
	return l, nil
}

// New binds the named layout to a fresh Struct.
func (c *Catalog) New(name string, opts ...cstruct.Option) (*cstruct.Struct, error) {
	l, err := c.Layout(name)
	if err != nil {
		return nil, err
	}
	return cstruct.FromLayout(l, opts...), nil
}

// Names lists the structs in definition order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

type structDoc struct {
	Name   string     `yaml:"name"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Transform string `yaml:"transform"`
}

func (c *Catalog) addDocs(docs []structDoc) error {
	for _, sd := range docs {
		def := make(cstruct.Definition, 0, len(sd.Fields))
		for _, fd := range sd.Fields {
			m, err := c.member(fd)
			if err != nil {
				return fmt.Errorf("struct %s: %w", sd.Name, err)
			}
			def = append(def, m)
		}
		if _, err := c.Add(sd.Name, def); err != nil {
			return err
		}
	}
	cstruct.Logger().Debug("catalog loaded", zap.Strings("structs", c.names))
	return nil
}

func (c *Catalog) member(fd fieldDoc) (cstruct.Member, error) {
	var m cstruct.Member
	if l, ok := c.layouts[fd.Type]; ok {
		m = cstruct.Embed(l, fd.Name)
	} else {
		m = cstruct.Field(fd.Type, fd.Name)
	}
	if fd.Transform == "" {
		return m, nil
	}
	if m.Embedded != nil {
		return m, fmt.Errorf("%w: field %s embeds a struct", ErrFormat, fd.Name)
	}
	t, ok := c.transforms[fd.Transform]
	if !ok {
		return m, fmt.Errorf("%w: %s on field %s", ErrUnknownTransform, fd.Transform, fd.Name)
	}
	return m.With(t), nil
}

// LoadFile reads a .yaml, .yml or .hcl definition document.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(data, opts...)
	case ".hcl":
		return LoadHCL(data, path, opts...)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
}
