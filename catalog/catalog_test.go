package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rawbytedev/cstruct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
structs:
  - name: vec2
    fields:
      - {name: x, type: int16}
      - {name: y, type: int16}
  - name: packet
    fields:
      - {name: kind, type: uint8}
      - {name: pos, type: vec2}
      - {name: temp, type: uint16, transform: centi}
      - {name: label, type: cstring}
`

const hclDoc = `
struct "vec2" {
  field "x" { type = "int16" }
  field "y" { type = "int16" }
}

struct "packet" {
  field "kind"  { type = "uint8" }
  field "pos"   { type = "vec2" }
  field "temp" {
    type      = "uint16"
    transform = "centi"
  }
  field "label" { type = "cstring" }
}
`

var transforms = map[string]cstruct.Transform{
	"centi": {Out: cstruct.KindUint, Fn: func(v cstruct.Value) cstruct.Value {
		return cstruct.Uint(uint64(v.Float() * 100))
	}},
}

func checkPacket(t *testing.T, c *Catalog) {
	t.Helper()
	assert.Equal(t, []string{"vec2", "packet"}, c.Names())

	l, err := c.Layout("packet")
	require.NoError(t, err)
	var names []string
	for _, f := range l.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"kind", "posX", "posY", "temp", "label"}, names)
	assert.Equal(t, 8, l.Size())

	s, err := c.New("packet")
	require.NoError(t, err)
	s.Set("kind", cstruct.Uint(1)).Set("posX", cstruct.Int(-2)).Set("posY", cstruct.Int(3)).
		Set("temp", cstruct.Float(21.5)).Set("label", cstruct.Text("sensor"))
	require.NoError(t, s.Err())

	m, err := s.PropMap()
	require.NoError(t, err)
	assert.Equal(t, cstruct.Uint(2150), m["temp"])
	assert.Equal(t, cstruct.Int(-2), m["posX"])
	assert.Equal(t, cstruct.Text("sensor"), m["label"])
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML([]byte(yamlDoc), WithTransforms(transforms))
	require.NoError(t, err)
	checkPacket(t, c)
}

func TestLoadHCL(t *testing.T) {
	c, err := LoadHCL([]byte(hclDoc), "packet.hcl", WithTransforms(transforms))
	require.NoError(t, err)
	checkPacket(t, c)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"defs.yaml": yamlDoc, "defs.hcl": hclDoc} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		c, err := LoadFile(path, WithTransforms(transforms))
		require.NoError(t, err, name)
		checkPacket(t, c)
	}

	path := filepath.Join(dir, "defs.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrFormat)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadYAML([]byte(yamlDoc))
	require.ErrorIs(t, err, ErrUnknownTransform)

	_, err = LoadYAML([]byte("structs: [1, 2"))
	require.ErrorIs(t, err, ErrFormat)

	_, err = LoadHCL([]byte(`struct "a" { field "x" {} }`), "bad.hcl")
	require.ErrorIs(t, err, ErrFormat)

	_, err = LoadYAML([]byte("structs:\n  - name: a\n    fields:\n      - {name: x, type: vec3}\n"))
	require.ErrorIs(t, err, cstruct.ErrUnknownType)

	_, err = LoadYAML([]byte("structs:\n  - name: a\n    fields: []\n  - name: a\n    fields: []\n"))
	require.ErrorIs(t, err, ErrDuplicateStruct)

	_, err = LoadYAML([]byte("structs:\n  - name: uint8\n    fields: []\n"))
	require.ErrorIs(t, err, ErrDuplicateStruct)
}

func TestCatalogLookups(t *testing.T) {
	c := New()
	_, err := c.Layout("missing")
	require.ErrorIs(t, err, ErrUnknownStruct)
	_, err = c.New("missing")
	require.ErrorIs(t, err, ErrUnknownStruct)

	_, err = c.Add("hdr", cstruct.Definition{cstruct.Field("uint32", "magic")})
	require.NoError(t, err)
	s, err := c.New("hdr", cstruct.WithBigEndian())
	require.NoError(t, err)
	require.NoError(t, s.Set("magic", cstruct.Uint(0xCAFEBABE)).Err())
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, s.View())
}
