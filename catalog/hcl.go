package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type hclFile struct {
	Structs []*hclStruct `hcl:"struct,block"`
}

type hclStruct struct {
	Name   string      `hcl:"name,label"`
	Fields []*hclField `hcl:"field,block"`
}

type hclField struct {
	Name      string `hcl:"name,label"`
	Type      string `hcl:"type"`
	Transform string `hcl:"transform,optional"`
}

// LoadHCL builds a catalog from a document of the form
//
//	struct "vec2" {
//	  field "x" { type = "int16" }
//	  field "y" { type = "int16" }
//	}
//
// filename is only used in diagnostics.
func LoadHCL(data []byte, filename string, opts ...Option) (*Catalog, error) {
	f, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrFormat, filename, diags)
	}
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrFormat, filename, diags)
	}

	docs := make([]structDoc, 0, len(parsed.Structs))
	for _, s := range parsed.Structs {
		sd := structDoc{Name: s.Name}
		for _, fd := range s.Fields {
			sd.Fields = append(sd.Fields, fieldDoc{Name: fd.Name, Type: fd.Type, Transform: fd.Transform})
		}
		docs = append(docs, sd)
	}
	c := New(opts...)
	if err := c.addDocs(docs); err != nil {
		return nil, err
	}
	return c, nil
}
