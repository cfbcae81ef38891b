package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadYAML builds a catalog from a document of the form
//
//	structs:
//	  - name: vec2
//	    fields:
//	      - {name: x, type: int16}
//	      - {name: y, type: int16}
func LoadYAML(data []byte, opts ...Option) (*Catalog, error) {
	var doc struct {
		Structs []structDoc `yaml:"structs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	c := New(opts...)
	if err := c.addDocs(doc.Structs); err != nil {
		return nil, err
	}
	return c, nil
}
