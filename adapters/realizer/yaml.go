package realizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"goshape/domain/caption"
	"goshape/domain/world"
	"goshape/internal/errors"
)

// fileFormat is the on-disk realizer description:
//
//	name: left-right-only
//	relations:
//	  x-rel: [-1, 1]
//	ternary: []
//	meta: []
//	attributes:
//	  shape: [square, circle]
type fileFormat struct {
	Name       string              `yaml:"name"`
	Relations  map[string][]int    `yaml:"relations"`
	Ternary    []string            `yaml:"ternary"`
	Meta       []string            `yaml:"meta"`
	Attributes map[string][]string `yaml:"attributes"`
}

// LoadFile reads a realizer description from a YAML file
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read taxonomy file %s", path)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load taxonomy file %s", path)
	}
	return r, nil
}

// Parse decodes and validates a YAML realizer description
func Parse(data []byte) (*Static, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.TaxonomyInvalid("malformed taxonomy YAML", err)
	}

	taxonomy := caption.Taxonomy{
		Relations: f.Relations,
		Ternary:   f.Ternary,
		Meta:      f.Meta,
	}
	if err := taxonomy.Validate(); err != nil {
		return nil, errors.TaxonomyInvalid("invalid relation taxonomy", err)
	}

	var attributes map[world.AttributeKind][]string
	if len(f.Attributes) > 0 {
		attributes = make(map[world.AttributeKind][]string, len(f.Attributes))
		for name, values := range f.Attributes {
			kind, err := world.ParseAttributeKind(name)
			if err != nil {
				return nil, errors.TaxonomyInvalid("invalid attribute vocabulary", err)
			}
			if len(values) == 0 {
				return nil, errors.TaxonomyInvalid(fmt.Sprintf("attribute %s has no values", name), nil)
			}
			attributes[kind] = values
		}
	}

	name := f.Name
	if name == "" {
		name = "yaml"
	}
	return NewStatic(name, taxonomy, attributes), nil
}
