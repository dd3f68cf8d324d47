package realizer

import (
	"maps"
	"slices"

	"goshape/domain/caption"
	"goshape/domain/world"
	"goshape/internal/errors"
)

// DefaultName is the name of the built-in realizer
const DefaultName = "default"

// Static is a realizer whose vocabulary is fixed at construction
type Static struct {
	name       string
	taxonomy   caption.Taxonomy
	attributes map[world.AttributeKind][]string
}

// NewDefault creates the built-in realizer: the default relation taxonomy and the
// shape dataset attribute vocabulary
func NewDefault() *Static {
	return NewStatic(DefaultName, caption.DefaultTaxonomy(), world.DefaultVocabulary())
}

// NewStatic creates a realizer over the given vocabulary. A nil attribute map
// falls back to the default vocabulary.
func NewStatic(name string, taxonomy caption.Taxonomy, attributes map[world.AttributeKind][]string) *Static {
	if attributes == nil {
		attributes = world.DefaultVocabulary()
	}
	return &Static{
		name:       name,
		taxonomy:   cloneTaxonomy(taxonomy),
		attributes: cloneAttributes(attributes),
	}
}

// Name implements ports.RealizerPort
func (r *Static) Name() string {
	return r.name
}

// Taxonomy implements ports.RealizerPort
func (r *Static) Taxonomy() (caption.Taxonomy, error) {
	if err := r.taxonomy.Validate(); err != nil {
		return caption.Taxonomy{}, errors.TaxonomyInvalid("realizer "+r.name+" has an invalid relation taxonomy", err)
	}
	return cloneTaxonomy(r.taxonomy), nil
}

// Attributes implements ports.RealizerPort
func (r *Static) Attributes() (map[world.AttributeKind][]string, error) {
	for kind, values := range r.attributes {
		if len(values) == 0 {
			return nil, errors.TaxonomyInvalid("realizer "+r.name+" has no values for attribute "+string(kind), nil)
		}
	}
	return cloneAttributes(r.attributes), nil
}

func cloneTaxonomy(t caption.Taxonomy) caption.Taxonomy {
	relations := make(map[string][]int, len(t.Relations))
	for predtype, values := range t.Relations {
		relations[predtype] = slices.Clone(values)
	}
	return caption.Taxonomy{
		Relations: relations,
		Ternary:   slices.Clone(t.Ternary),
		Meta:      slices.Clone(t.Meta),
	}
}

func cloneAttributes(attributes map[world.AttributeKind][]string) map[world.AttributeKind][]string {
	clone := maps.Clone(attributes)
	for kind, values := range clone {
		clone[kind] = slices.Clone(values)
	}
	return clone
}
