package ports

import (
	"goshape/domain/caption"
	"goshape/domain/world"
)

// RealizerPort provides the vocabulary captioners sample from
type RealizerPort interface {
	// Name identifies the realizer in logs and descriptions
	Name() string

	// Taxonomy returns the relation types with their admissible values
	Taxonomy() (caption.Taxonomy, error)

	// Attributes returns the attribute values per attribute kind
	Attributes() (map[world.AttributeKind][]string, error)
}
