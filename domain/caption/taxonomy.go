package caption

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Relation types of the default taxonomy
const (
	PredtypeX         = "x-rel"
	PredtypeY         = "y-rel"
	PredtypeZ         = "z-rel"
	PredtypeProximity = "proximity-rel"
	PredtypeSize      = "size-rel"
	PredtypeShade     = "shade-rel"
	PredtypeAttribute = "attribute"
	PredtypeType      = "type"
)

// RelationKey is one admissible (predtype, value) pair
type RelationKey struct {
	Predtype string `json:"predtype"`
	Value    int    `json:"value"`
}

// Inverse returns the key with the value negated
func (k RelationKey) Inverse() RelationKey {
	return RelationKey{Predtype: k.Predtype, Value: -k.Value}
}

// Symbol returns the grammar symbol of the relation
func (k RelationKey) Symbol() string {
	return ComponentRelation + "-" + k.Predtype + "-" + strconv.Itoa(k.Value)
}

// String implements fmt.Stringer
func (k RelationKey) String() string {
	return fmt.Sprintf("%s(%d)", k.Predtype, k.Value)
}

// Taxonomy maps relation types to their admissible signed values. The sign of a
// value encodes direction, e.g. left=-1 and right=+1.
type Taxonomy struct {
	Relations map[string][]int `yaml:"relations" json:"relations" validate:"required,min=1,dive,keys,required,endkeys,required,min=1,dive,ne=0"`
	// Ternary lists the types that need a comparison referent
	Ternary []string `yaml:"ternary" json:"ternary"`
	// Meta lists the types excluded unless a filter asks for them
	Meta []string `yaml:"meta" json:"meta"`
}

// Filter restricts the admissible relations. A nil field means no restriction.
type Filter struct {
	Predtypes []string `json:"predtypes,omitempty"`
	Values    []int    `json:"values,omitempty"`
}

// DefaultTaxonomy returns the relation taxonomy of the default realizer
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Relations: map[string][]int{
			PredtypeAttribute: {-1, 1},
			PredtypeType:      {-1, 1},
			PredtypeX:         {-1, 1},
			PredtypeY:         {-1, 1},
			PredtypeZ:         {-1, 1},
			PredtypeProximity: {-1, 1},
			PredtypeSize:      {-1, 1},
			PredtypeShade:     {-1, 1},
		},
		Ternary: []string{PredtypeProximity, PredtypeSize, PredtypeShade},
		Meta:    []string{PredtypeAttribute, PredtypeType},
	}
}

// Validate checks that every type has at least one non-zero value
func (t Taxonomy) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid taxonomy: %w", err)
	}
	return nil
}

// IsTernary reports whether predtype needs a comparison referent
func (t Taxonomy) IsTernary(predtype string) bool {
	return slices.Contains(t.Ternary, predtype)
}

// IsMeta reports whether predtype is a meta relation
func (t Taxonomy) IsMeta(predtype string) bool {
	return slices.Contains(t.Meta, predtype)
}

// Predtypes returns the configured relation types in lexical order
func (t Taxonomy) Predtypes() []string {
	types := make([]string, 0, len(t.Relations))
	for predtype := range t.Relations {
		types = append(types, predtype)
	}
	sort.Strings(types)
	return types
}

// Resolve returns the admissible relations as the filtered cross product of types
// and values. Without a filter, meta types are excluded; an explicit filter with a
// nil type list admits every type, meta types included.
func (t Taxonomy) Resolve(filter *Filter) []RelationKey {
	var keys []RelationKey
	for _, predtype := range t.Predtypes() {
		if filter == nil {
			if t.IsMeta(predtype) {
				continue
			}
		} else if filter.Predtypes != nil && !slices.Contains(filter.Predtypes, predtype) {
			continue
		}
		for _, value := range t.Relations[predtype] {
			if filter != nil && filter.Values != nil && !slices.Contains(filter.Values, value) {
				continue
			}
			keys = append(keys, RelationKey{Predtype: predtype, Value: value})
		}
	}
	return keys
}

// AnyTernary reports whether any of keys needs a comparison referent
func (t Taxonomy) AnyTernary(keys []RelationKey) bool {
	for _, key := range keys {
		if t.IsTernary(key.Predtype) {
			return true
		}
	}
	return false
}
