package caption

import (
	"encoding/json"

	"goshape/domain/predication"
)

// Relation states that a referent stands in a (spatial or comparative) relation.
// Comparison is nil for binary relations.
type Relation struct {
	Predtype   string  `json:"predtype"`
	Value      int     `json:"value"`
	Reference  Caption `json:"reference"`
	Comparison Caption `json:"comparison,omitempty"`
}

// Component implements Caption
func (r *Relation) Component() string { return ComponentRelation }

// Key returns the (predtype, value) pair of the relation
func (r *Relation) Key() RelationKey {
	return RelationKey{Predtype: r.Predtype, Value: r.Value}
}

// ApplyToPredication implements Caption
func (r *Relation) ApplyToPredication(p *predication.Predication) {
	r.DeriveScopes(p)
}

// DeriveScopes re-derives the reference and comparison constraints in fresh
// sub-scopes of p, folds them into p and returns them. comp is nil when the
// relation has no comparison.
func (r *Relation) DeriveScopes(p *predication.Predication) (ref, comp *predication.Predication) {
	ref = p.SubPredication(true)
	r.Reference.ApplyToPredication(ref)
	if r.Comparison != nil {
		comp = p.SubPredication(true)
		r.Comparison.ApplyToPredication(comp)
	}
	p.ApplyRelation(r.Predtype, ref, comp)
	return ref, comp
}

// Clone implements Caption
func (r *Relation) Clone() Caption {
	return &Relation{
		Predtype:   r.Predtype,
		Value:      r.Value,
		Reference:  cloneCaption(r.Reference),
		Comparison: cloneCaption(r.Comparison),
	}
}

// MarshalJSON adds the component tag
func (r *Relation) MarshalJSON() ([]byte, error) {
	type alias Relation
	return json.Marshal(struct {
		Component string `json:"component"`
		*alias
	}{ComponentRelation, (*alias)(r)})
}
