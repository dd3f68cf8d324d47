package caption

import (
	"encoding/json"

	"goshape/domain/predication"
	"goshape/domain/world"
)

// Attribute is a single attribute constraint, e.g. color=red
type Attribute struct {
	Kind  world.AttributeKind `json:"kind"`
	Value string              `json:"value"`
}

// EntityType describes an entity by a conjunction of attributes
type EntityType struct {
	Attributes []Attribute `json:"attributes"`
}

// Component implements Caption
func (e *EntityType) Component() string { return ComponentEntityType }

// ApplyToPredication implements Caption
func (e *EntityType) ApplyToPredication(p *predication.Predication) {
	for _, attr := range e.Attributes {
		p.ApplyAttribute(attr.Kind, attr.Value)
	}
}

// Clone implements Caption
func (e *EntityType) Clone() Caption {
	return &EntityType{Attributes: append([]Attribute(nil), e.Attributes...)}
}

// Agrees reports whether entity carries every attribute of the description
func (e *EntityType) Agrees(entity world.Entity) bool {
	for _, attr := range e.Attributes {
		if entity.Attribute(attr.Kind) != attr.Value {
			return false
		}
	}
	return true
}

// Value returns the described value for kind, if the description mentions it
func (e *EntityType) Value(kind world.AttributeKind) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Kind == kind {
			return attr.Value, true
		}
	}
	return "", false
}

// MarshalJSON adds the component tag
func (e *EntityType) MarshalJSON() ([]byte, error) {
	type alias EntityType
	return json.Marshal(struct {
		Component string `json:"component"`
		*alias
	}{ComponentEntityType, (*alias)(e)})
}
