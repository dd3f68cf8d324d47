// Package caption defines the symbolic caption tree produced by captioners and the
// relation taxonomy the relation captioner samples from.
package caption

import (
	"goshape/domain/predication"
)

// Component names of caption nodes
const (
	ComponentRelation   = "Relation"
	ComponentEntityType = "EntityType"
	ComponentAttribute  = "Attribute"
)

// Caption is a node of a symbolic caption tree
type Caption interface {
	// Component returns the node kind, e.g. "Relation"
	Component() string
	// ApplyToPredication re-derives the constraints of this caption onto p
	ApplyToPredication(p *predication.Predication)
	// Clone returns a deep copy of the subtree
	Clone() Caption
}

// cloneCaption copies c, keeping a nil caption nil
func cloneCaption(c Caption) Caption {
	if c == nil {
		return nil
	}
	return c.Clone()
}
