// Package predication implements the constraint context threaded through caption
// generation. A Predication records which predicates a partial caption has applied
// and narrows the set of scene entities the caption may still denote.
package predication

import (
	"maps"
	"slices"
	"sort"

	"goshape/domain/world"
)

// Predication accumulates the constraints of a (partial) caption over one scene.
//
// Every view returned by Copy or SubPredication is independent: mutating it never
// changes the view it was derived from, and the two never share maps or slices.
type Predication struct {
	world    *world.World
	parent   *Predication
	agreeing []int          // sorted entity indices still consistent with the caption
	base     map[string]int // predicates inherited at derivation time
	own      map[string]int // predicates applied to this view
}

// New creates a predication over all entities of w
func New(w *world.World) *Predication {
	return &Predication{
		world:    w,
		agreeing: allEntities(w),
		base:     map[string]int{},
		own:      map[string]int{},
	}
}

// Copy returns an independent view over the same scene. The applied predicates are
// inherited; with reset the agreeing set starts again from every entity.
func (p *Predication) Copy(reset bool) *Predication {
	c := &Predication{
		world: p.world,
		base:  p.Predicates(),
		own:   map[string]int{},
	}
	if reset {
		c.agreeing = allEntities(p.world)
	} else {
		c.agreeing = slices.Clone(p.agreeing)
	}
	return c
}

// SubPredication returns a nested scope for a child caption. It behaves like Copy
// but remembers p as its parent.
func (p *Predication) SubPredication(reset bool) *Predication {
	sub := p.Copy(reset)
	sub.parent = p
	return sub
}

// Parent returns the scope p was derived from by SubPredication, or nil
func (p *Predication) Parent() *Predication {
	return p.parent
}

// World returns the backing scene
func (p *Predication) World() *world.World {
	return p.world
}

// Apply records a predicate
func (p *Predication) Apply(predicate string) {
	p.own[predicate]++
}

// ApplyAttribute records an attribute constraint and narrows the agreeing entities
// to those carrying value for kind.
func (p *Predication) ApplyAttribute(kind world.AttributeKind, value string) {
	p.Apply(string(kind))
	p.Apply(AttributeKey(kind, value))
	p.Restrict(kind, value)
}

// Restrict narrows the agreeing entities to those carrying value for kind without
// recording a predicate
func (p *Predication) Restrict(kind world.AttributeKind, value string) {
	kept := make([]int, 0, len(p.agreeing))
	for _, idx := range p.agreeing {
		if p.world.Entity(idx).Attribute(kind) == value {
			kept = append(kept, idx)
		}
	}
	p.agreeing = kept
}

// SharedValue returns the value of kind common to all agreeing entities. It
// reports false when nothing agrees or the entities differ.
func (p *Predication) SharedValue(kind world.AttributeKind) (string, bool) {
	if len(p.agreeing) == 0 {
		return "", false
	}
	value := p.world.Entity(p.agreeing[0]).Attribute(kind)
	for _, idx := range p.agreeing[1:] {
		if p.world.Entity(idx).Attribute(kind) != value {
			return "", false
		}
	}
	return value, true
}

// ApplyRelation records a relation over the given reference and comparison scopes
// and folds in the predicates they applied. comp may be nil for binary relations.
func (p *Predication) ApplyRelation(predtype string, ref, comp *Predication) {
	p.Apply(predtype)
	if ref != nil {
		for predicate, n := range ref.own {
			p.own[predicate] += n
		}
	}
	if comp != nil {
		for predicate, n := range comp.own {
			p.own[predicate] += n
		}
	}
}

// Count returns how often predicate has been applied, inherited applications included
func (p *Predication) Count(predicate string) int {
	return p.base[predicate] + p.own[predicate]
}

// Redundant reports whether predicate has already been applied
func (p *Predication) Redundant(predicate string) bool {
	return p.Count(predicate) > 0
}

// Predicates returns a copy of the full predicate multiset
func (p *Predication) Predicates() map[string]int {
	merged := maps.Clone(p.base)
	for predicate, n := range p.own {
		merged[predicate] += n
	}
	return merged
}

// NumPredicates returns the total number of applied predicates
func (p *Predication) NumPredicates() int {
	total := 0
	for _, n := range p.Predicates() {
		total += n
	}
	return total
}

// Agreeing returns the entities still consistent with the caption
func (p *Predication) Agreeing() []world.Entity {
	entities := make([]world.Entity, len(p.agreeing))
	for i, idx := range p.agreeing {
		entities[i] = p.world.Entity(idx)
	}
	return entities
}

// NumAgreeing returns the number of entities still consistent with the caption
func (p *Predication) NumAgreeing() int {
	return len(p.agreeing)
}

// Equals compares accumulated constraints: same scene, same agreeing entities and
// same predicate multiset. Two distinct views can be equal.
func (p *Predication) Equals(other *Predication) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.world != other.world {
		return false
	}
	if !slices.Equal(p.agreeing, other.agreeing) {
		return false
	}
	return maps.Equal(p.Predicates(), other.Predicates())
}

// AttributeKey is the predicate recorded for a concrete attribute value
func AttributeKey(kind world.AttributeKind, value string) string {
	return string(kind) + ":" + value
}

// SortedPredicates lists the applied predicates in lexical order
func (p *Predication) SortedPredicates() []string {
	merged := p.Predicates()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func allEntities(w *world.World) []int {
	n := w.NumEntities()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
