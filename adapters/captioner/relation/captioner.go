// Package relation implements the relation captioner: it samples a relation type
// and direction, delegates the reference and comparison referents to other
// captioners, and corrupts the resulting caption in one of four ways.
package relation

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"goshape/adapters/captioner"
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/world"
	"goshape/internal/errors"
	"goshape/internal/sampling"
	"goshape/ports"
)

// IncorrectMode selects how Corrupt falsifies a caption
type IncorrectMode int

const (
	// IncorrectReference corrupts the reference referent
	IncorrectReference IncorrectMode = iota
	// IncorrectComparison corrupts the comparison referent (ternary relations only)
	IncorrectComparison
	// IncorrectRelation substitutes a different relation
	IncorrectRelation
	// InverseRelation negates the relation value
	InverseRelation

	numIncorrectModes = 4
)

func (m IncorrectMode) String() string {
	switch m {
	case IncorrectReference:
		return "incorrect_reference"
	case IncorrectComparison:
		return "incorrect_comparison"
	case IncorrectRelation:
		return "incorrect_relation"
	case InverseRelation:
		return "inverse_relation"
	default:
		return fmt.Sprintf("incorrect_mode(%d)", int(m))
	}
}

// FailureReason explains why the last operation returned false or nil
type FailureReason string

const (
	FailureNone                FailureReason = ""
	FailureNotReady            FailureReason = "not_ready"
	FailureSamplingExhausted   FailureReason = "sampling_exhausted"
	FailureDegenerateReferents FailureReason = "degenerate_referents"
	FailureDelegate            FailureReason = "delegate_failed"
	FailureNoInverse           FailureReason = "no_inverse"
	FailureNoSubstitute        FailureReason = "no_substitute"
	FailureWrongCaptionType    FailureReason = "wrong_caption_type"
	FailureUnsharedAttribute   FailureReason = "unshared_attribute"
)

// DefaultMaxSampleAttempts bounds the incorrect-mode redraws in Sample
const DefaultMaxSampleAttempts = 10

// Config holds the relation captioner settings
type Config struct {
	Rates captioner.Rates
	// Relations restricts the admissible relations; nil admits every non-meta relation
	Relations *caption.Filter
	// IncorrectDistribution weighs the four incorrect modes; nil weighs them equally
	IncorrectDistribution []float64
	MaxSampleAttempts     int
}

// DefaultConfig returns the default relation captioner settings
func DefaultConfig() Config {
	return Config{
		Rates:                 captioner.DefaultRates(),
		IncorrectDistribution: []float64{1, 1, 1, 1},
		MaxSampleAttempts:     DefaultMaxSampleAttempts,
	}
}

// Captioner produces Relation captions. Sample, Caption and Corrupt must be
// called in that order on one instance; the instance is not safe for concurrent
// use.
type Captioner struct {
	captioner.Base

	reference  ports.WorldCaptioner
	comparison ports.WorldCaptioner

	filter            *caption.Filter
	cumulative        []float64
	maxSampleAttempts int

	// bound by SetRealizer
	taxonomy        caption.Taxonomy
	relations       []caption.RelationKey
	admissible      map[caption.RelationKey]struct{}
	ternaryPossible bool

	// sampled by Sample
	sampled            bool
	predtype           string
	value              int
	incorrectMode      IncorrectMode
	incorrectRelations []caption.RelationKey

	lastFailure FailureReason
}

// NewCaptioner creates a relation captioner over the given reference and
// comparison captioners
func NewCaptioner(reference, comparison ports.WorldCaptioner, cfg Config, opts ...captioner.Option) (*Captioner, error) {
	if reference == nil || comparison == nil {
		return nil, errors.InvalidInput("relation captioner needs a reference and a comparison captioner")
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}

	weights := cfg.IncorrectDistribution
	if weights == nil {
		weights = DefaultConfig().IncorrectDistribution
	}
	if len(weights) != numIncorrectModes {
		return nil, errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("%w: need %d weights, got %d", core.ErrInvalidDistribution, numIncorrectModes, len(weights)))
	}
	cumulative, err := sampling.CumulativeDistribution(weights)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%w: %v", core.ErrInvalidDistribution, err))
	}

	attempts := cfg.MaxSampleAttempts
	if attempts <= 0 {
		attempts = DefaultMaxSampleAttempts
	}

	var filter *caption.Filter
	if cfg.Relations != nil {
		filter = &caption.Filter{
			Predtypes: slices.Clone(cfg.Relations.Predtypes),
			Values:    slices.Clone(cfg.Relations.Values),
		}
	}

	return &Captioner{
		Base:              captioner.NewBase(caption.ComponentRelation, cfg.Rates, []ports.WorldCaptioner{reference, comparison}, opts...),
		reference:         reference,
		comparison:        comparison,
		filter:            filter,
		cumulative:        cumulative,
		maxSampleAttempts: attempts,
	}, nil
}

// SetRealizer binds the captioner and its delegates to realizer and resolves
// the admissible relations
func (c *Captioner) SetRealizer(realizer ports.RealizerPort) error {
	if err := c.Base.SetRealizer(realizer); err != nil {
		return err
	}
	taxonomy, err := realizer.Taxonomy()
	if err != nil {
		return errors.SetupFailed("relation captioner", err)
	}
	relations := taxonomy.Resolve(c.filter)
	if len(relations) == 0 {
		return errors.SetupFailed("relation captioner: realizer "+realizer.Name(), core.ErrNoAdmissibleRelations)
	}

	admissible := make(map[caption.RelationKey]struct{}, len(relations))
	for _, key := range relations {
		admissible[key] = struct{}{}
	}
	c.taxonomy = taxonomy
	c.relations = relations
	c.admissible = admissible
	c.ternaryPossible = taxonomy.AnyTernary(relations)
	c.sampled = false

	c.Logger().Debug("relations resolved",
		zap.String("realizer", realizer.Name()),
		zap.Int("relations", len(relations)),
		zap.Bool("ternary_possible", c.ternaryPossible))
	return nil
}

// Sample chooses the relation and the incorrect mode, and lets the delegates
// sample their referents
func (c *Captioner) Sample(mode core.Mode, p *predication.Predication) bool {
	c.lastFailure = FailureNone
	c.sampled = false
	if len(c.relations) == 0 {
		return c.fail(FailureNotReady)
	}
	if !c.Base.Sample(mode, p) {
		return false
	}

	key := c.relations[sampling.Choice(c.Rand(), len(c.relations))]
	c.predtype, c.value = key.Predtype, key.Value

	// only the mode is redrawn, the relation stays
	found := false
	for attempt := 0; attempt < c.maxSampleAttempts; attempt++ {
		c.incorrectMode = IncorrectMode(sampling.Sample(c.Rand(), c.cumulative))
		if c.incorrectMode == IncorrectComparison && !c.taxonomy.IsTernary(c.predtype) {
			continue
		}
		found = true
		break
	}
	if !found {
		return c.fail(FailureSamplingExhausted)
	}

	refPredication := p.Copy(true)
	if kind, ok := sharedKind(c.predtype); ok {
		refPredication.Apply(string(kind))
		p.Apply(string(kind))
	}

	if !c.reference.Sample(mode, refPredication) {
		return c.fail(FailureDelegate)
	}
	compPredication := p.Copy(true)
	if !c.comparison.Sample(mode, compPredication) {
		return c.fail(FailureDelegate)
	}

	c.incorrectRelations = nil
	if c.incorrectMode == IncorrectRelation {
		current := caption.RelationKey{Predtype: c.predtype, Value: c.value}
		for _, key := range c.relations {
			if key != current {
				c.incorrectRelations = append(c.incorrectRelations, key)
			}
		}
	}

	p.Apply(c.predtype)
	c.sampled = true
	return true
}

// Caption builds a relation caption for w. It returns nil if a delegate fails or
// the reference and comparison denote the same entities. For size and shade
// relations the comparison is drawn from entities sharing the reference's shape
// or color.
func (c *Captioner) Caption(p *predication.Predication, w *world.World) caption.Caption {
	c.lastFailure = FailureNone
	if !c.sampled {
		c.fail(FailureNotReady)
		return nil
	}

	refPredication := p.SubPredication(true)
	reference := c.reference.Caption(refPredication, w)
	if reference == nil {
		c.fail(FailureDelegate)
		return nil
	}

	var compPredication *predication.Predication
	var comparison caption.Caption
	if c.taxonomy.IsTernary(c.predtype) || (c.ternaryPossible && c.incorrectMode == IncorrectRelation) {
		compPredication = p.SubPredication(true)
		if kind, ok := sharedKind(c.predtype); ok {
			value, shared := refPredication.SharedValue(kind)
			if !shared {
				c.fail(FailureUnsharedAttribute)
				return nil
			}
			compPredication.Restrict(kind, value)
		}
		comparison = c.comparison.Caption(compPredication, w)
		if comparison == nil {
			c.fail(FailureDelegate)
			return nil
		}
		if refPredication.Equals(compPredication) {
			c.fail(FailureDegenerateReferents)
			return nil
		}
	}

	p.ApplyRelation(c.predtype, refPredication, compPredication)
	return &caption.Relation{
		Predtype:   c.predtype,
		Value:      c.value,
		Reference:  reference,
		Comparison: comparison,
	}
}

// Corrupt falsifies capt in place according to the sampled incorrect mode
func (c *Captioner) Corrupt(capt caption.Caption, p *predication.Predication, w *world.World) bool {
	c.lastFailure = FailureNone
	rel, ok := capt.(*caption.Relation)
	if !ok || rel == nil {
		return c.fail(FailureWrongCaptionType)
	}
	if !c.sampled {
		return c.fail(FailureNotReady)
	}

	if c.incorrectMode == IncorrectReference {
		if !c.corruptReference(rel, p, w) {
			return false
		}
	} else if c.incorrectMode == IncorrectComparison {
		if !c.corruptComparison(rel, p, w) {
			return false
		}
	}

	if c.incorrectMode == IncorrectRelation {
		if !c.substituteRelation(rel, p) {
			return false
		}
	} else if c.incorrectMode == InverseRelation {
		if !c.invertRelation(rel, p) {
			return false
		}
	}

	return true
}

// sharedKind is the attribute both referents of predtype must agree on
func sharedKind(predtype string) (world.AttributeKind, bool) {
	switch predtype {
	case caption.PredtypeSize:
		return world.AttributeShape, true
	case caption.PredtypeShade:
		return world.AttributeColor, true
	}
	return "", false
}

func (c *Captioner) corruptReference(rel *caption.Relation, p *predication.Predication, w *world.World) bool {
	refPredication := p.SubPredication(true)
	if !c.reference.Corrupt(rel.Reference, refPredication, w) {
		return c.fail(FailureDelegate)
	}

	var compPredication *predication.Predication
	if c.taxonomy.IsTernary(rel.Predtype) {
		if rel.Comparison == nil {
			return c.fail(FailureWrongCaptionType)
		}
		compPredication = p.SubPredication(true)
		rel.Comparison.ApplyToPredication(compPredication)
		if refPredication.Equals(compPredication) {
			return c.fail(FailureDegenerateReferents)
		}
	}

	p.ApplyRelation(rel.Predtype, refPredication, compPredication)
	return true
}

func (c *Captioner) corruptComparison(rel *caption.Relation, p *predication.Predication, w *world.World) bool {
	if rel.Comparison == nil {
		return c.fail(FailureWrongCaptionType)
	}
	refPredication := p.SubPredication(true)
	rel.Reference.ApplyToPredication(refPredication)

	compPredication := p.SubPredication(true)
	if !c.comparison.Corrupt(rel.Comparison, compPredication, w) {
		return c.fail(FailureDelegate)
	}
	if refPredication.Equals(compPredication) {
		return c.fail(FailureDegenerateReferents)
	}

	p.ApplyRelation(rel.Predtype, refPredication, compPredication)
	return true
}

func (c *Captioner) substituteRelation(rel *caption.Relation, p *predication.Predication) bool {
	if len(c.incorrectRelations) == 0 {
		return c.fail(FailureNoSubstitute)
	}
	key := c.incorrectRelations[sampling.Choice(c.Rand(), len(c.incorrectRelations))]
	if c.taxonomy.IsTernary(key.Predtype) && rel.Comparison == nil {
		return c.fail(FailureWrongCaptionType)
	}

	rel.Predtype, rel.Value = key.Predtype, key.Value
	if !c.taxonomy.IsTernary(rel.Predtype) {
		rel.Comparison = nil
	}
	rel.DeriveScopes(p)
	return true
}

// invertRelation leaves the negated value in place even when it is not admissible
func (c *Captioner) invertRelation(rel *caption.Relation, p *predication.Predication) bool {
	rel.Value = -rel.Value
	if _, ok := c.admissible[rel.Key()]; !ok {
		return c.fail(FailureNoInverse)
	}
	rel.DeriveScopes(p)
	return true
}

func (c *Captioner) fail(reason FailureReason) bool {
	c.lastFailure = reason
	c.Logger().Debug("relation captioner failed",
		zap.String("reason", string(reason)),
		zap.String("predtype", c.predtype),
		zap.Int("value", c.value),
		zap.Stringer("incorrect_mode", c.incorrectMode))
	return false
}

// Describe returns the sampled state of the captioner and its delegates. The
// incorrect mode is only reported once Sample has succeeded.
func (c *Captioner) Describe() map[string]interface{} {
	d := c.Base.Describe()
	maps.Copy(d, map[string]interface{}{
		"predtype":             c.predtype,
		"value":                c.value,
		"reference_captioner":  c.reference.Describe(),
		"comparison_captioner": c.comparison.Describe(),
	})
	if c.sampled {
		d["incorrect_mode"] = int(c.incorrectMode)
	}
	return d
}

// GrammarSize is the size of both delegate grammars plus the relation node
func (c *Captioner) GrammarSize() int {
	return c.reference.GrammarSize() + c.comparison.GrammarSize() + 1
}

// GrammarSymbols returns the delegates' symbols and one symbol per admissible
// relation
func (c *Captioner) GrammarSymbols() map[string]struct{} {
	symbols := c.Base.GrammarSymbols()
	for _, key := range c.relations {
		symbols[key.Symbol()] = struct{}{}
	}
	return symbols
}

// Predtype returns the sampled relation type
func (c *Captioner) Predtype() string { return c.predtype }

// Value returns the sampled relation value
func (c *Captioner) Value() int { return c.value }

// IncorrectMode returns the sampled incorrect mode
func (c *Captioner) IncorrectMode() IncorrectMode { return c.incorrectMode }

// TernaryPossible reports whether any admissible relation is ternary
func (c *Captioner) TernaryPossible() bool { return c.ternaryPossible }

// Relations returns the admissible relations in resolution order
func (c *Captioner) Relations() []caption.RelationKey {
	return slices.Clone(c.relations)
}

// IncorrectRelations returns the substitutes precomputed for IncorrectRelation
func (c *Captioner) IncorrectRelations() []caption.RelationKey {
	return slices.Clone(c.incorrectRelations)
}

// LastFailure returns why the last Sample, Caption or Corrupt failed
func (c *Captioner) LastFailure() FailureReason { return c.lastFailure }

var _ ports.WorldCaptioner = (*Captioner)(nil)
