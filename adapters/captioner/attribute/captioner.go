// Package attribute implements an entity-type captioner: it describes one entity of
// the world by a subset of its shape, color and texture.
package attribute

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"goshape/adapters/captioner"
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/world"
	"goshape/internal/errors"
	"goshape/ports"
)

// Config holds the attribute captioner settings
type Config struct {
	Rates captioner.Rates
	// Kinds are the candidate attribute kinds, in caption order
	Kinds []world.AttributeKind
}

// DefaultConfig describes entities by shape and color
func DefaultConfig() Config {
	return Config{
		Rates: captioner.DefaultRates(),
		Kinds: []world.AttributeKind{world.AttributeShape, world.AttributeColor},
	}
}

// Captioner produces EntityType captions
type Captioner struct {
	captioner.Base

	kinds      []world.AttributeKind
	vocabulary map[world.AttributeKind][]string

	sampled []world.AttributeKind
}

// NewCaptioner creates an attribute captioner
func NewCaptioner(cfg Config, opts ...captioner.Option) (*Captioner, error) {
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Kinds) == 0 {
		return nil, errors.InvalidInput("attribute captioner needs at least one attribute kind")
	}
	seen := make(map[world.AttributeKind]bool, len(cfg.Kinds))
	for _, kind := range cfg.Kinds {
		if _, err := world.ParseAttributeKind(string(kind)); err != nil {
			return nil, err
		}
		if seen[kind] {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate attribute kind %q", kind))
		}
		seen[kind] = true
	}
	return &Captioner{
		Base:  captioner.NewBase(caption.ComponentEntityType, cfg.Rates, nil, opts...),
		kinds: append([]world.AttributeKind(nil), cfg.Kinds...),
	}, nil
}

// SetRealizer binds the attribute vocabulary of the realizer
func (c *Captioner) SetRealizer(realizer ports.RealizerPort) error {
	if err := c.Base.SetRealizer(realizer); err != nil {
		return err
	}
	attributes, err := realizer.Attributes()
	if err != nil {
		return errors.SetupFailed("attribute captioner", err)
	}
	vocabulary := make(map[world.AttributeKind][]string, len(c.kinds))
	for _, kind := range c.kinds {
		values := attributes[kind]
		if len(values) == 0 {
			return errors.SetupFailed(fmt.Sprintf("attribute captioner: no %s values", kind), core.ErrVocabularyMissing)
		}
		vocabulary[kind] = append([]string(nil), values...)
	}
	c.vocabulary = vocabulary
	return nil
}

// Sample picks the attribute kinds to describe. Kinds already recorded in p are
// always kept so that the caption honours them.
func (c *Captioner) Sample(mode core.Mode, p *predication.Predication) bool {
	if c.vocabulary == nil {
		return false
	}
	c.Base.Sample(mode, p)

	c.sampled = c.sampled[:0]
	for _, kind := range c.kinds {
		if p.Redundant(string(kind)) || c.Rand().Float64() < 0.5 {
			c.sampled = append(c.sampled, kind)
		}
	}
	if len(c.sampled) == 0 {
		c.sampled = append(c.sampled, c.kinds[c.Rand().Intn(len(c.kinds))])
	}
	return true
}

// Caption describes one of the entities agreeing with p
func (c *Captioner) Caption(p *predication.Predication, w *world.World) caption.Caption {
	agreeing := p.Agreeing()
	if len(agreeing) == 0 || len(c.sampled) == 0 {
		c.Logger().Debug("no entity to describe", zap.Int("agreeing", len(agreeing)))
		return nil
	}
	entity := agreeing[c.Rand().Intn(len(agreeing))]

	desc := &caption.EntityType{Attributes: make([]caption.Attribute, 0, len(c.sampled))}
	for _, kind := range c.sampled {
		desc.Attributes = append(desc.Attributes, caption.Attribute{Kind: kind, Value: entity.Attribute(kind)})
	}
	desc.ApplyToPredication(p)
	return desc
}

// Corrupt replaces one attribute value with another vocabulary value, preferring
// values that describe no entity in p
func (c *Captioner) Corrupt(capt caption.Caption, p *predication.Predication, w *world.World) bool {
	desc, ok := capt.(*caption.EntityType)
	if !ok || len(desc.Attributes) == 0 {
		return false
	}
	index := c.Rand().Intn(len(desc.Attributes))
	target := desc.Attributes[index]

	var alternatives, preferred []string
	agreeing := p.Agreeing()
	for _, value := range c.vocabulary[target.Kind] {
		if value == target.Value {
			continue
		}
		alternatives = append(alternatives, value)

		desc.Attributes[index].Value = value
		matched := false
		for _, entity := range agreeing {
			if desc.Agrees(entity) {
				matched = true
				break
			}
		}
		if !matched {
			preferred = append(preferred, value)
		}
	}
	desc.Attributes[index].Value = target.Value

	if len(preferred) > 0 {
		alternatives = preferred
	}
	if len(alternatives) == 0 {
		c.Logger().Debug("singleton vocabulary", zap.String("kind", string(target.Kind)))
		return false
	}
	desc.Attributes[index].Value = alternatives[c.Rand().Intn(len(alternatives))]
	desc.ApplyToPredication(p)
	return true
}

// Describe returns the base fields and the sampled attribute kinds
func (c *Captioner) Describe() map[string]interface{} {
	d := c.Base.Describe()
	kinds := make([]string, len(c.sampled))
	for i, kind := range c.sampled {
		kinds[i] = string(kind)
	}
	d["attributes"] = kinds
	return d
}

// GrammarSize returns the number of candidate kinds plus the entity node
func (c *Captioner) GrammarSize() int {
	return len(c.kinds) + 1
}

// GrammarSymbols returns EntityType and one symbol per vocabulary value
func (c *Captioner) GrammarSymbols() map[string]struct{} {
	symbols := c.Base.GrammarSymbols()
	symbols[caption.ComponentEntityType] = struct{}{}
	for _, kind := range c.kinds {
		for _, value := range c.vocabulary[kind] {
			symbols[caption.ComponentAttribute+"-"+string(kind)+"-"+value] = struct{}{}
		}
	}
	return symbols
}

// Kinds returns the attribute kinds picked by the last Sample
func (c *Captioner) Kinds() []world.AttributeKind {
	return append([]world.AttributeKind(nil), c.sampled...)
}

// Vocabulary returns a copy of the bound vocabulary
func (c *Captioner) Vocabulary() map[world.AttributeKind][]string {
	return maps.Clone(c.vocabulary)
}

var _ ports.WorldCaptioner = (*Captioner)(nil)
