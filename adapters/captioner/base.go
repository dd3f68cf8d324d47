// Package captioner holds what every world captioner shares: the pragmatical and
// logical rates, the realizer binding, the random source and the logger.
package captioner

import (
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/internal/errors"
	"goshape/ports"
)

var validate = validator.New()

// Rates are the redundancy, tautology and contradiction rates of a captioner.
// They are sampled into flags on every Sample and passed on for diagnostics.
type Rates struct {
	PragmaticalRedundancy float64 `json:"pragmatical_redundancy_rate" validate:"gte=0,lte=1"`
	PragmaticalTautology  float64 `json:"pragmatical_tautology_rate" validate:"gte=0,lte=1"`
	LogicalRedundancy     float64 `json:"logical_redundancy_rate" validate:"gte=0,lte=1"`
	LogicalTautology      float64 `json:"logical_tautology_rate" validate:"gte=0,lte=1"`
	LogicalContradiction  float64 `json:"logical_contradiction_rate" validate:"gte=0,lte=1"`
}

// DefaultRates returns the default rates
func DefaultRates() Rates {
	return Rates{
		PragmaticalRedundancy: 1.0,
		PragmaticalTautology:  0.0,
		LogicalRedundancy:     1.0,
		LogicalTautology:      0.0,
		LogicalContradiction:  0.0,
	}
}

// Validate checks that every rate is a probability
func (r Rates) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "invalid captioner rates")
	}
	return nil
}

// Option configures a captioner
type Option func(*Base)

// WithRandom sets the random source the captioner draws from
func WithRandom(rng ports.RandomSource) Option {
	return func(b *Base) {
		if rng != nil {
			b.rng = rng
		}
	}
}

// WithLogger sets the logger failures are reported to
func WithLogger(logger *zap.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Base implements the parts of ports.WorldCaptioner common to all captioners.
// Concrete captioners embed it and call through from their own methods.
type Base struct {
	name     string
	rates    Rates
	internal []ports.WorldCaptioner
	realizer ports.RealizerPort
	rng      ports.RandomSource
	logger   *zap.Logger

	// sampled flags
	pragmaticalRedundancy bool
	pragmaticalTautology  bool
	logicalRedundancy     bool
	logicalTautology      bool
	logicalContradiction  bool
}

// NewBase creates the shared captioner state. internal lists the captioners this
// one delegates to; they are bound to the same realizer.
func NewBase(name string, rates Rates, internal []ports.WorldCaptioner, opts ...Option) Base {
	b := Base{
		name:     name,
		rates:    rates,
		internal: internal,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b.logger = b.logger.With(zap.String("captioner", name))
	return b
}

// Name returns the component name of the captioner
func (b *Base) Name() string { return b.name }

// Rand returns the random source
func (b *Base) Rand() ports.RandomSource { return b.rng }

// Logger returns the captioner logger
func (b *Base) Logger() *zap.Logger { return b.logger }

// Realizer returns the bound realizer, or nil before SetRealizer
func (b *Base) Realizer() ports.RealizerPort { return b.realizer }

// SetRealizer binds the realizer and propagates it to the internal captioners
func (b *Base) SetRealizer(realizer ports.RealizerPort) error {
	if realizer == nil {
		return errors.SetupFailed(b.name, core.ErrRealizerMissing)
	}
	for _, internal := range b.internal {
		if err := internal.SetRealizer(realizer); err != nil {
			return errors.Wrapf(err, "%s: internal captioner setup failed", b.name)
		}
	}
	b.realizer = realizer
	return nil
}

// Sample draws the rate flags. A rate of exactly 0 or 1 consumes no draw.
func (b *Base) Sample(mode core.Mode, p *predication.Predication) bool {
	b.pragmaticalRedundancy = b.flag(b.rates.PragmaticalRedundancy)
	b.pragmaticalTautology = b.flag(b.rates.PragmaticalTautology)
	b.logicalRedundancy = b.flag(b.rates.LogicalRedundancy)
	b.logicalTautology = b.flag(b.rates.LogicalTautology)
	b.logicalContradiction = b.flag(b.rates.LogicalContradiction)
	return true
}

// Describe returns the component name and the sampled flags
func (b *Base) Describe() map[string]interface{} {
	return map[string]interface{}{
		"component":              b.name,
		"pragmatical_redundancy": b.pragmaticalRedundancy,
		"pragmatical_tautology":  b.pragmaticalTautology,
		"logical_redundancy":     b.logicalRedundancy,
		"logical_tautology":      b.logicalTautology,
		"logical_contradiction":  b.logicalContradiction,
	}
}

// GrammarSymbols returns the union of the internal captioners' symbols
func (b *Base) GrammarSymbols() map[string]struct{} {
	symbols := map[string]struct{}{}
	for _, internal := range b.internal {
		for symbol := range internal.GrammarSymbols() {
			symbols[symbol] = struct{}{}
		}
	}
	return symbols
}

func (b *Base) flag(rate float64) bool {
	switch {
	case rate <= 0:
		return false
	case rate >= 1:
		return true
	default:
		return b.rng.Float64() < rate
	}
}
