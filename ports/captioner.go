package ports

import (
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/world"
)

// WorldCaptioner samples, builds and corrupts captions of one caption component.
//
// A captioner is stateful: Sample fixes the values that the following Caption and
// Corrupt calls use. Instances are not safe for concurrent use. Failure is reported
// by a false or nil result, after which the caller discards the predication it
// passed in and starts over.
type WorldCaptioner interface {
	// SetRealizer binds the captioner to the realizer vocabulary
	SetRealizer(realizer RealizerPort) error

	// Sample prepares the values of the next caption; mutates p
	Sample(mode core.Mode, p *predication.Predication) bool

	// Caption builds a correct caption for w, or nil; mutates p
	Caption(p *predication.Predication, w *world.World) caption.Caption

	// Corrupt turns c into an incorrect caption in place; mutates c and p
	Corrupt(c caption.Caption, p *predication.Predication, w *world.World) bool

	// Describe summarizes the sampled state for diagnostics
	Describe() map[string]interface{}

	// GrammarSize is the maximum number of symbols a caption of this captioner uses
	GrammarSize() int

	// GrammarSymbols is the set of symbols the captioner can emit
	GrammarSymbols() map[string]struct{}
}
