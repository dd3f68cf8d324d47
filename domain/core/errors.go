package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Setup errors
	ErrRealizerMissing       = errors.New("realizer not set")
	ErrNoAdmissibleRelations = errors.New("no admissible relations")
	ErrVocabularyMissing     = errors.New("attribute vocabulary missing")
	ErrInvalidDistribution   = errors.New("invalid incorrect-mode distribution")

	// Generation errors
	ErrGenerationExhausted = errors.New("generation attempts exhausted")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// NewSetupError wraps a setup sentinel with the captioner that failed
func NewSetupError(captioner string, err error) error {
	return fmt.Errorf("%s setup: %w", captioner, err)
}

// IsSetupError reports whether err came from captioner setup
func IsSetupError(err error) bool {
	return errors.Is(err, ErrRealizerMissing) ||
		errors.Is(err, ErrNoAdmissibleRelations) ||
		errors.Is(err, ErrVocabularyMissing) ||
		errors.Is(err, ErrInvalidDistribution)
}

// IsDeterminismError reports whether err is a reproducibility failure
func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrHashMismatch)
}
