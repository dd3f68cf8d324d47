package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// v7 keeps batch output sortable by creation time
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID    ID
	SampleID ID
	WorldID  ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id SampleID) String() string { return ID(id).String() }
func (id WorldID) String() string  { return ID(id).String() }

// NewRunID creates a new run identifier
func NewRunID() RunID { return RunID(NewID()) }

// NewSampleID creates a new sample identifier
func NewSampleID() SampleID { return SampleID(NewID()) }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseSampleID parses a string into SampleID
func ParseSampleID(s string) (SampleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("sample ID cannot be empty")
	}
	return SampleID(s), nil
}

// Mode names the dataset split a caption is sampled for.
type Mode string

const (
	ModeTrain      Mode = "train"
	ModeValidation Mode = "validation"
	ModeTest       Mode = "test"
)

// ParseMode parses a dataset mode; the empty string means train.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTrain:
		return ModeTrain, nil
	case ModeValidation:
		return ModeValidation, nil
	case ModeTest:
		return ModeTest, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
