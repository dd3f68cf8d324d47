package run

import (
	"goshape/domain/core"
	"goshape/internal/errors"
)

// Manifest describes a generation run. Two runs with the same run fingerprint
// produce the same content fingerprint.
type Manifest struct {
	RunID              core.RunID     `json:"run_id"`
	Fingerprint        RunFingerprint `json:"fingerprint"`
	ContentFingerprint core.Hash      `json:"content_fingerprint,omitempty"`
	CreatedAt          core.Timestamp `json:"created_at"`
}

// NewManifest creates a manifest for a new run
func NewManifest(runID core.RunID, fingerprint RunFingerprint) *Manifest {
	return &Manifest{
		RunID:       runID,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}
}

// Seal records the content fingerprint of the generated samples
func (m *Manifest) Seal(samples []Sample) error {
	hash, err := ContentFingerprint(samples)
	if err != nil {
		return errors.Wrap(err, "failed to fingerprint samples")
	}
	m.ContentFingerprint = hash
	return nil
}

// Verify checks samples against the sealed content fingerprint
func (m *Manifest) Verify(samples []Sample) error {
	return core.VerifyFingerprint(contentsOf(samples), m.ContentFingerprint)
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return errors.InvalidInput("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.Realizer == "" {
		return errors.InvalidInput("run manifest: realizer cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return errors.InvalidInput("run manifest: fingerprint cannot be empty")
	}
	if m.Fingerprint.Count < 0 {
		return errors.InvalidInput("run manifest: count cannot be negative")
	}
	return nil
}
