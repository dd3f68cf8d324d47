package run

import (
	"crypto/sha256"
	"fmt"

	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/world"
)

// Sample is one generated caption together with the scene it was generated for
type Sample struct {
	ID            core.SampleID          `json:"id"`
	Index         int                    `json:"index"`
	Mode          core.Mode              `json:"mode"`
	Correct       bool                   `json:"correct"`
	Attempts      int                    `json:"attempts"`
	World         *world.World           `json:"world"`
	Caption       caption.Caption        `json:"caption"`
	IncorrectMode string                 `json:"incorrect_mode,omitempty"`
	Model         map[string]interface{} `json:"model"`
	Failures      map[string]int         `json:"failures,omitempty"` // reasons of discarded attempts
}

// content is the part of a sample covered by the batch fingerprint. IDs are
// excluded since they differ between otherwise identical runs.
type content struct {
	Index   int             `json:"index"`
	Correct bool            `json:"correct"`
	World   *world.World    `json:"world"`
	Caption caption.Caption `json:"caption"`
}

// ContentFingerprint hashes the scenes and captions of samples in index order
func ContentFingerprint(samples []Sample) (core.Hash, error) {
	return core.Fingerprint(contentsOf(samples))
}

func contentsOf(samples []Sample) []content {
	contents := make([]content, len(samples))
	for i, s := range samples {
		contents[i] = content{Index: s.Index, Correct: s.Correct, World: s.World, Caption: s.Caption}
	}
	return contents
}

// AttemptStats summarises how hard the samples of a batch were to generate
type AttemptStats struct {
	MeanAttempts   float64        `json:"mean_attempts"`
	StdDevAttempts float64        `json:"stddev_attempts"`
	MedianAttempts float64        `json:"median_attempts"`
	MaxAttempts    int            `json:"max_attempts"`
	Correct        int            `json:"correct"`
	Incorrect      int            `json:"incorrect"`
	Failures       map[string]int `json:"failures"`
	IncorrectModes map[string]int `json:"incorrect_modes"`
}

// Batch is the output of one generation run
type Batch struct {
	Manifest *Manifest    `json:"manifest"`
	Samples  []Sample     `json:"samples"`
	Stats    AttemptStats `json:"stats"`
}

// RunFingerprint ensures deterministic replay
type RunFingerprint struct {
	Realizer    string    `json:"realizer"`
	ConfigHash  core.Hash `json:"config_hash"`
	Mode        core.Mode `json:"mode"`
	Seed        int64     `json:"seed"`
	Count       int       `json:"count"`
	Fingerprint core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(realizer string, configHash core.Hash, mode core.Mode, seed int64, count int) RunFingerprint {
	return RunFingerprint{
		Realizer:    realizer,
		ConfigHash:  configHash,
		Mode:        mode,
		Seed:        seed,
		Count:       count,
		Fingerprint: computeRunFingerprint(realizer, configHash, mode, seed, count),
	}
}

// computeRunFingerprint generates deterministic hash from all determinism parameters
func computeRunFingerprint(realizer string, configHash core.Hash, mode core.Mode, seed int64, count int) core.Hash {
	data := fmt.Sprintf("realizer:%s|config:%s|mode:%s|seed:%d|count:%d",
		realizer, configHash, mode, seed, count)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
