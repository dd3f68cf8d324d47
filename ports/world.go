package ports

import (
	"goshape/domain/core"
	"goshape/domain/world"
)

// WorldGeneratorPort produces scenes to caption. The mode selects the entity
// counts of the dataset split.
type WorldGeneratorPort interface {
	Generate(mode core.Mode, rng RandomSource) (*world.World, error)
}
