// Package world generates random scenes of non-overlapping shapes.
package world

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"goshape/domain/core"
	"goshape/domain/world"
	"goshape/internal/errors"
	"goshape/ports"
)

var validate = validator.New()

// Config configures the random attributes generator
type Config struct {
	Size       int    `json:"world_size" validate:"gt=0"`
	Background string `json:"world_color" validate:"required"`

	Shapes   []string `json:"shapes" validate:"required,min=1,dive,required"`
	Colors   []string `json:"colors" validate:"required,min=1,dive,required"`
	Textures []string `json:"textures" validate:"required,min=1,dive,required"`

	MinSize            float64 `json:"min_size" validate:"gt=0,lt=1"`
	MaxSize            float64 `json:"max_size" validate:"gtefield=MinSize,lt=1"`
	ShadeRange         float64 `json:"shade_range" validate:"gte=0,lte=1"`
	CollisionTolerance float64 `json:"collision_tolerance" validate:"gte=0,lt=1"`

	// EntityCounts are used for modes without their own counts
	EntityCounts []int                `json:"entity_counts" validate:"required,min=1,dive,gt=0"`
	ModeCounts   map[core.Mode][]int `json:"mode_counts,omitempty" validate:"dive,min=1,dive,gt=0"`

	MaxPlacementAttempts int `json:"max_placement_attempts" validate:"gt=0"`
}

// DefaultConfig mirrors the shape dataset defaults: training, validation and test
// scenes use disjoint entity counts
func DefaultConfig() Config {
	return Config{
		Size:               64,
		Background:         "black",
		Shapes:             slices.Clone(world.DefaultShapes),
		Colors:             slices.Clone(world.DefaultColors),
		Textures:           slices.Clone(world.DefaultTextures),
		MinSize:            0.1,
		MaxSize:            0.25,
		ShadeRange:         0.4,
		CollisionTolerance: 0.25,
		EntityCounts:       []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		ModeCounts: map[core.Mode][]int{
			core.ModeTrain:      {1, 2, 4, 6, 7, 9, 11, 12, 14},
			core.ModeValidation: {3, 8, 13},
			core.ModeTest:       {5, 10, 15},
		},
		MaxPlacementAttempts: 100,
	}
}

// CountRange returns the counts lo..hi inclusive
func CountRange(lo, hi int) []int {
	var counts []int
	for n := lo; n <= hi; n++ {
		counts = append(counts, n)
	}
	return counts
}

// RandomGenerator places entities with uniformly drawn attributes
type RandomGenerator struct {
	config Config
}

// NewRandomGenerator creates a generator after validating cfg
func NewRandomGenerator(cfg Config) (*RandomGenerator, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid world generator config")
	}
	return &RandomGenerator{config: cfg}, nil
}

// Generate implements ports.WorldGeneratorPort
func (g *RandomGenerator) Generate(mode core.Mode, rng ports.RandomSource) (*world.World, error) {
	counts := g.config.EntityCounts
	if modeCounts, ok := g.config.ModeCounts[mode]; ok {
		counts = modeCounts
	}
	n := counts[rng.Intn(len(counts))]

	w := &world.World{
		Size:       g.config.Size,
		Background: g.config.Background,
		Entities:   make([]world.Entity, 0, n),
	}
	for i := 0; i < n; i++ {
		entity, ok := g.place(w, rng)
		if !ok {
			return nil, errors.GenerationExhausted(
				fmt.Sprintf("could not place entity %d of %d after %d attempts", i+1, n, g.config.MaxPlacementAttempts), nil)
		}
		entity.ID = i
		w.Entities = append(w.Entities, entity)
	}
	return w, nil
}

func (g *RandomGenerator) place(w *world.World, rng ports.RandomSource) (world.Entity, bool) {
	for attempt := 0; attempt < g.config.MaxPlacementAttempts; attempt++ {
		size := g.config.MinSize + rng.Float64()*(g.config.MaxSize-g.config.MinSize)
		center := world.Point{
			X: size/2 + rng.Float64()*(1-size),
			Y: size/2 + rng.Float64()*(1-size),
		}
		if g.collides(w, center, size) {
			continue
		}
		return world.Entity{
			Shape:   g.config.Shapes[rng.Intn(len(g.config.Shapes))],
			Color:   g.config.Colors[rng.Intn(len(g.config.Colors))],
			Texture: g.config.Textures[rng.Intn(len(g.config.Textures))],
			Center:  center,
			Size:    size,
			Shade:   (2*rng.Float64() - 1) * g.config.ShadeRange,
		}, true
	}
	return world.Entity{}, false
}

// collides reports whether an entity at center overlaps a placed one by more
// than the collision tolerance allows
func (g *RandomGenerator) collides(w *world.World, center world.Point, size float64) bool {
	for _, other := range w.Entities {
		minDistance := (size + other.Size) / 2 * (1 - g.config.CollisionTolerance)
		if center.Distance(other.Center) < minDistance {
			return true
		}
	}
	return false
}

var _ ports.WorldGeneratorPort = (*RandomGenerator)(nil)
