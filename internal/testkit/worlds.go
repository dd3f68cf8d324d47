package testkit

import (
	"goshape/domain/world"
)

// SmallWorld has three entities sharing shapes and colors pairwise
func SmallWorld() *world.World {
	return &world.World{
		Size:       64,
		Background: "black",
		Entities: []world.Entity{
			{ID: 0, Shape: "square", Color: "red", Texture: "solid", Center: world.Point{X: 0.2, Y: 0.3}, Size: 0.15, Shade: 0.1},
			{ID: 1, Shape: "circle", Color: "red", Texture: "solid", Center: world.Point{X: 0.7, Y: 0.4}, Size: 0.2, Shade: -0.2},
			{ID: 2, Shape: "square", Color: "blue", Texture: "solid", Center: world.Point{X: 0.5, Y: 0.8}, Size: 0.12, Shade: 0.3},
		},
	}
}

// SingleEntityWorld has one entity, so two referents can never differ
func SingleEntityWorld() *world.World {
	return &world.World{
		Size:       64,
		Background: "black",
		Entities: []world.Entity{
			{ID: 0, Shape: "triangle", Color: "green", Texture: "solid", Center: world.Point{X: 0.5, Y: 0.5}, Size: 0.2},
		},
	}
}

// GridWorld has one entity per combination of the first n shapes and colors
func GridWorld(n int) *world.World {
	w := &world.World{Size: 64, Background: "black"}
	id := 0
	for i := 0; i < n && i < len(world.DefaultShapes); i++ {
		for j := 0; j < n && j < len(world.DefaultColors); j++ {
			w.Entities = append(w.Entities, world.Entity{
				ID:      id,
				Shape:   world.DefaultShapes[i],
				Color:   world.DefaultColors[j],
				Texture: "solid",
				Center:  world.Point{X: (float64(i) + 0.5) / float64(n), Y: (float64(j) + 0.5) / float64(n)},
				Size:    0.1,
			})
			id++
		}
	}
	return w
}
