package world

import (
	"fmt"
	"math"
)

// AttributeKind names an entity attribute a caption can constrain on
type AttributeKind string

const (
	AttributeShape   AttributeKind = "shape"
	AttributeColor   AttributeKind = "color"
	AttributeTexture AttributeKind = "texture"
)

// AttributeKinds lists every attribute kind in canonical order
var AttributeKinds = []AttributeKind{AttributeShape, AttributeColor, AttributeTexture}

// ParseAttributeKind parses an attribute kind name
func ParseAttributeKind(s string) (AttributeKind, error) {
	for _, kind := range AttributeKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown attribute kind %q", s)
}

// Default attribute vocabulary of the shape dataset
var (
	DefaultShapes   = []string{"square", "rectangle", "triangle", "pentagon", "cross", "circle", "semicircle", "ellipse"}
	DefaultColors   = []string{"red", "green", "blue", "yellow", "magenta", "cyan", "gray"}
	DefaultTextures = []string{"solid"}
)

// DefaultVocabulary returns a fresh copy of the default attribute vocabulary
func DefaultVocabulary() map[AttributeKind][]string {
	return map[AttributeKind][]string{
		AttributeShape:   append([]string(nil), DefaultShapes...),
		AttributeColor:   append([]string(nil), DefaultColors...),
		AttributeTexture: append([]string(nil), DefaultTextures...),
	}
}

// Point is a position in unit world coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance to other
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Entity is a single placed shape in a scene
type Entity struct {
	ID      int     `json:"id"`
	Shape   string  `json:"shape"`
	Color   string  `json:"color"`
	Texture string  `json:"texture"`
	Center  Point   `json:"center"`
	Size    float64 `json:"size"`
	Shade   float64 `json:"shade"`
}

// Attribute returns the entity's value for the given attribute kind
func (e Entity) Attribute(kind AttributeKind) string {
	switch kind {
	case AttributeShape:
		return e.Shape
	case AttributeColor:
		return e.Color
	case AttributeTexture:
		return e.Texture
	default:
		return ""
	}
}

// World is an immutable scene. Captioners read it and never modify it.
type World struct {
	Size       int      `json:"size"`
	Background string   `json:"background"`
	Entities   []Entity `json:"entities"`
}

// NumEntities returns the number of entities in the scene
func (w *World) NumEntities() int {
	if w == nil {
		return 0
	}
	return len(w.Entities)
}

// Entity returns the entity at index i
func (w *World) Entity(i int) Entity {
	return w.Entities[i]
}
