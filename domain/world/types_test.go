package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityAttribute(t *testing.T) {
	e := Entity{Shape: "circle", Color: "red", Texture: "solid"}

	assert.Equal(t, "circle", e.Attribute(AttributeShape))
	assert.Equal(t, "red", e.Attribute(AttributeColor))
	assert.Equal(t, "solid", e.Attribute(AttributeTexture))
	assert.Equal(t, "", e.Attribute(AttributeKind("size")))
}

func TestParseAttributeKind(t *testing.T) {
	kind, err := ParseAttributeKind("color")
	require.NoError(t, err)
	assert.Equal(t, AttributeColor, kind)

	_, err = ParseAttributeKind("weight")
	assert.Error(t, err)
}

func TestDefaultVocabularyIsCopied(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab[AttributeShape][0] = "blob"

	assert.Equal(t, "square", DefaultShapes[0])
	assert.Len(t, DefaultVocabulary()[AttributeColor], 7)
}

func TestPointDistance(t *testing.T) {
	assert.InDelta(t, 0.5, Point{X: 0.1, Y: 0.1}.Distance(Point{X: 0.4, Y: 0.5}), 1e-9)
}
