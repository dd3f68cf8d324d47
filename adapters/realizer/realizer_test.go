package realizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goshape/domain/caption"
	"goshape/domain/world"
	"goshape/internal/errors"
)

func TestDefaultRealizer(t *testing.T) {
	r := NewDefault()

	taxonomy, err := r.Taxonomy()
	require.NoError(t, err)
	assert.Equal(t, DefaultName, r.Name())
	assert.True(t, taxonomy.IsTernary(caption.PredtypeSize))

	attributes, err := r.Attributes()
	require.NoError(t, err)
	assert.Len(t, attributes[world.AttributeShape], 8)
}

func TestStaticReturnsCopies(t *testing.T) {
	r := NewDefault()

	taxonomy, err := r.Taxonomy()
	require.NoError(t, err)
	taxonomy.Relations[caption.PredtypeX][0] = 7

	again, err := r.Taxonomy()
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1}, again.Relations[caption.PredtypeX])
}

func TestStaticInvalidTaxonomy(t *testing.T) {
	r := NewStatic("broken", caption.Taxonomy{}, nil)

	_, err := r.Taxonomy()
	require.Error(t, err)
	assert.Equal(t, errors.CodeTaxonomyInvalid, errors.GetCode(err))
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: left-right
relations:
  left-right: [-1, 1]
attributes:
  shape: [square, circle]
  color: [red]
`)
	r, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "left-right", r.Name())

	taxonomy, err := r.Taxonomy()
	require.NoError(t, err)
	assert.Equal(t, []caption.RelationKey{
		{Predtype: "left-right", Value: -1},
		{Predtype: "left-right", Value: 1},
	}, taxonomy.Resolve(nil))
	assert.False(t, taxonomy.AnyTernary(taxonomy.Resolve(nil)))

	attributes, err := r.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []string{"square", "circle"}, attributes[world.AttributeShape])
	assert.NotContains(t, attributes, world.AttributeTexture)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "relations: [x"},
		{"no relations", "name: empty\n"},
		{"zero value", "relations:\n  x-rel: [0]\n"},
		{"unknown attribute", "relations:\n  x-rel: [1]\nattributes:\n  weight: [heavy]\n"},
		{"empty attribute", "relations:\n  x-rel: [1]\nattributes:\n  shape: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Equal(t, errors.CodeTaxonomyInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relations:\n  size-rel: [-1, 1]\nternary: [size-rel]\n"), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", r.Name())

	taxonomy, err := r.Taxonomy()
	require.NoError(t, err)
	assert.True(t, taxonomy.IsTernary("size-rel"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
