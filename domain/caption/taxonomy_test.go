package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTaxonomyIsValid(t *testing.T) {
	assert.NoError(t, DefaultTaxonomy().Validate())
}

func TestTaxonomyValidate(t *testing.T) {
	tests := []struct {
		name     string
		taxonomy Taxonomy
		wantErr  bool
	}{
		{"empty", Taxonomy{}, true},
		{"no values", Taxonomy{Relations: map[string][]int{"x-rel": {}}}, true},
		{"zero value", Taxonomy{Relations: map[string][]int{"x-rel": {0, 1}}}, true},
		{"empty type", Taxonomy{Relations: map[string][]int{"": {1}}}, true},
		{"signed values", Taxonomy{Relations: map[string][]int{"left-right": {-1, 1}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.taxonomy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveExcludesMetaByDefault(t *testing.T) {
	keys := DefaultTaxonomy().Resolve(nil)

	assert.Len(t, keys, 12)
	for _, key := range keys {
		assert.NotEqual(t, PredtypeAttribute, key.Predtype)
		assert.NotEqual(t, PredtypeType, key.Predtype)
	}
	// lexical type order, configured value order
	assert.Equal(t, RelationKey{Predtype: PredtypeProximity, Value: -1}, keys[0])
	assert.Equal(t, RelationKey{Predtype: PredtypeProximity, Value: 1}, keys[1])
}

func TestResolveWithFilter(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	keys := taxonomy.Resolve(&Filter{Predtypes: []string{PredtypeX, PredtypeSize}, Values: []int{1}})
	assert.Equal(t, []RelationKey{
		{Predtype: PredtypeSize, Value: 1},
		{Predtype: PredtypeX, Value: 1},
	}, keys)

	// an explicit filter without a type list admits meta types too
	keys = taxonomy.Resolve(&Filter{Values: []int{-1}})
	assert.Len(t, keys, 8)
	assert.Contains(t, keys, RelationKey{Predtype: PredtypeAttribute, Value: -1})
}

func TestTernary(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	assert.True(t, taxonomy.IsTernary(PredtypeSize))
	assert.False(t, taxonomy.IsTernary(PredtypeX))
	assert.True(t, taxonomy.AnyTernary(taxonomy.Resolve(nil)))
	assert.False(t, taxonomy.AnyTernary(taxonomy.Resolve(&Filter{Predtypes: []string{PredtypeX, PredtypeY}})))
}

func TestRelationKeySymbol(t *testing.T) {
	key := RelationKey{Predtype: PredtypeX, Value: -1}

	assert.Equal(t, "Relation-x-rel--1", key.Symbol())
	assert.Equal(t, RelationKey{Predtype: PredtypeX, Value: 1}, key.Inverse())
	assert.Equal(t, "x-rel(-1)", key.String())
}
