package attribute

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goshape/adapters/captioner"
	"goshape/adapters/realizer"
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/world"
	"goshape/internal/testkit"
)

func newCaptioner(t *testing.T, src *testkit.ScriptedSource, kinds ...world.AttributeKind) *Captioner {
	t.Helper()
	cfg := DefaultConfig()
	if len(kinds) > 0 {
		cfg.Kinds = kinds
	}
	c, err := NewCaptioner(cfg, captioner.WithRandom(src))
	require.NoError(t, err)
	require.NoError(t, c.SetRealizer(testkit.NewTestKit().Realizer()))
	return c
}

func TestNewCaptionerRejectsBadKinds(t *testing.T) {
	_, err := NewCaptioner(Config{Rates: captioner.DefaultRates()})
	assert.Error(t, err)

	_, err = NewCaptioner(Config{Rates: captioner.DefaultRates(), Kinds: []world.AttributeKind{"size"}})
	assert.Error(t, err)

	_, err = NewCaptioner(Config{Rates: captioner.DefaultRates(), Kinds: []world.AttributeKind{world.AttributeShape, world.AttributeShape}})
	assert.Error(t, err)
}

func TestSetRealizerNeedsVocabulary(t *testing.T) {
	r := realizer.NewStatic("partial", caption.DefaultTaxonomy(), map[world.AttributeKind][]string{
		world.AttributeShape: {"square"},
	})
	c, err := NewCaptioner(DefaultConfig())
	require.NoError(t, err)

	err = c.SetRealizer(r)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrVocabularyMissing))
}

func TestSampleBeforeSetupFails(t *testing.T) {
	c, err := NewCaptioner(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, c.Sample(core.ModeTrain, predication.New(testkit.SmallWorld())))
}

func TestSampleKeepsRecordedKinds(t *testing.T) {
	// both coin flips fail, yet shape is recorded in the predication
	c := newCaptioner(t, testkit.NewScriptedSource(nil, []float64{0.9}))
	p := predication.New(testkit.SmallWorld())
	p.Apply(string(world.AttributeShape))

	require.True(t, c.Sample(core.ModeTrain, p))
	assert.Equal(t, []world.AttributeKind{world.AttributeShape}, c.Kinds())
}

func TestSampleNeverEmpty(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource([]int{1}, []float64{0.9}))
	require.True(t, c.Sample(core.ModeTrain, predication.New(testkit.SmallWorld())))
	assert.Equal(t, []world.AttributeKind{world.AttributeColor}, c.Kinds())
}

func TestCaptionDescribesAgreeingEntity(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource([]int{1}, []float64{0.1}))
	w := testkit.SmallWorld()
	p := predication.New(w)
	require.True(t, c.Sample(core.ModeTrain, p))

	got := c.Caption(predication.New(w).Copy(true), w)
	require.NotNil(t, got)
	desc := got.(*caption.EntityType)
	assert.Equal(t, []caption.Attribute{
		{Kind: world.AttributeShape, Value: "circle"},
		{Kind: world.AttributeColor, Value: "red"},
	}, desc.Attributes)
}

func TestCaptionAppliesToPredication(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource([]int{0}, []float64{0.1, 0.9}))
	w := testkit.SmallWorld()
	require.True(t, c.Sample(core.ModeTrain, predication.New(w)))

	p := predication.New(w)
	got := c.Caption(p, w)
	require.NotNil(t, got)
	assert.Equal(t, 1, p.Count(string(world.AttributeShape)))
	assert.Equal(t, 2, p.NumAgreeing())
}

func TestCaptionFailsWithoutAgreeingEntity(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource([]int{0}, []float64{0.1}))
	w := testkit.SmallWorld()
	require.True(t, c.Sample(core.ModeTrain, predication.New(w)))

	p := predication.New(w)
	p.ApplyAttribute(world.AttributeColor, "yellow")
	assert.Nil(t, c.Caption(p, w))
}

func TestCorruptPrefersUnseenValue(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource([]int{0}, []float64{0.1}), world.AttributeColor)
	w := testkit.SmallWorld()
	desc := &caption.EntityType{Attributes: []caption.Attribute{{Kind: world.AttributeColor, Value: "red"}}}

	p := predication.New(w)
	require.True(t, c.Corrupt(desc, p, w))
	value, _ := desc.Value(world.AttributeColor)
	assert.NotEqual(t, "red", value)
	assert.NotEqual(t, "blue", value)
	assert.Equal(t, 0, p.NumAgreeing())
}

func TestCorruptFailsOnSingletonVocabulary(t *testing.T) {
	r := realizer.NewStatic("tiny", caption.DefaultTaxonomy(), map[world.AttributeKind][]string{
		world.AttributeShape: {"square"},
	})
	c, err := NewCaptioner(Config{Rates: captioner.DefaultRates(), Kinds: []world.AttributeKind{world.AttributeShape}},
		captioner.WithRandom(testkit.NewScriptedSource([]int{0}, nil)))
	require.NoError(t, err)
	require.NoError(t, c.SetRealizer(r))

	desc := &caption.EntityType{Attributes: []caption.Attribute{{Kind: world.AttributeShape, Value: "square"}}}
	assert.False(t, c.Corrupt(desc, predication.New(testkit.SmallWorld()), testkit.SmallWorld()))
	assert.False(t, c.Corrupt(&caption.Relation{}, predication.New(testkit.SmallWorld()), testkit.SmallWorld()))
}

func TestGrammar(t *testing.T) {
	c := newCaptioner(t, testkit.NewScriptedSource(nil, nil))
	assert.Equal(t, 3, c.GrammarSize())

	symbols := c.GrammarSymbols()
	assert.Contains(t, symbols, "EntityType")
	assert.Contains(t, symbols, "Attribute-shape-square")
	assert.Contains(t, symbols, "Attribute-color-red")
	assert.NotContains(t, symbols, "Attribute-texture-solid")
	assert.Len(t, symbols, 1+len(world.DefaultShapes)+len(world.DefaultColors))
}
