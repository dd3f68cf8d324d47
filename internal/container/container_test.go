package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goshape/adapters/captioner/relation"
	"goshape/app"
	"goshape/domain/caption"
	"goshape/internal"
	"goshape/internal/config"
	"goshape/internal/errors"
	"goshape/internal/testkit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestNewWiresDefaults(t *testing.T) {
	c, err := NewWithLogger(testConfig(t), internal.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "default", c.Realizer.Name())
	assert.NotNil(t, c.CaptionService)
	assert.NotNil(t, c.Exporter)

	captioner, err := c.NewCaptioner(testkit.NewTestKit().Rand(1))
	require.NoError(t, err)
	require.NoError(t, captioner.SetRealizer(c.Realizer))
	assert.IsType(t, &relation.Captioner{}, captioner)
	assert.Len(t, captioner.(*relation.Captioner).Relations(), 12)
}

func TestNewWithTaxonomyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: left-right
relations:
  x-rel: [-1, 1]
attributes:
  shape: [square, circle]
  color: [red, blue]
`), 0o600))

	cfg := testConfig(t)
	cfg.Taxonomy.File = path
	cfg.World.MinEntities, cfg.World.MaxEntities = 2, 4
	c, err := NewWithLogger(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "left-right", c.Realizer.Name())

	batch, err := c.CaptionService.GenerateBatch(context.Background(), app.BatchRequest{Count: 4, Mode: c.Mode(), Seed: 9})
	require.NoError(t, err)
	for _, s := range batch.Samples {
		assert.GreaterOrEqual(t, s.World.NumEntities(), 2)
		assert.LessOrEqual(t, s.World.NumEntities(), 4)
		for _, e := range s.World.Entities {
			assert.Contains(t, []string{"square", "circle"}, e.Shape)
		}
		rel := s.Caption.(*caption.Relation)
		assert.Equal(t, caption.PredtypeX, rel.Predtype)
	}
}

func TestNewRejectsUnusableFilter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Caption.RelationTypes = []string{"no-such-rel"}
	_, err := NewWithLogger(cfg, internal.NewNopLogger())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSetupFailed, errors.GetCode(err))
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
