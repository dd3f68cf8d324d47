package app

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"goshape/adapters/captioner"
	"goshape/adapters/captioner/attribute"
	"goshape/adapters/captioner/relation"
	worldgen "goshape/adapters/world"
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/run"
	"goshape/internal/errors"
	"goshape/internal/testkit"
	"goshape/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func relationFactory(rng ports.RandomSource) (ports.WorldCaptioner, error) {
	ref, err := attribute.NewCaptioner(attribute.DefaultConfig(), captioner.WithRandom(rng))
	if err != nil {
		return nil, err
	}
	comp, err := attribute.NewCaptioner(attribute.DefaultConfig(), captioner.WithRandom(rng))
	if err != nil {
		return nil, err
	}
	return relation.NewCaptioner(ref, comp, relation.DefaultConfig(), captioner.WithRandom(rng))
}

func newService(t *testing.T, factory CaptionerFactory, workers int) *CaptionService {
	t.Helper()
	kit := testkit.NewTestKit()
	worlds, err := worldgen.NewRandomGenerator(worldgen.DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultServiceConfig()
	cfg.Workers = workers
	cfg.ConfigHash = core.Hash("test")
	svc, err := NewCaptionService(factory, kit.Realizer(), worlds, kit.RNGAdapter(), cfg, nil)
	require.NoError(t, err)
	return svc
}

// content strips the per-run identifiers from samples
func content(samples []run.Sample) []run.Sample {
	out := make([]run.Sample, len(samples))
	for i, s := range samples {
		s.ID = ""
		out[i] = s
	}
	return out
}

func TestNewCaptionServiceValidates(t *testing.T) {
	kit := testkit.NewTestKit()
	worlds, err := worldgen.NewRandomGenerator(worldgen.DefaultConfig())
	require.NoError(t, err)

	_, err = NewCaptionService(nil, kit.Realizer(), worlds, kit.RNGAdapter(), DefaultServiceConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultServiceConfig()
	cfg.Workers = 0
	_, err = NewCaptionService(relationFactory, kit.Realizer(), worlds, kit.RNGAdapter(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestGenerateSample(t *testing.T) {
	svc := newService(t, relationFactory, 1)

	correct, err := svc.GenerateSample(context.Background(), SampleRequest{Mode: core.ModeTrain, Correct: true, Seed: 5})
	require.NoError(t, err)
	assert.True(t, correct.Correct)
	assert.Empty(t, correct.IncorrectMode)
	assert.GreaterOrEqual(t, correct.Attempts, 1)
	require.IsType(t, &caption.Relation{}, correct.Caption)
	assert.Equal(t, caption.ComponentRelation, correct.Model["component"])

	incorrect, err := svc.GenerateSample(context.Background(), SampleRequest{Mode: core.ModeTrain, Correct: false, Seed: 5})
	require.NoError(t, err)
	assert.False(t, incorrect.Correct)
	assert.Contains(t, []string{
		relation.IncorrectReference.String(),
		relation.IncorrectComparison.String(),
		relation.IncorrectRelation.String(),
		relation.InverseRelation.String(),
	}, incorrect.IncorrectMode)
}

func TestGenerateSampleIsReproducible(t *testing.T) {
	svc := newService(t, relationFactory, 1)
	req := SampleRequest{Mode: core.ModeValidation, Correct: false, Seed: 99}

	a, err := svc.GenerateSample(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.GenerateSample(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, cmp.Diff(content([]run.Sample{*a}), content([]run.Sample{*b})))
}

func TestGenerateSampleExhaustsAttempts(t *testing.T) {
	failing := func(rng ports.RandomSource) (ports.WorldCaptioner, error) {
		m := &testkit.MockCaptioner{}
		m.On("SetRealizer", mock.Anything).Return(nil)
		m.On("Sample", mock.Anything, mock.Anything).Return(false)
		return m, nil
	}
	svc := newService(t, failing, 1)

	_, err := svc.GenerateSample(context.Background(), SampleRequest{Mode: core.ModeTrain, Correct: true})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrGenerationExhausted))
	assert.Equal(t, errors.CodeGenerationExhausted, errors.GetCode(err))
	assert.Contains(t, err.Error(), "sample_failed")
}

func TestGenerateSampleRecordsFailureReasons(t *testing.T) {
	svc := newService(t, relationFactory, 1)

	for seed := int64(0); seed < 20; seed++ {
		sample, err := svc.GenerateSample(context.Background(), SampleRequest{Mode: core.ModeTrain, Correct: false, Seed: seed})
		require.NoError(t, err)
		for reason := range sample.Failures {
			assert.NotEmpty(t, reason)
			assert.NotEqual(t, "sample_failed", reason, "relation failures carry their reason")
		}
	}
}

func TestGenerateSampleHonoursCancellation(t *testing.T) {
	svc := newService(t, relationFactory, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateSample(ctx, SampleRequest{Mode: core.ModeTrain, Correct: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBatchIsDeterministic(t *testing.T) {
	req := BatchRequest{Count: 12, Mode: core.ModeTrain, Seed: 42}

	serial, err := newService(t, relationFactory, 1).GenerateBatch(context.Background(), req)
	require.NoError(t, err)
	parallel, err := newService(t, relationFactory, 6).GenerateBatch(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, serial.Manifest.RunID, parallel.Manifest.RunID)
	assert.Equal(t, serial.Manifest.Fingerprint, parallel.Manifest.Fingerprint)
	assert.Equal(t, serial.Manifest.ContentFingerprint, parallel.Manifest.ContentFingerprint)
	assert.Empty(t, cmp.Diff(content(serial.Samples), content(parallel.Samples)))
	require.NoError(t, serial.Manifest.Verify(parallel.Samples))

	other, err := newService(t, relationFactory, 2).GenerateBatch(context.Background(), BatchRequest{Count: 12, Mode: core.ModeTrain, Seed: 43})
	require.NoError(t, err)
	assert.NotEqual(t, serial.Manifest.ContentFingerprint, other.Manifest.ContentFingerprint)
}

func TestGenerateBatchAlternatesCorrectness(t *testing.T) {
	batch, err := newService(t, relationFactory, 3).GenerateBatch(context.Background(), BatchRequest{Count: 6, Seed: 1})
	require.NoError(t, err)

	require.Len(t, batch.Samples, 6)
	for i, s := range batch.Samples {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, i%2 == 0, s.Correct)
		assert.Equal(t, core.ModeTrain, s.Mode)
	}
	assert.Equal(t, 3, batch.Stats.Correct)
	assert.Equal(t, 3, batch.Stats.Incorrect)
	assert.GreaterOrEqual(t, batch.Stats.MeanAttempts, 1.0)
	assert.GreaterOrEqual(t, float64(batch.Stats.MaxAttempts), batch.Stats.MeanAttempts)

	modes := 0
	for _, n := range batch.Stats.IncorrectModes {
		modes += n
	}
	assert.Equal(t, 3, modes)
}

func TestGenerateBatchCorrectRate(t *testing.T) {
	allCorrect := 1.0
	batch, err := newService(t, relationFactory, 2).GenerateBatch(context.Background(),
		BatchRequest{Count: 5, Seed: 3, CorrectRate: &allCorrect})
	require.NoError(t, err)
	assert.Equal(t, 5, batch.Stats.Correct)

	bad := 1.5
	_, err = newService(t, relationFactory, 2).GenerateBatch(context.Background(), BatchRequest{Count: 5, CorrectRate: &bad})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestGenerateBatchStopsOnFailure(t *testing.T) {
	failing := func(rng ports.RandomSource) (ports.WorldCaptioner, error) {
		m := &testkit.MockCaptioner{}
		m.On("SetRealizer", mock.Anything).Return(core.ErrNoAdmissibleRelations)
		return m, nil
	}
	_, err := newService(t, failing, 4).GenerateBatch(context.Background(), BatchRequest{Count: 8, Seed: 1})
	require.Error(t, err)
	assert.True(t, core.IsSetupError(err))
}

func TestGenerateEmptyBatch(t *testing.T) {
	batch, err := newService(t, relationFactory, 2).GenerateBatch(context.Background(), BatchRequest{Count: 0})
	require.NoError(t, err)
	assert.Empty(t, batch.Samples)
	assert.Zero(t, batch.Stats.MeanAttempts)
}
