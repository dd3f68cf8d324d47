package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"goshape/adapters/captioner/relation"
	"goshape/domain/core"
	"goshape/domain/predication"
	"goshape/domain/run"
	"goshape/internal/errors"
	"goshape/ports"
)

var validate = validator.New()

// CaptionerFactory builds a fresh captioner drawing from rng. Every sample gets
// its own captioner since captioners carry sampled state between calls.
type CaptionerFactory func(rng ports.RandomSource) (ports.WorldCaptioner, error)

// ServiceConfig bounds generation
type ServiceConfig struct {
	MaxAttempts int `json:"max_attempts" validate:"gt=0"`
	Workers     int `json:"workers" validate:"gt=0"`
	// ConfigHash identifies the captioner and world settings in run fingerprints
	ConfigHash core.Hash `json:"config_hash"`
}

// DefaultServiceConfig returns the default generation bounds
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{MaxAttempts: 100, Workers: 4}
}

// CaptionService generates caption samples: scenes paired with correct or
// deliberately incorrect relation captions
type CaptionService struct {
	newCaptioner CaptionerFactory
	realizer     ports.RealizerPort
	worlds       ports.WorldGeneratorPort
	rngPort      ports.RNGPort
	config       ServiceConfig
	logger       *zap.Logger
}

// SampleRequest defines one sample to generate
type SampleRequest struct {
	Index   int       `json:"index"`
	Mode    core.Mode `json:"mode"`
	Correct bool      `json:"correct"`
	Seed    int64     `json:"seed"`
}

// BatchRequest defines a batch of samples
type BatchRequest struct {
	Count int       `json:"count" validate:"gte=0"`
	Mode  core.Mode `json:"mode"`
	Seed  int64     `json:"seed"`
	// CorrectRate is the probability of a correct caption. When nil, even
	// indices are correct and odd indices incorrect.
	CorrectRate *float64 `json:"correct_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// NewCaptionService creates a caption service
func NewCaptionService(
	newCaptioner CaptionerFactory,
	realizer ports.RealizerPort,
	worlds ports.WorldGeneratorPort,
	rngPort ports.RNGPort,
	config ServiceConfig,
	logger *zap.Logger,
) (*CaptionService, error) {
	if newCaptioner == nil || realizer == nil || worlds == nil || rngPort == nil {
		return nil, errors.InvalidInput("caption service needs a captioner factory, realizer, world generator and RNG")
	}
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid caption service config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptionService{
		newCaptioner: newCaptioner,
		realizer:     realizer,
		worlds:       worlds,
		rngPort:      rngPort,
		config:       config,
		logger:       logger,
	}, nil
}

// GenerateSample generates a single sample from its own seeded stream
func (s *CaptionService) GenerateSample(ctx context.Context, req SampleRequest) (*run.Sample, error) {
	rng, err := s.rngPort.SeededStream(ctx, "sample", req.Seed)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, req, rng)
}

// GenerateBatch generates req.Count samples in parallel. Sample i draws from a
// stream keyed by the run fingerprint and i, so the content of a batch depends
// only on its request and configuration.
func (s *CaptionService) GenerateBatch(ctx context.Context, req BatchRequest) (*run.Batch, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid batch request")
	}
	mode := req.Mode
	if mode == "" {
		mode = core.ModeTrain
	}
	startTime := time.Now()

	fingerprint := run.NewRunFingerprint(s.realizer.Name(), s.config.ConfigHash, mode, req.Seed, req.Count)
	manifest := run.NewManifest(core.NewRunID(), fingerprint)
	runKey := fingerprint.Fingerprint.String()

	samples := make([]run.Sample, req.Count)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Workers)
	for i := 0; i < req.Count; i++ {
		i := i
		eg.Go(func() error {
			rng, err := s.rngPort.Stream(egCtx, runKey, "caption", strconv.Itoa(i), req.Seed)
			if err != nil {
				return err
			}
			correct := i%2 == 0
			if req.CorrectRate != nil {
				correct = rng.Float64() < *req.CorrectRate
			}
			sample, err := s.generate(egCtx, SampleRequest{Index: i, Mode: mode, Correct: correct, Seed: req.Seed}, rng)
			if err != nil {
				return err
			}
			samples[i] = *sample
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := manifest.Seal(samples); err != nil {
		return nil, err
	}
	summary, err := summarize(samples)
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch generated",
		zap.String("run_id", manifest.RunID.String()),
		zap.Int("samples", len(samples)),
		zap.Float64("mean_attempts", summary.MeanAttempts),
		zap.String("content_fingerprint", manifest.ContentFingerprint.String()),
		zap.Duration("elapsed", time.Since(startTime)))

	return &run.Batch{Manifest: manifest, Samples: samples, Stats: summary}, nil
}

// generate retries sample, caption and corrupt on fresh scenes until one attempt
// succeeds. Failed attempts leave nothing behind but their failure reason.
func (s *CaptionService) generate(ctx context.Context, req SampleRequest, rng ports.RandomSource) (*run.Sample, error) {
	captioner, err := s.newCaptioner(rng)
	if err != nil {
		return nil, errors.SetupFailed("failed to build captioner", err)
	}
	if err := captioner.SetRealizer(s.realizer); err != nil {
		return nil, err
	}

	failures := map[string]int{}
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := s.worlds.Generate(req.Mode, rng)
		if err != nil {
			failures["world_generation"]++
			continue
		}
		if !captioner.Sample(req.Mode, predication.New(w)) {
			failures[failureOf(captioner, "sample")]++
			continue
		}
		capt := captioner.Caption(predication.New(w), w)
		if capt == nil {
			failures[failureOf(captioner, "caption")]++
			continue
		}

		sample := &run.Sample{
			ID:       core.NewSampleID(),
			Index:    req.Index,
			Mode:     req.Mode,
			Correct:  req.Correct,
			Attempts: attempt,
			World:    w,
			Caption:  capt,
		}
		if !req.Correct {
			if !captioner.Corrupt(capt, predication.New(w), w) {
				failures[failureOf(captioner, "corrupt")]++
				continue
			}
			if m, ok := captioner.(interface{ IncorrectMode() relation.IncorrectMode }); ok {
				sample.IncorrectMode = m.IncorrectMode().String()
			}
		}
		sample.Model = captioner.Describe()
		if len(failures) > 0 {
			sample.Failures = failures
		}

		s.logger.Debug("sample generated",
			zap.Int("index", req.Index),
			zap.Bool("correct", req.Correct),
			zap.Int("attempts", attempt))
		return sample, nil
	}

	return nil, errors.GenerationExhausted(
		fmt.Sprintf("sample %d: no caption after %d attempts (failures: %v)", req.Index, s.config.MaxAttempts, failures),
		core.ErrGenerationExhausted)
}

// failureOf returns the reason the captioner reports for its last failure, or
// the failed step when it reports none
func failureOf(c ports.WorldCaptioner, step string) string {
	if r, ok := c.(interface{ LastFailure() relation.FailureReason }); ok {
		if reason := r.LastFailure(); reason != relation.FailureNone {
			return string(reason)
		}
	}
	return step + "_failed"
}

// summarize computes attempt statistics over the samples of a batch
func summarize(samples []run.Sample) (run.AttemptStats, error) {
	summary := run.AttemptStats{
		Failures:       map[string]int{},
		IncorrectModes: map[string]int{},
	}
	if len(samples) == 0 {
		return summary, nil
	}

	attempts := make(stats.Float64Data, len(samples))
	for i, sample := range samples {
		attempts[i] = float64(sample.Attempts)
		if sample.Attempts > summary.MaxAttempts {
			summary.MaxAttempts = sample.Attempts
		}
		if sample.Correct {
			summary.Correct++
		} else {
			summary.Incorrect++
			summary.IncorrectModes[sample.IncorrectMode]++
		}
		for reason, n := range sample.Failures {
			summary.Failures[reason] += n
		}
	}

	var err error
	if summary.MeanAttempts, err = stats.Mean(attempts); err != nil {
		return summary, errors.Wrap(err, "failed to compute mean attempts")
	}
	if summary.StdDevAttempts, err = stats.StandardDeviation(attempts); err != nil {
		return summary, errors.Wrap(err, "failed to compute attempt deviation")
	}
	if summary.MedianAttempts, err = stats.Median(attempts); err != nil {
		return summary, errors.Wrap(err, "failed to compute median attempts")
	}
	return summary, nil
}
