package container

import (
	"context"
	"fmt"

	"goshape/adapters/captioner"
	"goshape/adapters/captioner/attribute"
	"goshape/adapters/captioner/relation"
	"goshape/adapters/excel"
	"goshape/adapters/realizer"
	"goshape/adapters/rng"
	worldgen "goshape/adapters/world"
	"goshape/app"
	"goshape/domain/caption"
	"goshape/domain/core"
	"goshape/domain/world"
	"goshape/internal"
	"goshape/internal/config"
	"goshape/internal/errors"
	"goshape/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Realizer ports.RealizerPort
	Worlds   ports.WorldGeneratorPort
	RNG      ports.RNGPort
	Exporter *excel.BatchWriter

	// Services
	CaptionService *app.CaptionService

	mode            core.Mode
	relationConfig  relation.Config
	attributeConfig attribute.Config
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	return NewWithLogger(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
}

// NewWithLogger creates a container logging to logger
func NewWithLogger(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	mode, err := core.ParseMode(cfg.Generation.Mode)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid generation mode")
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		RNG:      rng.NewSeededAdapter(),
		Exporter: excel.NewBatchWriter(logger.Zap()),
		mode:     mode,
	}

	if err := c.initRealizer(); err != nil {
		return nil, err
	}
	if err := c.initCaptioners(); err != nil {
		return nil, err
	}
	if err := c.initWorlds(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}

	logger.Debug("container initialised: realizer=%s mode=%s", c.Realizer.Name(), mode)
	return c, nil
}

func (c *Container) initRealizer() error {
	if c.Config.Taxonomy.File == "" {
		c.Realizer = realizer.NewDefault()
		return nil
	}
	r, err := realizer.LoadFile(c.Config.Taxonomy.File)
	if err != nil {
		return err
	}
	c.Realizer = r
	return nil
}

func (c *Container) initCaptioners() error {
	cc := c.Config.Caption
	rates := captioner.Rates{
		PragmaticalRedundancy: cc.PragmaticalRedundancyRate,
		PragmaticalTautology:  cc.PragmaticalTautologyRate,
		LogicalRedundancy:     cc.LogicalRedundancyRate,
		LogicalTautology:      cc.LogicalTautologyRate,
		LogicalContradiction:  cc.LogicalContradictionRate,
	}

	kinds := make([]world.AttributeKind, 0, len(cc.AttributeKinds))
	for _, name := range cc.AttributeKinds {
		kind, err := world.ParseAttributeKind(name)
		if err != nil {
			return errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid attribute kinds")
		}
		kinds = append(kinds, kind)
	}
	c.attributeConfig = attribute.Config{Rates: rates, Kinds: kinds}

	c.relationConfig = relation.Config{
		Rates:                 rates,
		IncorrectDistribution: cc.IncorrectDistribution,
		MaxSampleAttempts:     cc.MaxSampleAttempts,
	}
	if cc.RelationTypes != nil || cc.RelationValues != nil {
		c.relationConfig.Relations = &caption.Filter{Predtypes: cc.RelationTypes, Values: cc.RelationValues}
	}

	// fail fast on settings the captioners reject
	source, err := c.RNG.SeededStream(context.Background(), "setup", c.Config.Generation.Seed)
	if err != nil {
		return err
	}
	check, err := c.NewCaptioner(source)
	if err != nil {
		return err
	}
	return check.SetRealizer(c.Realizer)
}

func (c *Container) initWorlds() error {
	wc := worldgen.DefaultConfig()
	wc.Size = c.Config.World.Size
	if c.Config.World.MinEntities > 0 {
		wc.EntityCounts = worldgen.CountRange(c.Config.World.MinEntities, c.Config.World.MaxEntities)
		wc.ModeCounts = nil
	}

	// scenes use the realizer's vocabulary so every entity can be described
	vocabulary, err := c.Realizer.Attributes()
	if err != nil {
		return errors.SetupFailed("realizer "+c.Realizer.Name()+" has no usable vocabulary", err)
	}
	if values := vocabulary[world.AttributeShape]; len(values) > 0 {
		wc.Shapes = values
	}
	if values := vocabulary[world.AttributeColor]; len(values) > 0 {
		wc.Colors = values
	}
	if values := vocabulary[world.AttributeTexture]; len(values) > 0 {
		wc.Textures = values
	}

	worlds, err := worldgen.NewRandomGenerator(wc)
	if err != nil {
		return err
	}
	c.Worlds = worlds
	return nil
}

func (c *Container) initServices() error {
	configHash, err := core.Fingerprint(struct {
		Caption config.CaptionConfig `json:"caption"`
		World   config.WorldConfig   `json:"world"`
	}{c.Config.Caption, c.Config.World})
	if err != nil {
		return errors.Wrap(err, "failed to fingerprint configuration")
	}

	svc, err := app.NewCaptionService(c.NewCaptioner, c.Realizer, c.Worlds, c.RNG, app.ServiceConfig{
		MaxAttempts: c.Config.Generation.MaxAttempts,
		Workers:     c.Config.Generation.Workers,
		ConfigHash:  configHash,
	}, c.Logger.Zap())
	if err != nil {
		return err
	}
	c.CaptionService = svc
	return nil
}

// NewCaptioner builds a relation captioner over two attribute captioners, all
// drawing from rng. It is the caption service's captioner factory.
func (c *Container) NewCaptioner(source ports.RandomSource) (ports.WorldCaptioner, error) {
	opts := []captioner.Option{captioner.WithRandom(source), captioner.WithLogger(c.Logger.Zap())}

	reference, err := attribute.NewCaptioner(c.attributeConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("reference captioner: %w", err)
	}
	comparison, err := attribute.NewCaptioner(c.attributeConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("comparison captioner: %w", err)
	}
	return relation.NewCaptioner(reference, comparison, c.relationConfig, opts...)
}

// Mode returns the configured dataset mode
func (c *Container) Mode() core.Mode {
	return c.mode
}

// Close flushes the logger
func (c *Container) Close() error {
	_ = c.Logger.Sync()
	return nil
}
