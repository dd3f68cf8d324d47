package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"goshape/internal/errors"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Taxonomy   TaxonomyConfig
	Caption    CaptionConfig
	World      WorldConfig
	Generation GenerationConfig
	LogLevel   string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

// TaxonomyConfig selects the relation taxonomy
type TaxonomyConfig struct {
	// File is a YAML taxonomy; empty means the built-in default
	File string
}

// CaptionConfig holds relation and attribute captioner settings
type CaptionConfig struct {
	// RelationTypes and RelationValues restrict the admissible relations; nil admits all
	RelationTypes         []string
	RelationValues        []int     `validate:"dive,ne=0"`
	IncorrectDistribution []float64 `validate:"len=4,dive,gte=0"`
	MaxSampleAttempts     int       `validate:"gt=0"`

	PragmaticalRedundancyRate float64 `validate:"gte=0,lte=1"`
	PragmaticalTautologyRate  float64 `validate:"gte=0,lte=1"`
	LogicalRedundancyRate     float64 `validate:"gte=0,lte=1"`
	LogicalTautologyRate      float64 `validate:"gte=0,lte=1"`
	LogicalContradictionRate  float64 `validate:"gte=0,lte=1"`

	AttributeKinds []string `validate:"min=1,unique,dive,oneof=shape color texture"`
}

// WorldConfig holds scene generation settings. With both entity bounds at zero
// the dataset's per-mode entity counts apply.
type WorldConfig struct {
	Size        int `validate:"gt=0"`
	MinEntities int `validate:"gte=0"`
	MaxEntities int `validate:"gte=0,gtefield=MinEntities"`
}

// GenerationConfig holds batch generation settings
type GenerationConfig struct {
	Seed        int64
	Workers     int    `validate:"gt=0"`
	MaxAttempts int    `validate:"gt=0"`
	Mode        string `validate:"oneof=train validation test"`
}

// Load reads configuration from environment variables and validates it. The given
// .env files are loaded first; without any, a .env in the working directory is
// loaded if present. Variables already set in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load env files")
	}

	config := &Config{
		Taxonomy: TaxonomyConfig{File: getEnvOrDefault("TAXONOMY_FILE", "")},
		World:    loadWorldConfig(),
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	captionConfig, err := loadCaptionConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load caption configuration")
	}
	config.Caption = *captionConfig

	generationConfig, err := loadGenerationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load generation configuration")
	}
	config.Generation = *generationConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadCaptionConfig() (*CaptionConfig, error) {
	values, err := getEnvIntListOrDefault("CAPTION_RELATION_VALUES", nil)
	if err != nil {
		return nil, err
	}
	distribution, err := getEnvFloatListOrDefault("CAPTION_INCORRECT_DISTRIBUTION", []float64{1, 1, 1, 1})
	if err != nil {
		return nil, err
	}

	return &CaptionConfig{
		RelationTypes:         getEnvListOrDefault("CAPTION_RELATION_TYPES", nil),
		RelationValues:        values,
		IncorrectDistribution: distribution,
		MaxSampleAttempts:     getEnvIntOrDefault("CAPTION_MAX_SAMPLE_ATTEMPTS", 10),

		PragmaticalRedundancyRate: getEnvFloatOrDefault("CAPTION_PRAGMATICAL_REDUNDANCY_RATE", 1.0),
		PragmaticalTautologyRate:  getEnvFloatOrDefault("CAPTION_PRAGMATICAL_TAUTOLOGY_RATE", 0.0),
		LogicalRedundancyRate:     getEnvFloatOrDefault("CAPTION_LOGICAL_REDUNDANCY_RATE", 1.0),
		LogicalTautologyRate:      getEnvFloatOrDefault("CAPTION_LOGICAL_TAUTOLOGY_RATE", 0.0),
		LogicalContradictionRate:  getEnvFloatOrDefault("CAPTION_LOGICAL_CONTRADICTION_RATE", 0.0),

		AttributeKinds: getEnvListOrDefault("CAPTION_ATTRIBUTE_KINDS", []string{"shape", "color"}),
	}, nil
}

func loadWorldConfig() WorldConfig {
	return WorldConfig{
		Size:        getEnvIntOrDefault("WORLD_SIZE", 64),
		MinEntities: getEnvIntOrDefault("WORLD_MIN_ENTITIES", 0),
		MaxEntities: getEnvIntOrDefault("WORLD_MAX_ENTITIES", 0),
	}
}

func loadGenerationConfig() (*GenerationConfig, error) {
	seed := int64(0)
	if value := os.Getenv("GENERATION_SEED"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("GENERATION_SEED: %v", err))
		}
		seed = parsed
	}
	return &GenerationConfig{
		Seed:        seed,
		Workers:     getEnvIntOrDefault("GENERATION_WORKERS", 4),
		MaxAttempts: getEnvIntOrDefault("GENERATION_MAX_ATTEMPTS", 100),
		Mode:        strings.ToLower(getEnvOrDefault("GENERATION_MODE", "train")),
	}, nil
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if (config.World.MinEntities == 0) != (config.World.MaxEntities == 0) {
		return errors.ConfigInvalid("WORLD_MIN_ENTITIES and WORLD_MAX_ENTITIES must be set together")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated variable, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvIntListOrDefault(key string, defaultValue []int) ([]int, error) {
	items := getEnvListOrDefault(key, nil)
	if items == nil {
		return defaultValue, nil
	}
	values := make([]int, len(items))
	for i, item := range items {
		v, err := strconv.Atoi(item)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an integer", key, item))
		}
		values[i] = v
	}
	return values, nil
}

func getEnvFloatListOrDefault(key string, defaultValue []float64) ([]float64, error) {
	items := getEnvListOrDefault(key, nil)
	if items == nil {
		return defaultValue, nil
	}
	values := make([]float64, len(items))
	for i, item := range items {
		v, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a number", key, item))
		}
		values[i] = v
	}
	return values, nil
}
