// Package config loads scheduler settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/model"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	MaxSectionsPerEvent uint    `mapstructure:"max_sections_per_event"`
	MaxEvents           uint    `mapstructure:"max_events"` // 0 means unlimited
	MaxFrontier         uint    `mapstructure:"max_frontier" validate:"gt=0"`
	Mode                string  `mapstructure:"mode" validate:"oneof=exact approx"`
	Parallelism         int     `mapstructure:"parallelism" validate:"gte=1"`
	ExclusionWeight     float64 `mapstructure:"exclusion_weight" validate:"gt=0"`
	LogLevel            string  `mapstructure:"log_level" validate:"loglevel"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("loglevel", validateLogLevel)
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := zapcore.ParseLevel(fl.Field().String())
	return err == nil
}

func Default() Config {
	return Config{
		MaxSectionsPerEvent: model.DefaultMaxSectionsPerEvent,
		MaxEvents:           0,
		MaxFrontier:         model.DefaultMaxFrontier,
		Mode:                metrics.ModeApprox,
		Parallelism:         1,
		ExclusionWeight:     model.DefaultExclusionWeight,
		LogLevel:            "info",
	}
}

// Load reads path and overlays its keys on Default(). Unknown keys are rejected.
func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %v", err)
	}
	return Parse(bytes)
}

func Parse(bytes []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %v", err)
	}

	config := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &config,
	})
	if err != nil {
		return Config{}, fmt.Errorf("cannot create config decoder: %v", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (config Config) Validate() error {
	if err := configValidate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed log level; Validate guarantees it parses
func (config Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(config.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SchedulerOptions translates the engine limits into model options
func (config Config) SchedulerOptions() []model.Option {
	return []model.Option{
		model.WithMaxSectionsPerEvent(config.MaxSectionsPerEvent),
		model.WithMaxEvents(config.MaxEvents),
		model.WithParallelism(config.Parallelism),
	}
}
