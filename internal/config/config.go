package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir  = "runs"
	DefaultLogLevel = "warn"
	DefaultNotation = NotationDot
	DefaultModel    = "spring_mass_damper"
)

// Notation selects how time derivatives are printed.
const (
	NotationDot   = "dot"
	NotationPrime = "prime"
)

type Config struct {
	DataDir  string      `yaml:"data_dir" validate:"required"`
	LogLevel string      `yaml:"log_level" validate:"oneof=trace debug info warn error off"`
	Notation string      `yaml:"notation" validate:"oneof=dot prime"`
	Model    string      `yaml:"model" validate:"required"`
	Sweep    SweepConfig `yaml:"sweep"`
}

// SweepConfig holds the defaults of the sweep command.
type SweepConfig struct {
	Points int `yaml:"points" validate:"min=2,max=1000"`
	Height int `yaml:"height" validate:"min=2,max=100"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
		Notation: DefaultNotation,
		Model:    DefaultModel,
		Sweep: SweepConfig{
			Points: 60,
			Height: 12,
		},
	}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, formatValidationError(err))
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
