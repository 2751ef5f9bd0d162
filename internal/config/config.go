// Package config loads .flow/config.yaml, the per-directory defaults
// for flow runs. An absent file means defaults; pointer fields in the
// raw form distinguish "key not set" from "set to an empty value".
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/run"
)

// Config holds the effective configuration after defaults are merged.
type Config struct {
	Generator        string
	Model            string
	Variants         int
	DeepCritique     bool
	AllowAssumptions bool
	Trace            bool
	Sections         []string
	Specialists      []string
}

// rawConfig is used for YAML unmarshaling to distinguish missing keys
// from explicit empty values.
type rawConfig struct {
	Generator        *string  `yaml:"generator"`
	Model            *string  `yaml:"model"`
	Variants         *int     `yaml:"variants"`
	DeepCritique     *bool    `yaml:"deepCritique"`
	AllowAssumptions *bool    `yaml:"allowAssumptions"`
	Trace            *bool    `yaml:"trace"`
	Sections         []string `yaml:"sections"`
	Specialists      []string `yaml:"specialists"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Generator: "claude",
		Variants:  1,
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Generator == "" {
		return fmt.Errorf("generator must not be empty")
	}
	if c.Variants < model.MinVariants || c.Variants > model.MaxVariants {
		return fmt.Errorf("variants must be between %d and %d", model.MinVariants, model.MaxVariants)
	}
	return nil
}

// Load reads .flow/config.yaml from dir, merging with defaults. A
// missing file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, run.FlowDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}

	// Only apply a value when the key was actually present.
	if raw.Generator != nil {
		cfg.Generator = *raw.Generator
	}
	if raw.Model != nil {
		cfg.Model = *raw.Model
	}
	if raw.Variants != nil {
		cfg.Variants = *raw.Variants
	}
	if raw.DeepCritique != nil {
		cfg.DeepCritique = *raw.DeepCritique
	}
	if raw.AllowAssumptions != nil {
		cfg.AllowAssumptions = *raw.AllowAssumptions
	}
	if raw.Trace != nil {
		cfg.Trace = *raw.Trace
	}
	if len(raw.Sections) > 0 {
		cfg.Sections = raw.Sections
	}
	if len(raw.Specialists) > 0 {
		cfg.Specialists = raw.Specialists
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the configuration to pipeline options. Flags can
// override individual fields afterwards.
func (c Config) Options() model.PipelineOptions {
	return model.PipelineOptions{
		DeepCritique:     c.DeepCritique,
		Variants:         c.Variants,
		Trace:            c.Trace,
		SynthSpecialists: c.Specialists,
		AllowAssumptions: c.AllowAssumptions,
	}
}

// LoadEnv loads a .env file from dir when one exists, so generator
// subprocesses inherit credentials without exporting them globally.
func LoadEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}
