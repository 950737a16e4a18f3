// Package config loads the optional YAML configuration file. Every field has
// a flag counterpart; flags win over file values.
package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config carries defaults for the sync command.
type Config struct {
	SourceDir string   `yaml:"source_dir"`
	BuildDir  string   `yaml:"build_dir"`
	BazelBin  string   `yaml:"bazel_bin"`
	TopDir    string   `yaml:"topdir"`
	UseBzlmod bool     `yaml:"use_bzlmod"`
	Excludes  []string `yaml:"excludes"`
}

// Load reads and validates a YAML config file, expanding environment
// variables in its values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Excludes, validation.Each(validation.By(validPattern))),
	)
}

func validPattern(value any) error {
	pattern, _ := value.(string)
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid exclude pattern: %q", pattern)
	}
	return nil
}

// ValidatePatterns checks that every exclude pattern is a valid doublestar
// pattern. Flag-provided patterns bypass Load, so the CLI runs them through
// this before syncing; an invalid pattern would otherwise just never match.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if err := validPattern(pattern); err != nil {
			return err
		}
	}
	return nil
}
