// Package config holds the settings of a diagnoser run.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/internal/table"
)

// ErrSingleSelection is returned when exactly one category is selected.
var ErrSingleSelection = errors.New("please select at least two categories for comparison")

// Config is the YAML configuration file.
type Config struct {
	Reference         string                   `yaml:"reference"`
	ReferencesFile    string                   `yaml:"references_file"`
	Column            string                   `yaml:"column"`
	Selection         []string                 `yaml:"selection"`
	Aligned           bool                     `yaml:"aligned"`
	Insertions        bool                     `yaml:"insertions"`
	RelativePositions bool                     `yaml:"relative_positions"`
	Workers           int                      `yaml:"workers"`
	Scoring           *alignment.ScoringMatrix `yaml:"scoring"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Reference: reference.DefaultName,
		Column:    table.DefaultColumn,
		Workers:   runtime.NumCPU(),
		Scoring:   alignment.DefaultDNA(),
	}
}

// Load reads filename over the defaults. An empty filename yields the
// defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Reference == "" {
		return fmt.Errorf("reference must be set")
	}
	if c.Column == "" {
		return fmt.Errorf("column must be set")
	}
	if len(c.Selection) == 1 {
		return ErrSingleSelection
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Scoring != nil {
		if err := c.Scoring.Validate(); err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	}
	return nil
}

// Options converts the settings to processor options.
func (c *Config) Options() diagnosis.Options {
	return diagnosis.Options{
		Aligned:           c.Aligned,
		Insertions:        c.Insertions,
		RelativePositions: c.RelativePositions,
		Selection:         c.Selection,
		Workers:           c.Workers,
	}
}

// Write stores the configuration as YAML.
func (c *Config) Write(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}
