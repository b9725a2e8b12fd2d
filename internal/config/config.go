// Package config loads search configurations from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MutationRateConfig overrides the decay schedule endpoints when set.
type MutationRateConfig struct {
	Initial float64 `yaml:"initial"`
	Floor   float64 `yaml:"floor"`
}

// SearchConfig describes one search run: the voltage ranges to explore, the
// population partition, the horizon, and the criterion to drive it with.
type SearchConfig struct {
	Criterion        string             `yaml:"criterion"`
	CriterionSeed    int64              `yaml:"criterion_seed"`
	GeneRanges       [][]float64        `yaml:"gene_ranges"`
	Partition        []int              `yaml:"partition"`
	Epochs           int                `yaml:"epochs"`
	Seed             int64              `yaml:"seed"`
	Workers          int                `yaml:"workers"`
	MutationRate     MutationRateConfig `yaml:"mutation_rate"`
	FitnessGoal      float64            `yaml:"fitness_goal"`
	EvaluationsLimit int                `yaml:"evaluations_limit"`
	TopCount         int                `yaml:"top_count"`
}

// Load reads and validates a search configuration file.
func Load(path string) (SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SearchConfig{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML config bytes.
func Parse(data []byte) (SearchConfig, error) {
	var cfg SearchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SearchConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

// Validate checks the structural constraints that can be verified without
// constructing the optimizer. The optimizer re-validates on construction;
// this catches config-file mistakes with file-oriented messages.
func (c SearchConfig) Validate() error {
	if len(c.GeneRanges) == 0 {
		return fmt.Errorf("config: gene_ranges is required")
	}
	for i, row := range c.GeneRanges {
		if len(row) != 2 {
			return fmt.Errorf("config: gene_ranges row %d must have exactly two values", i)
		}
		if row[1] <= row[0] {
			return fmt.Errorf("config: gene_ranges row %d: max must be greater than min", i)
		}
	}
	if len(c.Partition) != 2 {
		return fmt.Errorf("config: partition must have exactly two counts")
	}
	if c.Partition[0] < 0 || c.Partition[1] < 0 {
		return fmt.Errorf("config: partition counts must be >= 0")
	}
	if c.Partition[0]+c.Partition[1] == 0 {
		return fmt.Errorf("config: partition must size a non-empty population")
	}
	if c.Epochs < 0 {
		return fmt.Errorf("config: epochs must be >= 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0")
	}
	if c.EvaluationsLimit < 0 {
		return fmt.Errorf("config: evaluations_limit must be >= 0")
	}
	if c.TopCount < 0 {
		return fmt.Errorf("config: top_count must be >= 0")
	}
	return nil
}
