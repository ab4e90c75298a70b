package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default cap values, matching the review workflow the engine was built for.
const (
	DefaultCombinedAddedLines = 250
	DefaultNewFunctionLines   = 250
	DefaultGroupLines         = 250
	DefaultCombinedGroupLines = 250
	DefaultSimilarityLines    = 500
	DefaultOverlapRatio       = 0.8
)

// DefaultAnalyzerCommand is the external symbol analyzer probed for by
// default.
const DefaultAnalyzerCommand = "semcode"

// EnvDBPath overrides the run store location when set.
const EnvDBPath = "DIFFSCOPE_DB_PATH"

// Limits are the size and similarity caps driving segment combination and
// grouping.
type Limits struct {
	// CombinedAddedLines caps the added-line total when merging
	// modification segments of one (file, symbol) key.
	CombinedAddedLines int `yaml:"combined_added_lines"`

	// NewFunctionLines caps the total-line count when merging
	// new-function segments of one file.
	NewFunctionLines int `yaml:"new_function_lines"`

	// GroupLines caps a group's total during path-sorted packing.
	GroupLines int `yaml:"group_lines"`

	// CombinedGroupLines caps the total when coalescing small groups.
	CombinedGroupLines int `yaml:"combined_group_lines"`

	// SimilarityLines caps the combined total of two groups merged by
	// function overlap.
	SimilarityLines int `yaml:"similarity_lines"`

	// OverlapRatio is the minimum function-overlap ratio for a
	// similarity merge, in (0, 1].
	OverlapRatio float64 `yaml:"overlap_ratio"`
}

// Config is the full tool configuration: caps, analyzer command, and run
// store path. Precedence is flags > config file > defaults; zero values in
// a loaded file fall back to the defaults.
type Config struct {
	Limits   Limits `yaml:"limits"`
	Analyzer string `yaml:"analyzer"`
	DBPath   string `yaml:"db_path"`
}

// DefaultLimits returns the default cap set.
func DefaultLimits() Limits {
	return Limits{
		CombinedAddedLines: DefaultCombinedAddedLines,
		NewFunctionLines:   DefaultNewFunctionLines,
		GroupLines:         DefaultGroupLines,
		CombinedGroupLines: DefaultCombinedGroupLines,
		SimilarityLines:    DefaultSimilarityLines,
		OverlapRatio:       DefaultOverlapRatio,
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Limits:   DefaultLimits(),
		Analyzer: DefaultAnalyzerCommand,
		DBPath:   DefaultDBPath(),
	}
}

// DefaultDBPath resolves the run store location: the environment override
// when set, otherwise ~/.diffscope/diffscope.db.
func DefaultDBPath() string {
	if env := os.Getenv(EnvDBPath); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "diffscope.db"
	}
	return filepath.Join(home, ".diffscope", "diffscope.db")
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults replaces zero-valued fields with their defaults.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Limits.CombinedAddedLines == 0 {
		c.Limits.CombinedAddedLines = def.Limits.CombinedAddedLines
	}
	if c.Limits.NewFunctionLines == 0 {
		c.Limits.NewFunctionLines = def.Limits.NewFunctionLines
	}
	if c.Limits.GroupLines == 0 {
		c.Limits.GroupLines = def.Limits.GroupLines
	}
	if c.Limits.CombinedGroupLines == 0 {
		c.Limits.CombinedGroupLines = def.Limits.CombinedGroupLines
	}
	if c.Limits.SimilarityLines == 0 {
		c.Limits.SimilarityLines = def.Limits.SimilarityLines
	}
	if c.Limits.OverlapRatio == 0 {
		c.Limits.OverlapRatio = def.Limits.OverlapRatio
	}
	if c.Analyzer == "" {
		c.Analyzer = def.Analyzer
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
}

// Validate rejects caps that cannot drive the combination passes.
func (c *Config) Validate() error {
	if c.Limits.OverlapRatio <= 0 || c.Limits.OverlapRatio > 1 {
		return fmt.Errorf("overlap_ratio must be in (0, 1], got %v", c.Limits.OverlapRatio)
	}
	for name, v := range map[string]int{
		"combined_added_lines": c.Limits.CombinedAddedLines,
		"new_function_lines":   c.Limits.NewFunctionLines,
		"group_lines":          c.Limits.GroupLines,
		"combined_group_lines": c.Limits.CombinedGroupLines,
		"similarity_lines":     c.Limits.SimilarityLines,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	return nil
}
