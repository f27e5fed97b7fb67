package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MiningConfig controls n-gram extraction
type MiningConfig struct {
	// MaxPatternLength is the largest n-gram window
	MaxPatternLength int `yaml:"max_pattern_length"`

	// MinPatternCount is the minimum chain frequency to surface
	MinPatternCount int `yaml:"min_pattern_count"`

	// Scoring enables the duration-aware pattern score
	Scoring bool `yaml:"scoring"`
}

// ViewConfig controls the initial tree view and the pattern table
type ViewConfig struct {
	// TopRootsExpanded is the number of highest-frequency root categories auto-expanded on load
	TopRootsExpanded int `yaml:"top_roots_expanded"`

	// PageSize is the number of rows per pattern table page
	PageSize int `yaml:"page_size"`
}

// StateConfig selects where visibility snapshots are kept
type StateConfig struct {
	// Backend is one of none, file, sqlite
	Backend string `yaml:"backend"`

	// Path is the snapshot directory (file) or database file (sqlite)
	Path string `yaml:"path"`
}

// Config represents teachtree configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables a per-run log file in this directory; empty disables it
	LogDir string `yaml:"log_dir"`

	// Mining contains pattern mining configuration
	Mining MiningConfig `yaml:"mining"`

	// View contains display configuration
	View ViewConfig `yaml:"view"`

	// State contains snapshot persistence configuration
	State StateConfig `yaml:"state"`

	// Vocabulary adds or overrides label -> abbreviation entries
	Vocabulary map[string]string `yaml:"vocabulary"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Mining: MiningConfig{
			MaxPatternLength: 15,
			MinPatternCount:  2,
			Scoring:          true,
		},
		View: ViewConfig{
			TopRootsExpanded: 2,
			PageSize:         20,
		},
		State: StateConfig{
			Backend: "file",
			Path:    filepath.Join(".teachtree", "state"),
		},
		Vocabulary: map[string]string{},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers distinguish "absent" from an explicit zero
	type yamlConfig struct {
		LogLevel string `yaml:"log_level"`
		LogDir   string `yaml:"log_dir"`
		Mining   struct {
			MaxPatternLength *int  `yaml:"max_pattern_length"`
			MinPatternCount  *int  `yaml:"min_pattern_count"`
			Scoring          *bool `yaml:"scoring"`
		} `yaml:"mining"`
		View struct {
			TopRootsExpanded *int `yaml:"top_roots_expanded"`
			PageSize         *int `yaml:"page_size"`
		} `yaml:"view"`
		State      StateConfig       `yaml:"state"`
		Vocabulary map[string]string `yaml:"vocabulary"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Mining.MaxPatternLength != nil {
		cfg.Mining.MaxPatternLength = *yamlCfg.Mining.MaxPatternLength
	}
	if yamlCfg.Mining.MinPatternCount != nil {
		cfg.Mining.MinPatternCount = *yamlCfg.Mining.MinPatternCount
	}
	if yamlCfg.Mining.Scoring != nil {
		cfg.Mining.Scoring = *yamlCfg.Mining.Scoring
	}
	if yamlCfg.View.TopRootsExpanded != nil {
		cfg.View.TopRootsExpanded = *yamlCfg.View.TopRootsExpanded
	}
	if yamlCfg.View.PageSize != nil {
		cfg.View.PageSize = *yamlCfg.View.PageSize
	}
	if yamlCfg.State.Backend != "" {
		cfg.State.Backend = yamlCfg.State.Backend
	}
	if yamlCfg.State.Path != "" {
		cfg.State.Path = yamlCfg.State.Path
	}
	for label, abbr := range yamlCfg.Vocabulary {
		cfg.Vocabulary[label] = abbr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .teachtree/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".teachtree", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, maxLength *int, minCount *int, topRoots *int, scoring *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if maxLength != nil {
		c.Mining.MaxPatternLength = *maxLength
	}
	if minCount != nil {
		c.Mining.MinPatternCount = *minCount
	}
	if topRoots != nil {
		c.View.TopRootsExpanded = *topRoots
	}
	if scoring != nil {
		c.Mining.Scoring = *scoring
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Mining.MaxPatternLength < 2 {
		return fmt.Errorf("mining.max_pattern_length must be >= 2, got %d", c.Mining.MaxPatternLength)
	}
	if c.Mining.MinPatternCount < 1 {
		return fmt.Errorf("mining.min_pattern_count must be >= 1, got %d", c.Mining.MinPatternCount)
	}

	if c.View.TopRootsExpanded < 0 {
		return fmt.Errorf("view.top_roots_expanded must be >= 0, got %d", c.View.TopRootsExpanded)
	}
	if c.View.PageSize < 1 {
		return fmt.Errorf("view.page_size must be >= 1, got %d", c.View.PageSize)
	}

	switch c.State.Backend {
	case "none":
	case "file", "sqlite":
		if c.State.Path == "" {
			return fmt.Errorf("state.path cannot be empty when state.backend is %s", c.State.Backend)
		}
	default:
		return fmt.Errorf("invalid state.backend %q, must be one of: none, file, sqlite", c.State.Backend)
	}

	for label, abbr := range c.Vocabulary {
		if label == "" || abbr == "" {
			return fmt.Errorf("vocabulary entries need both a label and an abbreviation")
		}
	}

	return nil
}
