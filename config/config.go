package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/mvsfs/internal/util"
)

// EnvPrefix is the prefix of all environment overrides, i.e. MVSFS_PAGE_SIZE.
const EnvPrefix = "MVSFS"

// CLI style verbosity levels accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultPageSize is the number of entries delivered per page
	DefaultPageSize = 200

	// DefaultPacingDelay is the pause between delivered pages so consumers can
	// keep up with large listings
	DefaultPacingDelay = 10 * time.Millisecond

	DefaultLogLvl = util.InfoLevel
)

// Config contains runtime configuration values for browsing.
type Config struct {
	LogLvl        util.LogLevel // Global log level (Default info)
	PageSize      int           // Entries per delivered page (Default 200)
	PacingDelay   time.Duration // Pause between delivered pages (Default 10ms)
	FilterPattern string        // Initial view filter; "/" prefix for regex (Default none)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace); out of range values are clamped
	LogLvl        *int    `yaml:"verbose,omitempty" json:"verbose,omitempty" envconfig:"VERBOSE"`
	PageSize      *int    `yaml:"page_size,omitempty" json:"page_size,omitempty" envconfig:"PAGE_SIZE"`
	PacingDelayMs *int    `yaml:"pacing_delay_ms,omitempty" json:"pacing_delay_ms,omitempty" envconfig:"PACING_DELAY_MS"`
	FilterPattern *string `yaml:"filter,omitempty" json:"filter,omitempty" envconfig:"FILTER"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:      DefaultLogLvl,
		PageSize:    DefaultPageSize,
		PacingDelay: DefaultPacingDelay,
	}
}

// NewConfig creates a Config from the defaults with overrides applied in order.
// Nil overrides are skipped.
func NewConfig(overrides ...*ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	for _, o := range overrides {
		if o != nil {
			cfg.Merge(o)
		}
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// Invalid values (page size below 1, negative delay) are ignored.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.PageSize != nil && *override.PageSize > 0 {
		c.PageSize = *override.PageSize
	}
	if override.PacingDelayMs != nil && *override.PacingDelayMs >= 0 {
		c.PacingDelay = time.Duration(*override.PacingDelayMs) * time.Millisecond
	}
	if override.FilterPattern != nil {
		c.FilterPattern = strings.TrimSpace(*override.FilterPattern)
	}
}

// VerboseToLogLevel converts a 1 (error) to 5 (trace) verbosity into a log level.
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = min(max(verbose, ErrorVerbose), TraceVerbose)
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// LoadEnvOverride reads overrides from the environment, i.e. MVSFS_PAGE_SIZE
// for prefix "MVSFS". Unset variables stay nil.
func LoadEnvOverride(prefix string) (*ConfigOverride, error) {
	var override ConfigOverride
	if err := envconfig.Process(prefix, &override); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
