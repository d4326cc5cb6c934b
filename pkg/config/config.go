// Package config loads the kite report configuration.
//
// Values are resolved in this order: built-in defaults, kite.yaml (or an
// explicit --config path), then KITE_* environment variables. CLI flags are
// applied on top by the command layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project root.
const FileName = "kite.yaml"

// Config holds every tunable of a report run.
type Config struct {
	Report       ReportConfig       `mapstructure:"report" yaml:"report"`
	Registry     RegistryConfig     `mapstructure:"registry" yaml:"registry"`
	Retry        RetryConfig        `mapstructure:"retry" yaml:"retry"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	Architecture ArchitectureConfig `mapstructure:"architecture" yaml:"architecture"`
	Dependencies DependencyConfig   `mapstructure:"dependencies" yaml:"dependencies"`
	LogLevel     string             `mapstructure:"log_level" yaml:"log_level"`
}

// ReportConfig selects report sections and bounds the file work.
type ReportConfig struct {
	IncludeStructure    bool  `mapstructure:"include_structure" yaml:"include_structure"`
	IncludeDependencies bool  `mapstructure:"include_dependencies" yaml:"include_dependencies"`
	IncludeCode         bool  `mapstructure:"include_code" yaml:"include_code"`
	IncludeArchitecture bool  `mapstructure:"include_architecture" yaml:"include_architecture"`
	IncludeSuggestions  bool  `mapstructure:"include_suggestions" yaml:"include_suggestions"`
	MaxFiles            int   `mapstructure:"max_files" yaml:"max_files"`
	MaxFileSize         int64 `mapstructure:"max_file_size" yaml:"max_file_size"`
}

// RegistryConfig configures the package registry used for health scoring.
type RegistryConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheSize   int           `mapstructure:"cache_size" yaml:"cache_size"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// RetryConfig bounds analyzer retries.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
}

// MetricsConfig holds code metric thresholds.
type MetricsConfig struct {
	ComplexityThreshold int `mapstructure:"complexity_threshold" yaml:"complexity_threshold"`
}

// ArchitectureConfig holds pattern ranking policy.
type ArchitectureConfig struct {
	// PriorityPatterns are preferred over raw confidence when choosing the
	// primary pattern, in list order.
	PriorityPatterns []string `mapstructure:"priority_patterns" yaml:"priority_patterns"`
}

// DependencyConfig holds manifest classification settings.
type DependencyConfig struct {
	FirstPartyPrefixes []string `mapstructure:"first_party_prefixes" yaml:"first_party_prefixes"`
}

// DefaultConfig returns a config with the product defaults.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			IncludeStructure:    true,
			IncludeDependencies: true,
			IncludeCode:         true,
			IncludeArchitecture: true,
			IncludeSuggestions:  true,
			MaxFiles:            1000,
			MaxFileSize:         1 << 20,
		},
		Registry: RegistryConfig{
			URL:         "https://pub.dev",
			Timeout:     10 * time.Second,
			CacheTTL:    time.Hour,
			CacheSize:   512,
			Concurrency: 8,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			ComplexityThreshold: 10,
		},
		Architecture: ArchitectureConfig{
			PriorityPatterns: []string{"riverpod", "bloc", "provider", "getx", "mobx", "redux"},
		},
		Dependencies: DependencyConfig{
			FirstPartyPrefixes: []string{"firebird_"},
		},
		LogLevel: "info",
	}
}

// Load reads configuration from path. A missing file is not an error; the
// defaults (plus environment overrides) are returned instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("KITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("report.include_structure", d.Report.IncludeStructure)
	v.SetDefault("report.include_dependencies", d.Report.IncludeDependencies)
	v.SetDefault("report.include_code", d.Report.IncludeCode)
	v.SetDefault("report.include_architecture", d.Report.IncludeArchitecture)
	v.SetDefault("report.include_suggestions", d.Report.IncludeSuggestions)
	v.SetDefault("report.max_files", d.Report.MaxFiles)
	v.SetDefault("report.max_file_size", d.Report.MaxFileSize)

	v.SetDefault("registry.url", d.Registry.URL)
	v.SetDefault("registry.timeout", d.Registry.Timeout)
	v.SetDefault("registry.cache_ttl", d.Registry.CacheTTL)
	v.SetDefault("registry.cache_size", d.Registry.CacheSize)
	v.SetDefault("registry.concurrency", d.Registry.Concurrency)

	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.base_delay", d.Retry.BaseDelay)

	v.SetDefault("metrics.complexity_threshold", d.Metrics.ComplexityThreshold)
	v.SetDefault("architecture.priority_patterns", d.Architecture.PriorityPatterns)
	v.SetDefault("dependencies.first_party_prefixes", d.Dependencies.FirstPartyPrefixes)
	v.SetDefault("log_level", d.LogLevel)
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Report.MaxFiles <= 0 {
		return fmt.Errorf("report.max_files must be positive, got %d", c.Report.MaxFiles)
	}
	if c.Report.MaxFileSize <= 0 {
		return fmt.Errorf("report.max_file_size must be positive, got %d", c.Report.MaxFileSize)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("registry.timeout must be positive")
	}
	return nil
}

// SaveConfig writes configuration to a YAML file.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
