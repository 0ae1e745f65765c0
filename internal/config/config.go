package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultObservedSet is the built-in watched file list. Order is part of the
// contract: the fingerprint is computed over file contents concatenated in
// exactly this order.
var DefaultObservedSet = []string{"main.tex"}

// Default store locations, relative to the working directory of the build.
const (
	DefaultHashFile    = ".docver/hash"
	DefaultVersionFile = "version.dat"
)

// Config represents the complete docver configuration
type Config struct {
	Observed ObservedConfig `yaml:"observed"`
	Stores   StoresConfig   `yaml:"stores"`
}

// ObservedConfig declares the watched source files
type ObservedConfig struct {
	Files []string `yaml:"files"`
}

// StoresConfig configures where the two persisted store files live
type StoresConfig struct {
	HashFile    string `yaml:"hash_file"`
	VersionFile string `yaml:"version_file"`
}

// Default returns the built-in configuration used when no config file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand environment variables in string fields
	cfg.expandEnv()

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	for i, f := range c.Observed.Files {
		c.Observed.Files[i] = os.ExpandEnv(f)
	}
	c.Stores.HashFile = os.ExpandEnv(c.Stores.HashFile)
	c.Stores.VersionFile = os.ExpandEnv(c.Stores.VersionFile)
}

// applyDefaults fills in zero-value fields with the built-in defaults.
func (c *Config) applyDefaults() {
	if len(c.Observed.Files) == 0 {
		c.Observed.Files = append([]string(nil), DefaultObservedSet...)
	}
	if c.Stores.HashFile == "" {
		c.Stores.HashFile = DefaultHashFile
	}
	if c.Stores.VersionFile == "" {
		c.Stores.VersionFile = DefaultVersionFile
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	// Validate observed set
	if len(c.Observed.Files) == 0 {
		return fmt.Errorf("observed.files must list at least one file")
	}
	seen := make(map[string]bool, len(c.Observed.Files))
	for i, f := range c.Observed.Files {
		if f == "" {
			return fmt.Errorf("observed.files[%d] is blank", i)
		}
		if seen[f] {
			return fmt.Errorf("observed.files contains %s twice", f)
		}
		seen[f] = true
	}

	// Validate store paths
	if c.Stores.HashFile == "" {
		return fmt.Errorf("stores.hash_file is required")
	}
	if c.Stores.VersionFile == "" {
		return fmt.Errorf("stores.version_file is required")
	}
	if c.Stores.HashFile == c.Stores.VersionFile {
		return fmt.Errorf("stores.hash_file and stores.version_file must be distinct paths")
	}

	// A store that is also observed would feed its own content into the
	// fingerprint and never converge.
	if seen[c.Stores.HashFile] {
		return fmt.Errorf("stores.hash_file %s must not appear in observed.files", c.Stores.HashFile)
	}
	if seen[c.Stores.VersionFile] {
		return fmt.Errorf("stores.version_file %s must not appear in observed.files", c.Stores.VersionFile)
	}

	return nil
}
