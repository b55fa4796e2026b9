// Package config loads cpg configuration from .cpg/config.yaml,
// merging it over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cpg configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cpg configuration directory.
const ConfigDirName = ".cpg"

// Config holds all cpg configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Parse    ParseConfig    `yaml:"parse"`
	Output   OutputConfig   `yaml:"output"`
}

// AnalysisConfig holds configuration for graph construction.
type AnalysisConfig struct {
	// MemoryTracking enables MemoryOp promotion by default; the
	// --memory-tracking flag still forces it on.
	MemoryTracking bool `yaml:"memory_tracking"`
	// UnsafeFunctions extends the built-in unsafe-function set.
	UnsafeFunctions []string `yaml:"unsafe_functions"`
}

// ParseConfig holds front-end options.
type ParseConfig struct {
	Standard     string   `yaml:"standard"`
	IncludeRoots []string `yaml:"include_roots"`
}

// OutputConfig holds output defaults.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config directory can be found.
var ErrConfigNotFound = errors.New("config file not found")

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MemoryTracking: false,
		},
		Parse: ParseConfig{
			Standard:     "c11",
			IncludeRoots: []string{"/usr/include", "/usr/local/include"},
		},
		Output: OutputConfig{
			Format: "dot",
		},
	}
}

// Load reads config from .cpg/config.yaml, searching from workDir and
// walking up the directory tree. If no config is found, returns
// defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path and merges it over
// defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return merge(loaded, DefaultConfig()), nil
}

// merge fills zero-valued fields of loaded from defaults.
func merge(loaded, defaults *Config) *Config {
	out := *loaded
	if out.Parse.Standard == "" {
		out.Parse.Standard = defaults.Parse.Standard
	}
	if len(out.Parse.IncludeRoots) == 0 {
		out.Parse.IncludeRoots = defaults.Parse.IncludeRoots
	}
	if out.Output.Format == "" {
		out.Output.Format = defaults.Output.Format
	}
	return &out
}

// FindConfigDir locates the .cpg directory starting at workDir and
// walking up. Returns ErrConfigNotFound when no directory exists.
func FindConfigDir(workDir string) (string, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving work directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}
