// Package config provides unified configuration loading for netgen.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/netgen/internal/constants"
	"gopkg.in/yaml.v3"
)

// Output format names.
const (
	FormatConf  = "conf"
	FormatPro   = "pro"
	FormatCSV   = "csv"
	FormatArrow = "arrow"
)

// NetgenConfig contains all netgen configuration settings.
type NetgenConfig struct {
	// Logging contains settings for operational logging and generation traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store selects where generated topologies are persisted.
	Store StoreConfig `json:"store" yaml:"store"`

	// Output controls which simulator files are written and where.
	Output OutputConfig `json:"output" yaml:"output"`

	// Generation contains engine settings.
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}

// LoggingConfig configures netgen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default), "debug" or "trace".
	// "debug" and "trace" also write .netgen/generation.jsonl.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures topology persistence.
type StoreConfig struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `json:"backend" yaml:"backend"`

	// Path is the SQLite database file. Supports ${VAR} syntax. Relative
	// paths resolve against the project root; empty means .netgen/netgen.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// OutputConfig configures the downstream writers.
type OutputConfig struct {
	// Dir receives the output files. Empty means the current directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Formats lists the writers to run: conf, pro, csv, arrow.
	Formats []string `json:"formats" yaml:"formats"`
}

// GenerationConfig configures the engine.
type GenerationConfig struct {
	// Seed seeds the randbool stream.
	Seed int64 `json:"seed" yaml:"seed"`

	// Strict turns references to unknown populations, handles and
	// receptors into errors.
	Strict bool `json:"strict" yaml:"strict"`
}

// Default returns a NetgenConfig with sensible defaults.
func Default() *NetgenConfig {
	return &NetgenConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Output: OutputConfig{
			Formats: []string{FormatConf, FormatPro, FormatCSV},
		},
		Generation: GenerationConfig{
			Seed: constants.DefaultSeed,
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.netgen/config.yaml -> environment variables
func Load() (*NetgenConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.NetgenDir, "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*NetgenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Path = expandEnvVars(config.Store.Path)
	config.Output.Dir = expandEnvVars(config.Output.Dir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *NetgenConfig) Validate() error {
	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	switch c.Store.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("invalid store backend: %s (valid: memory, sqlite)", c.Store.Backend)
	}

	if _, err := ParseFormats(strings.Join(c.Output.Formats, ",")); err != nil {
		return err
	}

	return nil
}

// DBPath resolves the SQLite database path against projectRoot.
func (c *NetgenConfig) DBPath(projectRoot string) string {
	if c.Store.Path == "" {
		return filepath.Join(projectRoot, constants.NetgenDir, constants.DBFileName)
	}
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(projectRoot, c.Store.Path)
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates. Unknown names are an error.
func ParseFormats(s string) ([]string, error) {
	valid := map[string]bool{FormatConf: true, FormatPro: true, FormatCSV: true, FormatArrow: true}
	seen := make(map[string]bool)
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !valid[f] {
			return nil, fmt.Errorf("invalid output format: %s (valid: conf, pro, csv, arrow)", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *NetgenConfig) {
	if v := os.Getenv("NETGEN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("NETGEN_STORE"); v != "" {
		config.Store.Backend = v
	}

	if v := os.Getenv("NETGEN_DB_PATH"); v != "" {
		config.Store.Path = v
	}

	if v := os.Getenv("NETGEN_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Generation.Seed = n
		}
	}

	if v := os.Getenv("NETGEN_STRICT"); v != "" {
		config.Generation.Strict = v == "true" || v == "1"
	}

	if v := os.Getenv("NETGEN_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
