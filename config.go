package spantree

import (
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the spantree configuration
type Config struct {
	Schema     string       `yaml:"schema"`
	SchemaFile string       `yaml:"schema_file"`
	Format     string       `yaml:"format"`
	Pretty     bool         `yaml:"pretty"`
	Markers    MarkerConfig `yaml:"markers"`
	Cache      CacheConfig  `yaml:"cache"`
	Parser     ParserConfig `yaml:"parser"`
	Log        LogConfig    `yaml:"log"`
}

// MarkerConfig holds the underline characters used by statement diagnostics
type MarkerConfig struct {
	Top     string `yaml:"top"`
	Chain   string `yaml:"chain"`
	Current string `yaml:"current"`
}

// CacheConfig represents the snapshot cache settings
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ParserConfig represents position source settings
type ParserConfig struct {
	// AllowErrors keeps spans from inputs that contain syntax errors
	AllowErrors bool `yaml:"allow_errors"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Schema != "" && config.SchemaFile != "" {
		return fmt.Errorf("%w: schema and schema_file are mutually exclusive", ErrConfigValidation)
	}

	if config.Format != "" {
		validFormats := map[string]bool{
			"json": true,
			"yaml": true,
		}
		if !validFormats[config.Format] {
			return fmt.Errorf("%w: format '%s' is invalid: must be one of json, yaml", ErrConfigValidation, config.Format)
		}
	}

	markers := map[string]string{
		"top":     config.Markers.Top,
		"chain":   config.Markers.Chain,
		"current": config.Markers.Current,
	}
	for name, marker := range markers {
		if marker != "" && utf8.RuneCountInString(marker) != 1 {
			return fmt.Errorf("%w: markers.%s must be a single character, got %q", ErrConfigValidation, name, marker)
		}
	}

	if config.Log.Level != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[config.Log.Level] {
			return fmt.Errorf("%w: log.level '%s' is invalid: must be one of debug, info, warn, error", ErrConfigValidation, config.Log.Level)
		}
	}

	if config.Cache.Enabled && config.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is required when cache is enabled", ErrConfigValidation)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Schema: "tree-sitter-python",
		Format: "json",
		Pretty: true,
		Markers: MarkerConfig{
			Top:     "-",
			Chain:   "~",
			Current: "^",
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".spantree/cache.db",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Schema == "" && config.SchemaFile == "" {
		config.Schema = defaults.Schema
	}

	if config.Format == "" {
		config.Format = defaults.Format
	}

	if config.Markers.Top == "" {
		config.Markers.Top = defaults.Markers.Top
	}

	if config.Markers.Chain == "" {
		config.Markers.Chain = defaults.Markers.Chain
	}

	if config.Markers.Current == "" {
		config.Markers.Current = defaults.Markers.Current
	}

	if config.Cache.Path == "" {
		config.Cache.Path = defaults.Cache.Path
	}

	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path-like settings
func expandConfigEnvVars(config *Config) {
	config.SchemaFile = expandEnvVars(config.SchemaFile)
	config.Cache.Path = expandEnvVars(config.Cache.Path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// MarkerRunes returns the configured markers as runes (top, chain, current)
func (c *Config) MarkerRunes() (top, chain, current rune) {
	first := func(s string, fallback rune) rune {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return fallback
		}

		return r
	}

	return first(c.Markers.Top, '-'), first(c.Markers.Chain, '~'), first(c.Markers.Current, '^')
}
