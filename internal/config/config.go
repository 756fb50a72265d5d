// Package config loads the tokosearch YAML configuration by environment
// name (local, dev, prod).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tokosearch/tokosearch/internal/bm25"
	"github.com/tokosearch/tokosearch/internal/ranking"
)

// Config holds the tokosearch service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API authentication settings. An empty key list
// disables authentication.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: by env)
}

// CatalogConfig locates the catalog data file.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig holds the retrieval and ranking parameters. Strict makes
// a fusion weight sum away from 1.0 a hard error instead of a warning.
type SearchConfig struct {
	K1            float64         `yaml:"k1"`
	B             float64         `yaml:"b"`
	Weights       ranking.Weights `yaml:"weights"`
	MaxDistanceKm float64         `yaml:"max_distance_km"`
	DefaultK      int             `yaml:"default_k"`
	Strict        bool            `yaml:"strict"`
}

// BM25Params returns the BM25 tuning constants.
func (s SearchConfig) BM25Params() bm25.Params {
	return bm25.Params{K1: s.K1, B: s.B}
}

// RankingParams returns the fusion parameters.
func (s SearchConfig) RankingParams() ranking.Params {
	return ranking.Params{Weights: s.Weights, MaxDistanceKm: s.MaxDistanceKm}
}

// Load reads the configuration for the given environment.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable,
// defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.K1 == 0 {
		c.Search.K1 = 1.5
	}
	if c.Search.B == 0 {
		c.Search.B = 0.75
	}
	if c.Search.Weights == (ranking.Weights{}) {
		c.Search.Weights = ranking.DefaultParams().Weights
	}
	if c.Search.MaxDistanceKm == 0 {
		c.Search.MaxDistanceKm = 10
	}
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if err := c.Search.BM25Params().Validate(); err != nil {
		return err
	}
	if err := c.Search.RankingParams().Validate(c.Search.Strict); err != nil {
		return err
	}
	if c.Search.DefaultK <= 0 {
		return fmt.Errorf("search.default_k must be positive, got %d", c.Search.DefaultK)
	}
	return nil
}

// WeightSumWarning surfaces a non-fatal weight sum mismatch; the
// composition root logs it.
func (c *Config) WeightSumWarning() string {
	return c.Search.RankingParams().WeightSumWarning()
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
