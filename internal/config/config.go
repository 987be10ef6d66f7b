// Package config handles data directory layout and configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/skill"
)

const (
	SkillpathDir = ".skillpath"
	ConfigFile   = "config.yml"
	EnvFile      = ".env"
	TaxonomyFile = "taxonomy.yml"
	EdgesFile    = "prerequisites.jsonl"
	CatalogFile  = "catalog.jsonl"
	RolesFile    = "roles.yml"
	CacheDir     = "cache"
	IndexFile    = "catalog.gob"
	DBFile       = "catalog.db"
	QueriesFile  = "queries.jsonl"
)

// Embedding provider names.
const (
	ProviderOllama = "ollama"
	ProviderHash   = "hash"
)

// Environment variables that override config.yml.
const (
	EnvOllamaURL     = "SKILLPATH_OLLAMA_URL"
	EnvEmbedModel    = "SKILLPATH_EMBED_MODEL"
	EnvEmbedProvider = "SKILLPATH_EMBED_PROVIDER"
	EnvLogMode       = "SKILLPATH_LOG_MODE"
)

// ValidLogModes lists the accepted log_mode values.
var ValidLogModes = []string{"dev", "prod", "quiet"}

// Config is the data directory configuration stored in .skillpath/config.yml.
// Every field has a default; the file only needs the fields it changes.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding"`
	Mapper    MapperConfig    `yaml:"mapper" json:"mapper"`
	Gaps      GapsConfig      `yaml:"gaps" json:"gaps"`
	Recommend RecommendConfig `yaml:"recommend" json:"recommend"`
	Path      PathConfig      `yaml:"path" json:"path"`
	LogMode   string          `yaml:"log_mode" json:"log_mode"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider    string        `yaml:"provider" json:"provider"` // ollama or hash
	OllamaURL   string        `yaml:"ollama_url" json:"ollama_url"`
	Model       string        `yaml:"model" json:"model"`
	Dimensions  int           `yaml:"dimensions" json:"dimensions"`
	BatchSize   int           `yaml:"batch_size" json:"batch_size"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	RateLimit   float64       `yaml:"rate_limit" json:"rate_limit"` // Requests per second, 0 for unlimited
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// MapperConfig tunes skill extraction.
type MapperConfig struct {
	Threshold float32 `yaml:"threshold" json:"threshold"`
}

// GapsConfig tunes gap analysis.
type GapsConfig struct {
	Threshold      float32           `yaml:"threshold" json:"threshold"`
	MinProficiency skill.Proficiency `yaml:"min_proficiency" json:"min_proficiency"`
}

// RecommendConfig tunes resource retrieval.
type RecommendConfig struct {
	TopK     int     `yaml:"top_k" json:"top_k"`
	MinScore float32 `yaml:"min_score" json:"min_score"`
}

// PathConfig tunes path generation.
type PathConfig struct {
	HoursPerWeek       float64 `yaml:"hours_per_week" json:"hours_per_week"`
	ResourcesPerModule int     `yaml:"resources_per_module" json:"resources_per_module"`
	Concurrency        int     `yaml:"concurrency" json:"concurrency"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:    ProviderOllama,
			OllamaURL:   embedding.DefaultOllamaURL,
			Model:       embedding.DefaultModel,
			Dimensions:  embedding.DefaultDimensions,
			BatchSize:   embedding.DefaultBatchSize,
			Concurrency: embedding.DefaultConcurrency,
			RateLimit:   embedding.DefaultRateLimit,
			Timeout:     embedding.DefaultTimeout,
		},
		Mapper: MapperConfig{Threshold: 0.5},
		Gaps: GapsConfig{
			Threshold:      0.7,
			MinProficiency: skill.Intermediate,
		},
		Recommend: RecommendConfig{TopK: 5, MinScore: 0.3},
		Path: PathConfig{
			HoursPerWeek:       10,
			ResourcesPerModule: 3,
			Concurrency:        4,
		},
		LogMode: "quiet",
	}
}

// DataPath returns the path to the .skillpath directory from a root path.
func DataPath(root string) string {
	return filepath.Join(root, SkillpathDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, SkillpathDir, ConfigFile)
}

// EnvPath returns the path to the .env file next to .skillpath.
func EnvPath(root string) string {
	return filepath.Join(root, EnvFile)
}

// TaxonomyPath returns the path to taxonomy.yml from a root path.
func TaxonomyPath(root string) string {
	return filepath.Join(root, SkillpathDir, TaxonomyFile)
}

// EdgesPath returns the path to prerequisites.jsonl from a root path.
func EdgesPath(root string) string {
	return filepath.Join(root, SkillpathDir, EdgesFile)
}

// CatalogPath returns the path to catalog.jsonl from a root path.
func CatalogPath(root string) string {
	return filepath.Join(root, SkillpathDir, CatalogFile)
}

// RolesPath returns the path to roles.yml from a root path.
func RolesPath(root string) string {
	return filepath.Join(root, SkillpathDir, RolesFile)
}

// QueriesPath returns the path to the labeled evaluation queries.
func QueriesPath(root string) string {
	return filepath.Join(root, SkillpathDir, QueriesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, SkillpathDir, CacheDir)
}

// IndexPath returns the path to the persisted semantic index.
func IndexPath(root string) string {
	return filepath.Join(root, SkillpathDir, CacheDir, IndexFile)
}

// DBPath returns the path to catalog.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, SkillpathDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a .skillpath directory.
func IsRepository(root string) bool {
	info, err := os.Stat(DataPath(root))
	return err == nil && info.IsDir()
}

// ErrNoRepository is returned when no .skillpath directory can be found.
var ErrNoRepository = errors.New("no .skillpath directory found")

// FindRepository walks up from the given path to find a .skillpath directory.
// Returns the root path containing it.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w above %s", ErrNoRepository, start)
		}
		abs = parent
	}
}

// Load reads config.yml from the repository at root over the defaults, then
// applies .env and environment overrides. A missing config.yml is not an
// error.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := LoadDotEnv(root); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads root/.env into the process environment without
// overriding variables that are already set.
func LoadDotEnv(root string) error {
	path := EnvPath(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvOllamaURL); v != "" {
		c.Embedding.OllamaURL = v
	}
	if v := getenv(EnvEmbedModel); v != "" {
		c.Embedding.Model = v
	}
	if v := getenv(EnvEmbedProvider); v != "" {
		c.Embedding.Provider = v
	}
	if v := getenv(EnvLogMode); v != "" {
		c.LogMode = v
	}
}

// Save writes the configuration to the repository at root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(DataPath(root), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOllama, ProviderHash:
	default:
		return fmt.Errorf("invalid embedding.provider: %q (valid: %s, %s)", c.Embedding.Provider, ProviderOllama, ProviderHash)
	}
	if c.Embedding.Provider == ProviderOllama && c.Embedding.OllamaURL == "" {
		return errors.New("embedding.ollama_url is required for the ollama provider")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("embedding.rate_limit must not be negative, got %v", c.Embedding.RateLimit)
	}
	if err := validateUnit("mapper.threshold", c.Mapper.Threshold); err != nil {
		return err
	}
	if err := validateUnit("gaps.threshold", c.Gaps.Threshold); err != nil {
		return err
	}
	if !c.Gaps.MinProficiency.Valid() {
		return fmt.Errorf("invalid gaps.min_proficiency: %d", int(c.Gaps.MinProficiency))
	}
	if c.Recommend.TopK <= 0 {
		return fmt.Errorf("recommend.top_k must be positive, got %d", c.Recommend.TopK)
	}
	if c.Recommend.MinScore < -1 || c.Recommend.MinScore > 1 {
		return fmt.Errorf("recommend.min_score must be between -1 and 1, got %v", c.Recommend.MinScore)
	}
	if c.Path.HoursPerWeek <= 0 {
		return fmt.Errorf("path.hours_per_week must be positive, got %v", c.Path.HoursPerWeek)
	}
	if c.Path.ResourcesPerModule <= 0 {
		return fmt.Errorf("path.resources_per_module must be positive, got %d", c.Path.ResourcesPerModule)
	}
	return ValidateLogMode(c.LogMode)
}

func validateUnit(name string, v float32) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

// ValidateLogMode checks that mode is a known log mode.
func ValidateLogMode(mode string) error {
	for _, valid := range ValidLogModes {
		if mode == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log_mode: %s (valid: %v)", mode, ValidLogModes)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
