package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shortlist/internal/domain/score"
	"github.com/kailas-cloud/shortlist/internal/domain/vector"
)

// Config holds the shortlist service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Cache      CacheConfig      `yaml:"cache"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int `yaml:"port"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int `yaml:"write_timeout_sec"`
	ShutdownSec       int `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
	MaxBodyKB         int `yaml:"max_body_kb"`
}

// DatabaseConfig holds Valkey/Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds the feedback store connection. Empty DSN disables feedback.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	MaxBatchSize        int    `yaml:"max_batch_size"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	TTLSec    int  `yaml:"ttl_sec"`
	Capacity  int  `yaml:"capacity"`
	L2Enabled bool `yaml:"l2_enabled"`
}

// ScoringConfig holds the composite score settings.
type ScoringConfig struct {
	WeightsVersion string             `yaml:"weights_version"`
	Weights        map[string]float64 `yaml:"weights"`
	ExperienceCap  float64            `yaml:"experience_cap"`
}

// RankingConfig holds ranker settings.
type RankingConfig struct {
	DefaultTopN int `yaml:"default_top_n"`
	MaxTopN     int `yaml:"max_top_n"`
	Workers     int `yaml:"workers"`
}

// ExtractionConfig overrides the requirement extraction lexicon.
// Empty lists keep the built-in defaults.
type ExtractionConfig struct {
	DefaultLanguage       string   `yaml:"default_language"`
	SkillAnchors          []string `yaml:"skill_anchors"`
	YearsPatterns         []string `yaml:"years_patterns"`
	EducationIndicators   []string `yaml:"education_indicators"`
	EducationPhrases      []string `yaml:"education_phrases"`
	LanguageLexicon       []string `yaml:"language_lexicon"`
	CertificationAnchors  []string `yaml:"certification_anchors"`
	CertificationAcronyms []string `yaml:"certification_acronyms"`
	ExtraStopWords        []string `yaml:"extra_stop_words"`
	AnchorWindow          int      `yaml:"anchor_window"`
	KeywordTopK           int      `yaml:"keyword_top_k"`
	MinKeywordLength      int      `yaml:"min_keyword_length"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 25
	}
	if c.HTTP.MaxBodyKB <= 0 {
		c.HTTP.MaxBodyKB = 4096
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 4
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "shortlist:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vector.Dimensions
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 64
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 10000
	}
	if len(c.Scoring.Weights) == 0 {
		def := score.DefaultWeights()
		c.Scoring.WeightsVersion = def.Version
		c.Scoring.Weights = make(map[string]float64, len(def.Values))
		for k, v := range def.Values {
			c.Scoring.Weights[string(k)] = v
		}
	}
	if c.Scoring.WeightsVersion == "" {
		c.Scoring.WeightsVersion = "custom"
	}
	if c.Scoring.ExperienceCap <= 0 {
		c.Scoring.ExperienceCap = 1.5
	}
	if c.Ranking.DefaultTopN <= 0 {
		c.Ranking.DefaultTopN = 5
	}
	if c.Ranking.MaxTopN <= 0 {
		c.Ranking.MaxTopN = 100
	}
	if c.Ranking.Workers <= 0 {
		c.Ranking.Workers = 8
	}
	if c.Extraction.DefaultLanguage == "" {
		c.Extraction.DefaultLanguage = "en"
	}
	if c.Extraction.AnchorWindow <= 0 {
		c.Extraction.AnchorWindow = 100
	}
	if c.Extraction.KeywordTopK <= 0 {
		c.Extraction.KeywordTopK = 20
	}
	if c.Extraction.MinKeywordLength <= 0 {
		c.Extraction.MinKeywordLength = 4
	}
}

// ScoreWeights converts the configured weights into the domain type.
func (c *Config) ScoreWeights() score.Weights {
	w := score.Weights{
		Version: c.Scoring.WeightsVersion,
		Values:  make(map[score.Component]float64, len(c.Scoring.Weights)),
	}
	for k, v := range c.Scoring.Weights {
		w.Values[score.Component(k)] = v
	}
	return w
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.Dimensions != vector.Dimensions {
		return fmt.Errorf("embedding.dimensions must be %d, got %d", vector.Dimensions, c.Embedding.Dimensions)
	}
	if err := c.ScoreWeights().Validate(); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}
	if c.Scoring.ExperienceCap < 1 {
		return fmt.Errorf("scoring.experience_cap must be >= 1, got %v", c.Scoring.ExperienceCap)
	}
	if c.Ranking.DefaultTopN > c.Ranking.MaxTopN {
		return fmt.Errorf("ranking.default_top_n (%d) exceeds ranking.max_top_n (%d)",
			c.Ranking.DefaultTopN, c.Ranking.MaxTopN)
	}
	for _, p := range c.Extraction.YearsPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("extraction.years_patterns: %q: %w", p, err)
		}
	}
	return nil
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

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
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
