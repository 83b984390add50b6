// ABOUTME: Centralized configuration for the carrier-fit CLI and MCP server
// ABOUTME: Loads from environment variables (and .env) with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Vector index backends
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Scoring holds the thresholds used by the query generator and aggregator
type Scoring struct {
	SimilarityFloor        float64 `yaml:"similarity_floor"`
	CitationFloor          float64 `yaml:"citation_floor"`
	NeutralScore           int     `yaml:"neutral_score"`
	MaxFitScore            int     `yaml:"max_fit_score"`
	HighTier               int     `yaml:"high_tier"`
	MediumTier             int     `yaml:"medium_tier"`
	MaxCitations           int     `yaml:"max_citations"`
	SnippetRunes           int     `yaml:"snippet_runes"`
	AcceleratedMaxAge      int     `yaml:"accelerated_max_age"`
	AcceleratedMaxCoverage int64   `yaml:"accelerated_max_coverage"`
	FinancialThreshold     int64   `yaml:"financial_threshold"`
	BMIMin                 float64 `yaml:"bmi_min"`
	BMIMax                 float64 `yaml:"bmi_max"`
	TobaccoLookbackYears   int     `yaml:"tobacco_lookback_years"`
	SeniorAge              int     `yaml:"senior_age"`
}

// Retrieval holds per-evaluation fan-out settings
type Retrieval struct {
	TopK        int           `yaml:"top_k"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	TopN        int           `yaml:"top_n"`
}

// Chunking holds chunker sizing
type Chunking struct {
	TargetTokens int `yaml:"target_tokens"`
	OverlapWords int `yaml:"overlap_words"`
}

// Config holds all configuration for carrierfit
type Config struct {
	// Storage settings
	DBPath        string
	VectorBackend string

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey         string
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	AdvisorEnabled    bool

	LogLevel  string
	RulesFile string

	Scoring   Scoring
	Retrieval Retrieval
	Chunking  Chunking
}

// DefaultScoring returns the built-in scoring thresholds
func DefaultScoring() Scoring {
	return Scoring{
		SimilarityFloor:        0.65,
		CitationFloor:          0.7,
		NeutralScore:           50,
		MaxFitScore:            95,
		HighTier:               80,
		MediumTier:             60,
		MaxCitations:           5,
		SnippetRunes:           300,
		AcceleratedMaxAge:      60,
		AcceleratedMaxCoverage: 1_000_000,
		FinancialThreshold:     1_000_000,
		BMIMin:                 18.5,
		BMIMax:                 30,
		TobaccoLookbackYears:   5,
		SeniorAge:              70,
	}
}

// DefaultRetrieval returns the built-in retrieval settings
func DefaultRetrieval() Retrieval {
	return Retrieval{
		TopK:        3,
		Timeout:     10 * time.Second,
		Concurrency: 8,
		TopN:        0,
	}
}

// DefaultChunking returns the built-in chunker sizing
func DefaultChunking() Chunking {
	return Chunking{TargetTokens: 1000, OverlapWords: 150}
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:            os.Getenv("CARRIERFIT_DB"),
		VectorBackend:     strings.ToLower(getEnv("CARRIERFIT_VECTOR_BACKEND", BackendSQLite)),
		CharmHost:         getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:       getEnv("CHARM_DB", "carrierfit"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ChatModel:         getEnv("CARRIERFIT_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("CARRIERFIT_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		RequestsPerSecond: getEnvFloat("OPENAI_REQUESTS_PER_SECOND", 5),
		AdvisorEnabled:    getEnvBool("CARRIERFIT_ADVISOR", false),
		LogLevel:          getEnv("CARRIERFIT_LOG_LEVEL", "info"),
		RulesFile:         os.Getenv("CARRIERFIT_RULES_FILE"),
		Scoring:           DefaultScoring(),
		Retrieval:         DefaultRetrieval(),
		Chunking:          DefaultChunking(),
	}

	cfg.Chunking.TargetTokens = getEnvInt("CARRIERFIT_CHUNK_TOKENS", cfg.Chunking.TargetTokens)
	cfg.Chunking.OverlapWords = getEnvInt("CARRIERFIT_CHUNK_OVERLAP", cfg.Chunking.OverlapWords)
	cfg.Retrieval.TopK = getEnvInt("CARRIERFIT_TOP_K", cfg.Retrieval.TopK)
	cfg.Retrieval.Timeout = getEnvDuration("CARRIERFIT_RETRIEVAL_TIMEOUT", cfg.Retrieval.Timeout)
	cfg.Retrieval.Concurrency = getEnvInt("CARRIERFIT_CONCURRENCY", cfg.Retrieval.Concurrency)

	if cfg.RulesFile != "" {
		scoring, err := LoadRulesFile(cfg.RulesFile, cfg.Scoring)
		if err != nil {
			return nil, err
		}
		cfg.Scoring = scoring
	}

	return cfg, cfg.Validate()
}

// rulesFile is the on-disk shape of CARRIERFIT_RULES_FILE
type rulesFile struct {
	Scoring Scoring `yaml:"scoring"`
}

// LoadRulesFile overlays scoring thresholds from a YAML file onto base.
// Keys absent from the file keep their base values.
func LoadRulesFile(path string, base Scoring) (Scoring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read rules file: %w", err)
	}
	rf := rulesFile{Scoring: base}
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return base, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rf.Scoring, nil
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	switch c.VectorBackend {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("CARRIERFIT_VECTOR_BACKEND must be sqlite or charm, got %q", c.VectorBackend)
	}
	if c.Chunking.TargetTokens < 1 {
		return fmt.Errorf("CARRIERFIT_CHUNK_TOKENS must be positive, got %d", c.Chunking.TargetTokens)
	}
	if c.Chunking.OverlapWords < 0 {
		return fmt.Errorf("CARRIERFIT_CHUNK_OVERLAP cannot be negative, got %d", c.Chunking.OverlapWords)
	}
	if c.Retrieval.TopK < 1 || c.Retrieval.TopK > 50 {
		return fmt.Errorf("CARRIERFIT_TOP_K must be 1-50, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.Timeout <= 0 {
		return fmt.Errorf("CARRIERFIT_RETRIEVAL_TIMEOUT must be positive, got %v", c.Retrieval.Timeout)
	}
	if c.Retrieval.Concurrency < 1 {
		return fmt.Errorf("CARRIERFIT_CONCURRENCY must be positive, got %d", c.Retrieval.Concurrency)
	}
	return c.Scoring.Validate()
}

// Validate checks threshold ranges and their relative ordering
func (s Scoring) Validate() error {
	if s.SimilarityFloor < 0 || s.SimilarityFloor > 1 {
		return fmt.Errorf("similarity_floor must be 0-1, got %f", s.SimilarityFloor)
	}
	if s.CitationFloor < 0 || s.CitationFloor > 1 {
		return fmt.Errorf("citation_floor must be 0-1, got %f", s.CitationFloor)
	}
	if s.MaxFitScore < 0 || s.MaxFitScore > 100 {
		return fmt.Errorf("max_fit_score must be 0-100, got %d", s.MaxFitScore)
	}
	if s.NeutralScore < 0 || s.NeutralScore > s.MaxFitScore {
		return fmt.Errorf("neutral_score must be 0-%d, got %d", s.MaxFitScore, s.NeutralScore)
	}
	if s.MediumTier > s.HighTier {
		return fmt.Errorf("medium_tier (%d) cannot exceed high_tier (%d)", s.MediumTier, s.HighTier)
	}
	if s.MaxCitations < 0 {
		return fmt.Errorf("max_citations cannot be negative, got %d", s.MaxCitations)
	}
	if s.SnippetRunes < 1 {
		return fmt.Errorf("snippet_runes must be positive, got %d", s.SnippetRunes)
	}
	if s.FinancialThreshold < s.AcceleratedMaxCoverage {
		return fmt.Errorf("financial_threshold (%d) must be >= accelerated_max_coverage (%d)",
			s.FinancialThreshold, s.AcceleratedMaxCoverage)
	}
	if s.BMIMin >= s.BMIMax {
		return fmt.Errorf("bmi_min (%f) must be below bmi_max (%f)", s.BMIMin, s.BMIMax)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
