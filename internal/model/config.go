package model

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete releasehub configuration
type Config struct {
	Feeds  FeedConfig  `yaml:"feeds" mapstructure:"feeds"`
	Paths  PathConfig  `yaml:"paths" mapstructure:"paths"`
	HTTP   HTTPConfig  `yaml:"http" mapstructure:"http"`
	Cache  CacheConfig `yaml:"cache" mapstructure:"cache"`
	Limits LimitConfig `yaml:"limits" mapstructure:"limits"`
	LLM    LLMConfig   `yaml:"llm" mapstructure:"llm"`
}

// FeedConfig holds the upstream release-signal endpoints
type FeedConfig struct {
	ComponentURL string `yaml:"component_url" mapstructure:"component_url"` // OS component feed base
	RedditURL    string `yaml:"reddit_url" mapstructure:"reddit_url"`       // General discussion feed base
	VendorURL    string `yaml:"vendor_url" mapstructure:"vendor_url"`       // Vendor names endpoint
}

// PathConfig holds on-disk locations
type PathConfig struct {
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// HTTPConfig controls remote fetches
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig holds freshness windows for cached feed responses
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	ComponentTTL time.Duration `yaml:"component_ttl" mapstructure:"component_ttl"`
	RedditTTL    time.Duration `yaml:"reddit_ttl" mapstructure:"reddit_ttl"`
	VendorTTL    time.Duration `yaml:"vendor_ttl" mapstructure:"vendor_ttl"`
	MemoryTTL    time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// LimitConfig caps extraction and evidence sizes
type LimitConfig struct {
	MaxSentencesPerItem int `yaml:"max_sentences_per_item" mapstructure:"max_sentences_per_item"`
	EvidenceLimit       int `yaml:"evidence_limit" mapstructure:"evidence_limit"`
	FetchWorkers        int `yaml:"fetch_workers" mapstructure:"fetch_workers"`
}

// LLMConfig configures the optional rephrasing provider
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "", "openai", "ollama"
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Feeds: FeedConfig{
			ComponentURL: "https://releasetrain.io/api/component",
			RedditURL:    "https://releasetrain.io/api/reddit",
			VendorURL:    "https://releasetrain.io/api/c/names",
		},
		Paths: PathConfig{
			DBPath:   "releasetrain.duckdb",
			CacheDir: ".live_cache",
		},
		HTTP: HTTPConfig{
			Timeout:       25 * time.Second,
			UserAgent:     "releasehub/0.1",
			MaxBodyBytes:  20_000_000,
			RatePerSecond: 2,
			Burst:         4,
			RespectRobots: false,
		},
		Cache: CacheConfig{
			Enabled:      true,
			ComponentTTL: 12 * time.Hour,
			RedditTTL:    time.Hour,
			VendorTTL:    7 * 24 * time.Hour,
			MemoryTTL:    5 * time.Minute,
		},
		Limits: LimitConfig{
			MaxSentencesPerItem: 200,
			EvidenceLimit:       20,
			FetchWorkers:        3,
		},
		LLM: LLMConfig{
			Timeout: 30,
		},
	}
}

// Validate checks the fields every command depends on
func (c *Config) Validate() error {
	switch {
	case c.Paths.DBPath == "":
		return errors.Wrap(ErrInvalidConfig, "paths.db_path is required")
	case c.Paths.CacheDir == "":
		return errors.Wrap(ErrInvalidConfig, "paths.cache_dir is required")
	case c.HTTP.Timeout <= 0:
		return errors.Wrap(ErrInvalidConfig, "http.timeout must be positive")
	case c.Limits.MaxSentencesPerItem <= 0:
		return errors.Wrap(ErrInvalidConfig, "limits.max_sentences_per_item must be positive")
	case c.Limits.EvidenceLimit <= 0:
		return errors.Wrap(ErrInvalidConfig, "limits.evidence_limit must be positive")
	}
	switch c.LLM.Provider {
	case "", "openai", "ollama":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown llm.provider %q (supported: openai, ollama)", c.LLM.Provider)
	}
	return nil
}
