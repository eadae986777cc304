package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gitpraise configuration.
type Config struct {
	Listen string      `yaml:"listen"`
	DBPath string      `yaml:"db_path"`
	LLM    LLMConfig   `yaml:"llm"`
	Cache  CacheConfig `yaml:"cache"`
}

// LLMConfig defines the chat-completion backend. BaseURL, APIKey and Model
// must all be present before analysis requests can be served.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// Complete reports whether every required backend setting is present.
func (l LLMConfig) Complete() bool {
	return l.BaseURL != "" && l.APIKey != "" && l.Model != ""
}

// CacheConfig controls the analysis cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "gitpraise.db",
		LLM: LLMConfig{
			MaxTokens: 1280,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
