package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/neusearch/neusearch/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Intent    IntentConfig
	Cache     CacheConfig
	Enabled   bool
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // openai, ollama, hash, or any OpenAI-compatible name with BaseURL
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
	Timeout    time.Duration
}

// LLMConfig represents LLM configuration.
// Field layout matches llm.Config so the two convert directly.
type LLMConfig struct {
	Provider    string // groq, openai, deepseek, openrouter, ollama
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     int // seconds
}

// IntentConfig represents the intent classifier configuration.
// It reuses the chat LLM endpoint with a small token budget.
type IntentConfig struct {
	Model   string
	Enabled bool
}

// CacheConfig represents the query embedding cache configuration.
type CacheConfig struct {
	Backend       string // memory, redis, none
	Size          int
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	cfg.Embedding = EmbeddingConfig{
		Provider:   p.EmbeddingProvider,
		Model:      p.EmbeddingModel,
		APIKey:     p.EmbeddingAPIKey,
		BaseURL:    p.EmbeddingBaseURL,
		Dimensions: p.EmbeddingDimensions,
		Timeout:    time.Duration(p.EmbeddingTimeout) * time.Second,
	}
	// Same vendor for chat and embeddings shares one key.
	if cfg.Embedding.APIKey == "" && p.EmbeddingProvider == p.LLMProvider {
		cfg.Embedding.APIKey = p.LLMAPIKey
	}

	cfg.LLM = LLMConfig{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		MaxTokens:   500,
		Temperature: 0.7,
		Timeout:     p.LLMTimeout,
	}

	cfg.Intent = IntentConfig{
		Model:   p.IntentModel,
		Enabled: p.IntentEnabled,
	}
	if cfg.Intent.Model == "" {
		cfg.Intent.Model = p.LLMModel
	}

	cfg.Cache = CacheConfig{
		Backend:       p.CacheBackend,
		Size:          p.CacheSize,
		TTL:           time.Duration(p.CacheTTL) * time.Second,
		RedisAddr:     p.RedisAddr,
		RedisPassword: p.RedisPassword,
		RedisDB:       p.RedisDB,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	if c.Embedding.Provider != "hash" && c.Embedding.Provider != "ollama" && c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}

	switch c.Cache.Backend {
	case "memory", "redis", "none", "":
	default:
		return fmt.Errorf("unsupported cache backend %q (memory, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New("redis address is required for the redis cache backend")
	}

	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	return nil
}
