package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Chat LLM configuration (OpenAI-compatible protocol)
	LLMProvider string // groq, openai, deepseek, openrouter, ollama
	LLMAPIKey   string
	LLMBaseURL  string // optional, has default per provider
	LLMModel    string
	LLMTimeout  int // seconds

	// Embedding configuration
	EmbeddingProvider   string // openai-compatible provider name, or "hash" for the offline embedder
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int
	EmbeddingTimeout    int // seconds

	// Intent classifier configuration. Falls back to the chat LLM when unset.
	IntentModel   string
	IntentEnabled bool

	// Query embedding cache
	CacheBackend  string // memory, redis, none
	CacheSize     int
	CacheTTL      int // seconds
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Retrieval tuning
	RetrievalLimit       int
	RetrievalMaxDistance float64

	// Ingestion tuning
	IngestConcurrency int
	IngestRatePerSec  float64

	Mode      string
	Addr      string
	Port      int
	Driver    string
	DSN       string
	Data      string
	StaticDir string
	Version   string
	LogLevel  string
	LogFormat string
}

// Provider default configurations for LLM.
// Used when the base URL or model is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"groq": {
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama3-8b-8192",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "meta-llama/llama-3.1-8b-instruct",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

var embeddingProviderDefaults = map[string]struct {
	BaseURL    string
	Model      string
	Dimensions int
}{
	"openai": {
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 384,
	},
	"ollama": {
		BaseURL:    "http://localhost:11434/v1",
		Model:      "all-minilm",
		Dimensions: 384,
	},
	"hash": {
		Model:      "sha256-hash",
		Dimensions: 384,
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the chat LLM API key is configured.
// Ollama runs locally and needs no key.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("NEUSEARCH_LLM_PROVIDER", "groq")
	p.LLMAPIKey = getEnvOrDefault("NEUSEARCH_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("NEUSEARCH_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("NEUSEARCH_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("NEUSEARCH_LLM_TIMEOUT_SECONDS", 60)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("Unknown LLM provider, using default: groq", "provider", p.LLMProvider)
		p.LLMProvider = "groq"
	}
	defaults := llmProviderDefaults[p.LLMProvider]
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = defaults.BaseURL
	}
	if p.LLMModel == "" {
		p.LLMModel = defaults.Model
	}

	p.EmbeddingProvider = getEnvOrDefault("NEUSEARCH_EMBEDDING_PROVIDER", "openai")
	p.EmbeddingModel = getEnvOrDefault("NEUSEARCH_EMBEDDING_MODEL", "")
	p.EmbeddingAPIKey = getEnvOrDefault("NEUSEARCH_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("NEUSEARCH_EMBEDDING_BASE_URL", "")
	p.EmbeddingDimensions = getEnvOrDefaultInt("NEUSEARCH_EMBEDDING_DIMENSIONS", 0)
	p.EmbeddingTimeout = getEnvOrDefaultInt("NEUSEARCH_EMBEDDING_TIMEOUT_SECONDS", 30)

	if _, ok := embeddingProviderDefaults[p.EmbeddingProvider]; !ok && p.EmbeddingBaseURL == "" {
		slog.Warn("Unknown embedding provider without base URL, using default: openai", "provider", p.EmbeddingProvider)
		p.EmbeddingProvider = "openai"
	}
	if ed, ok := embeddingProviderDefaults[p.EmbeddingProvider]; ok {
		if p.EmbeddingBaseURL == "" {
			p.EmbeddingBaseURL = ed.BaseURL
		}
		if p.EmbeddingModel == "" {
			p.EmbeddingModel = ed.Model
		}
		if p.EmbeddingDimensions <= 0 {
			p.EmbeddingDimensions = ed.Dimensions
		}
	}
	if p.EmbeddingDimensions <= 0 {
		p.EmbeddingDimensions = 384
	}

	p.IntentModel = getEnvOrDefault("NEUSEARCH_INTENT_MODEL", "")
	p.IntentEnabled = getEnvOrDefault("NEUSEARCH_INTENT_ENABLED", "true") == "true"

	p.CacheBackend = getEnvOrDefault("NEUSEARCH_CACHE_BACKEND", "memory")
	p.CacheSize = getEnvOrDefaultInt("NEUSEARCH_CACHE_SIZE", 1000)
	p.CacheTTL = getEnvOrDefaultInt("NEUSEARCH_CACHE_TTL_SECONDS", 600)
	p.RedisAddr = getEnvOrDefault("NEUSEARCH_REDIS_ADDR", "localhost:6379")
	p.RedisPassword = getEnvOrDefault("NEUSEARCH_REDIS_PASSWORD", "")
	p.RedisDB = getEnvOrDefaultInt("NEUSEARCH_REDIS_DB", 0)

	p.RetrievalLimit = getEnvOrDefaultInt("NEUSEARCH_RETRIEVAL_LIMIT", 3)
	p.RetrievalMaxDistance = getEnvOrDefaultFloat("NEUSEARCH_RETRIEVAL_MAX_DISTANCE", 0)

	p.IngestConcurrency = getEnvOrDefaultInt("NEUSEARCH_INGEST_CONCURRENCY", 4)
	p.IngestRatePerSec = getEnvOrDefaultFloat("NEUSEARCH_INGEST_RATE_PER_SECOND", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	case "sqlite":
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("neusearch_%s.db", p.Mode))
		}
	default:
		return errors.Errorf("unsupported driver %q (postgres, sqlite)", p.Driver)
	}

	if p.RetrievalLimit <= 0 {
		p.RetrievalLimit = 3
	}
	if p.RetrievalMaxDistance < 0 || p.RetrievalMaxDistance > 2 {
		return errors.Errorf("retrieval max distance must be within [0, 2], got %v", p.RetrievalMaxDistance)
	}
	if p.IngestConcurrency <= 0 {
		p.IngestConcurrency = 1
	}

	return nil
}
