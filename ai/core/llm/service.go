package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/neusearch/neusearch/internal/util"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// LLMCallStats represents statistics for a single LLM call.
type LLMCallStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// TotalDurationMs is the total wall-clock time for the request.
	TotalDurationMs int64 `json:"total_duration_ms"`
}

// Service is the LLM service interface.
type Service interface {
	// Chat performs synchronous chat. Returns content, statistics, and error.
	Chat(ctx context.Context, messages []Message) (string, *LLMCallStats, error)
}

// Warmer is implemented by services that can pre-establish their connection.
type Warmer interface {
	Warmup(ctx context.Context)
}

// Config represents LLM service configuration.
type Config struct {
	Provider    string // groq, openai, deepseek, openrouter, ollama
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 500
	Temperature float32 // 0 leaves the provider default
	Timeout     int     // Request timeout in seconds (default: 60)
}

var defaultBaseURLs = map[string]string{
	"groq":       "https://api.groq.com/openai/v1",
	"openai":     "https://api.openai.com/v1",
	"deepseek":   "https://api.deepseek.com",
	"openrouter": "https://openrouter.ai/api/v1",
	"ollama":     "http://localhost:11434/v1",
}

// ErrEmptyResponse is returned when the provider answers without choices.
var ErrEmptyResponse = errors.New("empty response from LLM")

type service struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewService creates an OpenAI-compatible chat client. BaseURL wins over the
// provider table, so any compatible endpoint works as "custom".
func NewService(cfg *Config) (Service, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		var ok bool
		if baseURL, ok = defaultBaseURLs[cfg.Provider]; !ok {
			return nil, fmt.Errorf("unsupported LLM provider %q without base URL", cfg.Provider)
		}
	}
	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		slog.Warn("LLM API key is empty", "provider", cfg.Provider, "model", cfg.Model)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = sharedHTTPClient

	s := &service{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    cfg.Provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.Timeout) * time.Second,
	}
	if s.maxTokens <= 0 {
		s.maxTokens = 500
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	return s, nil
}

func (s *service) Chat(ctx context.Context, messages []Message) (string, *LLMCallStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, elapsed, err := s.complete(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages:    convertMessages(messages),
	})
	if err != nil {
		slog.ErrorContext(ctx, "LLM chat failed",
			"request_id", util.RequestID(ctx),
			"provider", s.provider,
			"model", s.model,
			"error", err,
		)
		return "", nil, fmt.Errorf("LLM chat failed: %w", err)
	}

	stats := &LLMCallStats{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		TotalDurationMs:  elapsed.Milliseconds(),
	}
	content := resp.Choices[0].Message.Content
	slog.DebugContext(ctx, "LLM chat completed",
		"request_id", util.RequestID(ctx),
		"model", s.model,
		"messages", len(messages),
		"reply_len", len(content),
		"total_tokens", stats.TotalTokens,
		"duration_ms", stats.TotalDurationMs,
	)
	return content, stats, nil
}

// Warmup sends a one-token request to open the connection before the first
// chat turn. Failure is logged only.
func (s *service) Warmup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, elapsed, err := s.complete(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: 1,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Hi"}},
	})
	if err != nil {
		slog.Warn("LLM warmup failed, first request may be slower",
			"provider", s.provider, "model", s.model, "error", err, "duration_ms", elapsed.Milliseconds())
		return
	}
	slog.Info("LLM connection warmed up",
		"provider", s.provider, "model", s.model, "duration_ms", elapsed.Milliseconds())
}

func (s *service) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, time.Duration, error) {
	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		return resp, elapsed, err
	}
	if len(resp.Choices) == 0 {
		return resp, elapsed, ErrEmptyResponse
	}
	return resp, elapsed, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleAssistant:
			role = m.Role
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// sharedHTTPClient is reused by every chat client so the chat, general and
// intent services share one connection pool.
var sharedHTTPClient = &http.Client{
	Timeout: 90 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// FormatMessages builds a single-turn conversation. An empty system prompt
// is omitted.
func FormatMessages(systemPrompt, userContent string) []Message {
	if systemPrompt == "" {
		return []Message{UserMessage(userContent)}
	}
	return []Message{SystemPrompt(systemPrompt), UserMessage(userContent)}
}
