package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neusearch/neusearch/ai/core/llm"
	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/util"
	"github.com/neusearch/neusearch/store"
)

// ErrGenerationUnavailable reports that the chat-completion call failed.
// The turn is aborted; there is no automatic retry.
var ErrGenerationUnavailable = errors.New("generation service unavailable")

// GeneralFallbackReply is used when the small-talk call fails.
const GeneralFallbackReply = "Hello! I'm NeuSearch AI. How can I help you find products today?"

// Response is the generated answer and the products it was grounded on.
type Response struct {
	Text     string
	Products []*store.Product
}

// ResponseGenerator turns a query and retrieved products into an answer.
type ResponseGenerator struct {
	chat    LLMService
	general LLMService
	model   string
	metrics *metrics.PrometheusExporter
}

// NewResponseGenerator creates a generator. general answers small talk and
// may be nil, in which case chat is used for it too. model is only a metrics label.
func NewResponseGenerator(chat, general LLMService, model string, m *metrics.PrometheusExporter) *ResponseGenerator {
	if general == nil {
		general = chat
	}
	return &ResponseGenerator{
		chat:    chat,
		general: general,
		model:   model,
		metrics: m,
	}
}

// Generate asks the model to answer query from products only. The returned
// Products is the same slice that was passed in.
func (g *ResponseGenerator) Generate(ctx context.Context, query string, products []*store.Product) (*Response, error) {
	if g.chat == nil {
		return nil, fmt.Errorf("%w: no LLM configured", ErrGenerationUnavailable)
	}

	messages := llm.FormatMessages(assistantSystemPrompt, BuildUserPrompt(query, BuildProductContext(products)))

	start := time.Now()
	text, stats, err := g.chat.Chat(ctx, messages)
	g.record("generate", time.Since(start), stats)
	if err != nil {
		slog.ErrorContext(ctx, "response generation failed",
			"request_id", util.RequestID(ctx),
			"model", g.model,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	if products == nil {
		products = []*store.Product{}
	}
	return &Response{Text: text, Products: products}, nil
}

// GenerateGeneral answers a greeting or a question about the assistant.
// It never fails: a remote error yields GeneralFallbackReply.
func (g *ResponseGenerator) GenerateGeneral(ctx context.Context, query string) string {
	if g.general == nil {
		return GeneralFallbackReply
	}

	start := time.Now()
	text, stats, err := g.general.Chat(ctx, llm.FormatMessages(generalSystemPrompt, query))
	g.record("general", time.Since(start), stats)
	if err != nil || text == "" {
		slog.WarnContext(ctx, "general reply failed, using fallback",
			"request_id", util.RequestID(ctx),
			"error", err,
		)
		return GeneralFallbackReply
	}
	return text
}

func (g *ResponseGenerator) record(purpose string, latency time.Duration, stats *llm.LLMCallStats) {
	if stats == nil {
		g.metrics.RecordLLMCall(g.model, purpose, latency, 0, 0)
		return
	}
	g.metrics.RecordLLMCall(g.model, purpose, latency, stats.PromptTokens, stats.CompletionTokens)
}
