package routing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/neusearch/neusearch/ai/core/llm"
	"github.com/neusearch/neusearch/ai/metrics"
)

const intentSystemPrompt = "Classify this user message as either 'PRODUCT_QUERY' or 'GENERAL_QUERY'. " +
	"PRODUCT_QUERY means they want to find/buy products. " +
	"GENERAL_QUERY means greetings, questions about you, or general chat. " +
	"Reply with only one word: PRODUCT_QUERY or GENERAL_QUERY"

// errNoClassifier is returned when the classifier has no model behind it.
var errNoClassifier = errors.New("intent classifier not configured")

// LLMClassifier asks a chat model for PRODUCT_QUERY or GENERAL_QUERY.
type LLMClassifier struct {
	llm     llm.Service
	model   string
	metrics *metrics.PrometheusExporter
}

// NewLLMClassifier creates a classifier. model is only a metrics label.
func NewLLMClassifier(svc llm.Service, model string, m *metrics.PrometheusExporter) *LLMClassifier {
	return &LLMClassifier{llm: svc, model: model, metrics: m}
}

// Classify returns IntentGeneral when the reply mentions GENERAL and
// IntentProduct for anything else. The error is non-nil only when the call failed.
func (c *LLMClassifier) Classify(ctx context.Context, input string) (Intent, error) {
	if c == nil || c.llm == nil {
		return IntentProduct, errNoClassifier
	}

	start := time.Now()
	reply, stats, err := c.llm.Chat(ctx, llm.FormatMessages(intentSystemPrompt, input))
	latency := time.Since(start)
	if stats != nil {
		c.metrics.RecordLLMCall(c.model, "intent", latency, stats.PromptTokens, stats.CompletionTokens)
	} else {
		c.metrics.RecordLLMCall(c.model, "intent", latency, 0, 0)
	}
	if err != nil {
		return IntentProduct, err
	}

	intent := parseIntentReply(reply)
	slog.DebugContext(ctx, "intent classified by llm",
		"input", truncate(input, 50),
		"reply", truncate(reply, 30),
		"intent", intent,
		"latency_ms", latency.Milliseconds(),
	)
	return intent, nil
}

func parseIntentReply(reply string) Intent {
	if strings.Contains(strings.ToUpper(reply), "GENERAL") {
		return IntentGeneral
	}
	return IntentProduct
}
