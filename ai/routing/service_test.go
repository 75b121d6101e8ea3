package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neusearch/neusearch/ai/mocks"
)

func TestParseIntentReply(t *testing.T) {
	assert.Equal(t, IntentGeneral, parseIntentReply("GENERAL_QUERY"))
	assert.Equal(t, IntentGeneral, parseIntentReply(" general_query.\n"))
	assert.Equal(t, IntentProduct, parseIntentReply("PRODUCT_QUERY"))
	assert.Equal(t, IntentProduct, parseIntentReply("I am not sure"))
	assert.Equal(t, IntentProduct, parseIntentReply(""))
}

func TestService_GreetingSkipsClassifier(t *testing.T) {
	llmSvc := mocks.NewMockLLM().WithDefaultResponse("GENERAL_QUERY")
	svc := NewService(Config{Classifier: NewLLMClassifier(llmSvc, "m", nil), EnableCache: true})

	d := svc.ClassifyIntent(context.Background(), "Hello")
	assert.Equal(t, Decision{Intent: IntentGreeting, Source: SourceRule}, d)
	assert.Zero(t, llmSvc.CallCount())
}

func TestService_LLMClassification(t *testing.T) {
	llmSvc := mocks.NewMockLLM().
		WithResponse("thanks, you were great", "GENERAL_QUERY").
		WithDefaultResponse("PRODUCT_QUERY")
	svc := NewService(Config{Classifier: NewLLMClassifier(llmSvc, "m", nil), EnableCache: true})
	ctx := context.Background()

	d := svc.ClassifyIntent(ctx, "thanks, you were great")
	assert.Equal(t, IntentGeneral, d.Intent)
	assert.Equal(t, SourceLLM, d.Source)

	d = svc.ClassifyIntent(ctx, "I need blue gym shoes")
	assert.Equal(t, IntentProduct, d.Intent)
	assert.Equal(t, SourceLLM, d.Source)

	d = svc.ClassifyIntent(ctx, "thanks, you were great")
	assert.Equal(t, IntentGeneral, d.Intent)
	assert.Equal(t, SourceCache, d.Source)
	assert.Equal(t, 2, llmSvc.CallCount())

	calls := llmSvc.Calls()
	assert.Contains(t, calls[0][0].Content, "PRODUCT_QUERY or GENERAL_QUERY")
}

func TestService_ClassifierFailureDefaultsToProduct(t *testing.T) {
	llmSvc := mocks.NewMockLLM().WithError(errors.New("rate limited"))
	svc := NewService(Config{Classifier: NewLLMClassifier(llmSvc, "m", nil), EnableCache: true})

	d := svc.ClassifyIntent(context.Background(), "good morning friend")
	assert.Equal(t, Decision{Intent: IntentProduct, Source: SourceDefault}, d)

	// Failures are not cached.
	svc.ClassifyIntent(context.Background(), "good morning friend")
	assert.Equal(t, 2, llmSvc.CallCount())
}

func TestService_NoClassifier(t *testing.T) {
	svc := NewService(Config{})

	assert.Equal(t, IntentProduct, svc.ClassifyIntent(context.Background(), "thanks").Intent)
	assert.Equal(t, SourceDefault, svc.ClassifyIntent(context.Background(), "thanks").Source)
	assert.True(t, svc.IsListAll("list all products"))
}

func TestLLMClassifier_Nil(t *testing.T) {
	var c *LLMClassifier
	intent, err := c.Classify(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, IntentProduct, intent)
}
