package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/ai/mocks"
	"github.com/neusearch/neusearch/store"
)

func sampleProducts() []*store.Product {
	return []*store.Product{
		{ID: 1, Name: "Nike Air Max 270", Category: "Footwear", Price: 150, Description: "Comfortable running shoes"},
		{ID: 2, Name: "Trail Shoe", Category: "Footwear", Price: 89.5, Description: "Grippy trail runner"},
	}
}

func TestBuildProductContext(t *testing.T) {
	assert.Equal(t, EmptyContext, BuildProductContext(nil))

	got := BuildProductContext(sampleProducts())
	assert.Equal(t,
		"- Nike Air Max 270 ($150.00) - Comfortable running shoes\n- Trail Shoe ($89.50) - Grippy trail runner",
		got)
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("  shoes please ", "- a ($1.00) - b")
	assert.Equal(t, "User Query: shoes please\n\nContext: - a ($1.00) - b", got)
}

func TestResponseGenerator_Generate(t *testing.T) {
	llmSvc := mocks.NewMockLLM().WithDefaultResponse("Try the Nike Air Max 270 for $150.")
	m := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	g := NewResponseGenerator(llmSvc, nil, "llama3-8b-8192", m)

	products := sampleProducts()
	resp, err := g.Generate(context.Background(), "I need blue gym shoes", products)
	require.NoError(t, err)
	assert.Equal(t, "Try the Nike Air Max 270 for $150.", resp.Text)
	assert.Equal(t, products, resp.Products)

	calls := llmSvc.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, "system", calls[0][0].Role)
	assert.Contains(t, calls[0][0].Content, "NeuSearch AI")
	assert.Contains(t, calls[0][1].Content, "User Query: I need blue gym shoes")
	assert.Contains(t, calls[0][1].Content, "- Nike Air Max 270 ($150.00)")

	count, err := testutil.GatherAndCount(m.Registry(), "neusearch_ai_llm_tokens_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResponseGenerator_GenerateEmptyContext(t *testing.T) {
	llmSvc := mocks.NewMockLLM().WithDefaultResponse("Sorry, we don't have that.")
	g := NewResponseGenerator(llmSvc, nil, "m", nil)

	resp, err := g.Generate(context.Background(), "unicorn saddle", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, we don't have that.", resp.Text)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
	assert.Contains(t, llmSvc.Calls()[0][1].Content, EmptyContext)
}

func TestResponseGenerator_GenerateFailure(t *testing.T) {
	llmSvc := mocks.NewMockLLM().WithError(errors.New("503 upstream"))
	g := NewResponseGenerator(llmSvc, nil, "m", nil)

	_, err := g.Generate(context.Background(), "shoes", sampleProducts())
	require.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Equal(t, 1, llmSvc.CallCount())

	_, err = NewResponseGenerator(nil, nil, "m", nil).Generate(context.Background(), "shoes", nil)
	require.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestResponseGenerator_GenerateGeneral(t *testing.T) {
	chat := mocks.NewMockLLM()
	general := mocks.NewMockLLM().WithResponse("thanks!", "You're welcome! Anything else to find?")
	g := NewResponseGenerator(chat, general, "m", nil)

	assert.Equal(t, "You're welcome! Anything else to find?", g.GenerateGeneral(context.Background(), "thanks!"))
	assert.Zero(t, chat.CallCount())
	assert.Contains(t, general.Calls()[0][0].Content, "Handle general queries warmly")

	failing := NewResponseGenerator(mocks.NewMockLLM().WithError(errors.New("down")), nil, "m", nil)
	assert.Equal(t, GeneralFallbackReply, failing.GenerateGeneral(context.Background(), "thanks!"))

	assert.Equal(t, GeneralFallbackReply, NewResponseGenerator(nil, nil, "m", nil).GenerateGeneral(context.Background(), "x"))
}
