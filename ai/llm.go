package ai

import (
	"github.com/neusearch/neusearch/ai/core/llm"
)

// LLMService is the LLM service interface.
type LLMService = llm.Service

// NewLLMService creates a new LLMService.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	return llm.NewService((*llm.Config)(cfg))
}

// NewIntentLLMService creates the classifier client: the chat endpoint with
// the intent model and a ten-token budget.
func NewIntentLLMService(cfg *LLMConfig, intent *IntentConfig) (LLMService, error) {
	c := *cfg
	if intent.Model != "" {
		c.Model = intent.Model
	}
	c.MaxTokens = 10
	c.Temperature = 0
	return llm.NewService((*llm.Config)(&c))
}

// NewGeneralLLMService creates the small-talk client: the chat endpoint with
// a 150-token budget.
func NewGeneralLLMService(cfg *LLMConfig) (LLMService, error) {
	c := *cfg
	c.MaxTokens = 150
	return llm.NewService((*llm.Config)(&c))
}
