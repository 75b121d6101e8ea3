// Package routing decides how a chat turn is answered before any retrieval runs.
package routing

import "context"

// Intent is the routing outcome for a single user message.
type Intent string

const (
	// IntentGreeting is an exact greeting or small-talk phrase answered with a canned reply.
	IntentGreeting Intent = "greeting"
	// IntentGeneral is general chat answered by the model without products.
	IntentGeneral Intent = "general"
	// IntentProduct is a product search.
	IntentProduct Intent = "product"
)

// Source records which layer produced a routing decision.
type Source string

const (
	SourceRule    Source = "rule"
	SourceCache   Source = "cache"
	SourceLLM     Source = "llm"
	SourceDefault Source = "default"
)

// Decision is the result of ClassifyIntent.
type Decision struct {
	Intent Intent
	Source Source
}

// IntentClassifier classifies a user message.
// Implementations never fail: an unclassifiable message is a product query.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, input string) Decision
}
