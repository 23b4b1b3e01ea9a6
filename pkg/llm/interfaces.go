// Package llm wraps the generation capability behind a provider-neutral
// client interface.
package llm

import "context"

// Message is one prior conversation turn fed to the generator.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// LLMClient is the generation capability: synchronous, may fail or time
// out. Use this interface for dependency injection to enable mocking in
// tests.
type LLMClient interface {
	// Generate sends the instruction text plus prior history and returns
	// the raw model reply.
	Generate(ctx context.Context, instructions string, history []Message) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure implementations satisfy LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
)
