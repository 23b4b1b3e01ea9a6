package llm

import "context"

// MockLLMClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockLLMClient struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns empty string and nil error.
	GenerateFunc func(ctx context.Context, instructions string, history []Message) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	GenerateCalls int
	// Prompts records every instructions argument, in order.
	Prompts []string
}

// NewMockLLMClient creates a new mock with sensible defaults.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{
		Model: "mock-model",
	}
}

// Generate implements LLMClient.
func (m *MockLLMClient) Generate(ctx context.Context, instructions string, history []Message) (string, error) {
	m.GenerateCalls++
	m.Prompts = append(m.Prompts, instructions)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, instructions, history)
	}
	return "", nil
}

// GetModel implements LLMClient.
func (m *MockLLMClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Ensure mock satisfies the interface.
var _ LLMClient = (*MockLLMClient)(nil)
