// Package advisor generates remediation guidance for blocking findings using
// a configurable LLM provider. It is advisory output only; nothing in the
// scan or gate pipeline depends on it.
package advisor

import (
	"context"
	"fmt"
)

// Provider abstracts the model backends the advisor can talk to.
type Provider interface {
	// Generate returns a completion for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// ListModels returns the model names the backend offers, used by the
	// setup wizard.
	ListModels(ctx context.Context) ([]string, error)
}

// NewProvider builds a provider by name: "gemini", "openai", or "anthropic".
func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (Provider, error) {
	switch providerName {
	case "gemini":
		return NewGeminiProvider(ctx, apiKey, modelName)
	case "openai":
		return NewOpenAIProvider(apiKey, modelName), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
