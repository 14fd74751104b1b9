package providers

import (
	"context"
	"fmt"
)

// Request contains the data sent to an LLM for one review call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response contains the normalized response from an LLM.
type Response struct {
	Text       string
	TokensUsed int
}

// Client is the provider abstraction interface. Generate performs exactly
// one request; retry and fallback are the caller's job. Failures come back
// as classified errors (see errors.go) so callers never branch on
// provider-specific response shapes.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider client by name.
func New(provider, model string) (Client, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "openrouter":
		return NewOpenRouter(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
