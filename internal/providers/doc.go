// Package providers implements the Client interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini),
// OpenRouter, and Ollama / LMStudio for local models.
//
// Each adapter performs exactly one HTTP request per Generate call and
// normalizes failures into the classified error types in errors.go
// (rate limit, server error, and timeout are retryable; auth, quota, and
// bad request are fatal for the candidate). Retry, backoff, and fallback
// across candidates live in the review package, never here.
//
// Base URLs are overridable via LOUPE_*_BASE_URL environment variables so
// tests can point adapters at local httptest servers.
//
// Use [New] to obtain a Client by provider name and model string.
package providers
