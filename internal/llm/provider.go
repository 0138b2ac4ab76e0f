// Package llm provides the provider gateway: a uniform generate call over
// interchangeable LLM backends with distinct calling conventions.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider identifies an LLM backend.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// ParseProvider maps a user-supplied provider name to a Provider.
// Matching is case-insensitive.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return ProviderGemini, nil
	case "groq":
		return ProviderGroq, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected Gemini or Groq)", name)
	}
}

// generator is the adapter contract each backend implements. Callers never
// see it; the registry dispatches on Provider.
type generator interface {
	generate(ctx context.Context, model, systemInstruction, userPrompt string) (string, error)
}

// NotConfiguredError indicates the provider has no client handle in the
// registry, typically because its API key was absent at startup.
type NotConfiguredError struct {
	Provider Provider
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("provider %s is not configured (missing API key)", e.Provider)
}

// UpstreamError indicates the provider's own call failed: timeout, quota,
// or a malformed response.
type UpstreamError struct {
	Provider Provider
	Timeout  bool
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s: upstream timeout: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("provider %s: upstream failure: %v", e.Provider, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
