package ai

import (
	"context"
)

// Provider is the interface for LLM providers
type Provider interface {
	// Complete sends a single composed prompt and returns the assistant text
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Chat handles a multi-turn conversation and returns the assistant text
	Chat(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error)
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ProviderFactory creates an LLM provider from a flat config map
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available LLM providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "LLM provider not found: " + e.Name
}
