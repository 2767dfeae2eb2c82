package model

import "context"

// Model issues one blocking request against a reasoning backend and returns
// the single assistant message it produced.
type Model interface {
	Generate(ctx context.Context, req Request) (Message, error)
}

// Provider constructs concrete Model implementations for a specific backend
// such as Anthropic or OpenAI.
type Provider interface {
	Name() string
	NewModel(ctx context.Context, cfg ModelConfig) (Model, error)
}

// ModelConfig captures the settings required to build a Model instance.
type ModelConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string

	// MaxTokens bounds the response length. Zero means the provider default.
	MaxTokens int
	// Temperature is the sampling temperature. Negative means the provider
	// default.
	Temperature float64
}
