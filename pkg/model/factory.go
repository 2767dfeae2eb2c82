package model

import (
	"context"
	"fmt"
)

// Factory maps provider names onto Provider implementations. The set is
// fixed at construction; there is no runtime registration.
type Factory struct {
	providers map[string]Provider
}

// NewFactory constructs a factory over the given providers.
func NewFactory(providers ...Provider) *Factory {
	f := &Factory{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			f.providers[p.Name()] = p
		}
	}
	return f
}

// NewModel builds a model instance through the provider declared in cfg.
func (f *Factory) NewModel(ctx context.Context, cfg ModelConfig) (Model, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("model provider not specified")
	}
	provider, ok := f.providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("model provider %q is not registered", cfg.Provider)
	}
	return provider.NewModel(ctx, cfg)
}
