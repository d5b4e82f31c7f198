package service

import "github.com/yungbote/wellspring-backend/internal/guidance/provider"

// Strategy is RulesOnly or ExternalProvider.
type Strategy interface {
	strategy()
	Name() string
}

// RulesOnly answers every request with the deterministic composer.
type RulesOnly struct{}

func (RulesOnly) strategy()    {}
func (RulesOnly) Name() string { return "rules" }

// ExternalProvider asks an LLM first and falls back to the composer.
type ExternalProvider struct {
	Client  provider.Client
	Options provider.SendOptions
	// FallbackOnConfigError serves rules output for auth and not-found
	// failures instead of surfacing ErrProviderMisconfigured.
	FallbackOnConfigError bool
}

func (ExternalProvider) strategy()    {}
func (ExternalProvider) Name() string { return "provider" }
