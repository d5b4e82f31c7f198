package config

import (
	"github.com/yungbote/wellspring-backend/internal/guidance/provider"
	"github.com/yungbote/wellspring-backend/internal/guidance/service"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// Strategy resolves how guidance is produced. It is called once at startup.
func (c *Config) Strategy(log *logger.Logger) (service.Strategy, error) {
	if c.Provider.Type != ProviderOpenAI {
		return service.RulesOnly{}, nil
	}
	p := c.Provider
	client, err := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		Timeout: p.Timeout.Duration,
	}, log)
	if err != nil {
		return nil, err
	}
	retrying := provider.WithRetry(client, provider.RetryPolicy{
		MaxRetries: p.MaxRetries,
		BaseDelay:  p.RetryBase.Duration,
		MaxDelay:   p.RetryMax.Duration,
	}, log)
	return service.ExternalProvider{
		Client: retrying,
		Options: provider.SendOptions{
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		FallbackOnConfigError: p.FallbackOnConfig(),
	}, nil
}
