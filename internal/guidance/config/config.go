package config

import "time"

// Duration accepts "5s" style strings or bare integer seconds in YAML.
type Duration struct {
	time.Duration
}

const (
	ProviderRules  = "rules"
	ProviderOpenAI = "openai"
)

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type ProviderConfig struct {
	Type        string   `yaml:"type"`
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature float32  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     Duration `yaml:"timeout"`
	MaxRetries  int      `yaml:"max_retries"`
	RetryBase   Duration `yaml:"retry_base_delay"`
	RetryMax    Duration `yaml:"retry_max_delay"`
	// FallbackOnConfigError serves rules output when the provider rejects
	// credentials or the model. Nil means true.
	FallbackOnConfigError *bool `yaml:"fallback_on_config_error"`
}

type HistoryConfig struct {
	Capacity      int    `yaml:"capacity"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
	// Timeout bounds each history read or write.
	Timeout Duration `yaml:"timeout"`
}

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Provider ProviderConfig `yaml:"provider"`
	History  HistoryConfig  `yaml:"history"`
}

func (p ProviderConfig) FallbackOnConfig() bool {
	return p.FallbackOnConfigError == nil || *p.FallbackOnConfigError
}
