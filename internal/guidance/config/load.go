package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/wellspring-backend/internal/guidance/history"
	"github.com/yungbote/wellspring-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must look like \"5s\" or be whole seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8081",
			ReadHeaderTimeout: Duration{5 * time.Second},
			IdleTimeout:       Duration{2 * time.Minute},
			ShutdownTimeout:   Duration{15 * time.Second},
			MaxRequestBytes:   64 << 10,
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimit:         5,
			RateBurst:         20,
		},
		Provider: ProviderConfig{
			Type:        ProviderRules,
			Model:       "gpt-4o-mini",
			Temperature: 0.6,
			MaxTokens:   300,
			Timeout:     Duration{15 * time.Second},
			MaxRetries:  2,
			RetryBase:   Duration{500 * time.Millisecond},
			RetryMax:    Duration{5 * time.Second},
		},
		History: HistoryConfig{
			Capacity: history.DefaultCapacity,
			RedisKey: history.DefaultRedisKey,
			Timeout:  Duration{300 * time.Millisecond},
		},
	}
}

// Load layers defaults, the YAML file (AI_CONFIG_PATH or
// ./config/ai-service.yaml) and environment overrides, then validates.
func Load() (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("AI_CONFIG_PATH"))
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "ai-service.yaml")
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)

	cfg.HTTP.Addr = envutil.String("AI_HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("AI_PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.MaxRequestBytes = int64(envutil.Int("AI_MAX_REQUEST_BYTES", int(cfg.HTTP.MaxRequestBytes)))
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.HTTP.CORSOrigins)
	cfg.HTTP.RateLimit = envutil.Float("AI_RATE_LIMIT", cfg.HTTP.RateLimit)
	cfg.HTTP.RateBurst = envutil.Int("AI_RATE_BURST", cfg.HTTP.RateBurst)

	p := &cfg.Provider
	p.Type = envutil.String("AI_PROVIDER", p.Type)
	p.APIKey = envutil.String("OPENAI_API_KEY", p.APIKey)
	p.BaseURL = envutil.String("OPENAI_BASE_URL", p.BaseURL)
	p.Model = envutil.String("OPENAI_MODEL", p.Model)
	p.Temperature = float32(envutil.Float("AI_TEMPERATURE", float64(p.Temperature)))
	p.MaxTokens = envutil.Int("AI_MAX_TOKENS", p.MaxTokens)
	p.Timeout.Duration = envutil.Duration("AI_TIMEOUT", p.Timeout.Duration)
	p.MaxRetries = envutil.Int("AI_MAX_RETRIES", p.MaxRetries)
	if v := envutil.String("AI_FALLBACK_ON_CONFIG_ERROR", ""); v != "" {
		b := envutil.Bool("AI_FALLBACK_ON_CONFIG_ERROR", true)
		p.FallbackOnConfigError = &b
	}

	h := &cfg.History
	h.Capacity = envutil.Int("AI_HISTORY_CAPACITY", h.Capacity)
	h.RedisAddr = envutil.String("AI_HISTORY_REDIS_ADDR", h.RedisAddr)
	h.RedisPassword = envutil.String("AI_HISTORY_REDIS_PASSWORD", h.RedisPassword)
	h.RedisDB = envutil.Int("AI_HISTORY_REDIS_DB", h.RedisDB)
	h.RedisKey = envutil.String("AI_HISTORY_REDIS_KEY", h.RedisKey)
	h.Timeout.Duration = envutil.Duration("AI_HISTORY_TIMEOUT", h.Timeout.Duration)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = 64 << 10
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return errors.New("http.rate_limit and http.rate_burst must not be negative")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 1
	}

	p := &c.Provider
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	switch p.Type {
	case "", ProviderRules:
		p.Type = ProviderRules
	case ProviderOpenAI:
		if strings.TrimSpace(p.APIKey) == "" {
			return errors.New("provider openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown provider.type %q (want rules or openai)", p.Type)
	}
	if p.MaxRetries < 0 {
		return errors.New("provider.max_retries must not be negative")
	}
	if p.Timeout.Duration <= 0 {
		p.Timeout = Duration{15 * time.Second}
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 300
	}

	if c.History.Timeout.Duration <= 0 {
		c.History.Timeout = Duration{300 * time.Millisecond}
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = history.DefaultCapacity
	}
	return nil
}
