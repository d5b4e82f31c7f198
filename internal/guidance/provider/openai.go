package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single attempt.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type openAIClient struct {
	log     *logger.Logger
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAI(cfg OpenAIConfig, log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		log = logger.Nop()
	}

	oc := openai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &openAIClient{
		log:     log.With("service", "OpenAIProvider"),
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

func (c *openAIClient) Send(ctx context.Context, messages []Message, opts SendOptions) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Err: errors.New("no choices in completion")}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindMalformed, Err: errors.New("empty completion")}
	}

	c.log.Debug("completion received",
		"model", model,
		"finish_reason", string(resp.Choices[0].FinishReason),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
