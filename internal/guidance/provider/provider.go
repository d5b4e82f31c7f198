package provider

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

type SendOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client sends a chat exchange and returns the assistant text. Failures are
// *Error values.
type Client interface {
	Send(ctx context.Context, messages []Message, opts SendOptions) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, messages []Message, opts SendOptions) (string, error)

func (f ClientFunc) Send(ctx context.Context, messages []Message, opts SendOptions) (string, error) {
	return f(ctx, messages, opts)
}
