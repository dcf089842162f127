package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a chat turn in a provider-agnostic format.
type Message struct {
	Role    string
	Content string
}

type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // overrides the provider default
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Apply resolves opts on top of the defaults every provider shares.
func Apply(opts ...Option) Options {
	options := Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// LLMProvider is a chat-completion backend used to phrase recommendation replies.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single user prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
