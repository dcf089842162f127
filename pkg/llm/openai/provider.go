package openai

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ai-recommendation-be/pkg/llm"
)

const DefaultModel = "gpt-4o-mini"

type OpenAIProvider struct {
	client *sdk.Client
	model  string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required for openai chat")
	}
	if model == "" {
		model = DefaultModel
	}

	client := sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIProvider{client: &client, model: model}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(opts...)

	params := sdk.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    toMessages(history),
		Temperature: sdk.Float(options.Temperature),
	}
	if options.Model != "" {
		params.Model = options.Model
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(options.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai returned an empty message")
	}
	return content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func toMessages(history []llm.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			out = append(out, sdk.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			out = append(out, sdk.AssistantMessage(msg.Content))
		default:
			out = append(out, sdk.UserMessage(msg.Content))
		}
	}
	return out
}
