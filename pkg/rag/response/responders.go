package response

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-recommendation-be/pkg/llm"
	"ai-recommendation-be/pkg/llm/langflow"
)

// FlowRunner is satisfied by *langflow.Client.
type FlowRunner interface {
	Run(ctx context.Context, query string, contextData interface{}) (*langflow.Result, error)
}

type LangflowResponder struct {
	runner FlowRunner
}

func NewLangflowResponder(runner FlowRunner) *LangflowResponder {
	return &LangflowResponder{runner: runner}
}

func (r *LangflowResponder) Respond(ctx context.Context, req Request) (*Reply, error) {
	result, err := r.runner.Run(ctx, req.Query, BuildContextData(req))
	if err != nil {
		return nil, err
	}
	return &Reply{
		Text:        result.Response,
		Suggestions: result.Suggestions,
		Source:      SourceLangflow,
	}, nil
}

const systemPrompt = `You are a friendly shopping assistant.
Recommend products ONLY from the JSON context you are given.
Mention the best match by name and keep the answer under three sentences.
If no products were found, ask the user for more details.`

// LLMResponder asks a chat model for the reply text. Suggestions are derived
// locally since chat models answer in free text.
type LLMResponder struct {
	provider llm.LLMProvider
}

func NewLLMResponder(provider llm.LLMProvider) *LLMResponder {
	return &LLMResponder{provider: provider}
}

func (r *LLMResponder) Respond(ctx context.Context, req Request) (*Reply, error) {
	encoded, err := json.Marshal(BuildContextData(req))
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	text, err := r.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("<context>\n%s\n</context>\n\nUser request: %s", encoded, req.Query)},
	}, llm.WithTemperature(0.4), llm.WithMaxTokens(200))
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:        text,
		Suggestions: Suggestions(req.Results, req.Session),
		Source:      SourceLLM,
	}, nil
}
