package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int32
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dimensions int) (EmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required for gemini embeddings")
	}
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      model,
		dimensions: int32(dimensions),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if p.dimensions > 0 {
		dims := p.dimensions
		cfg.OutputDimensionality = &dims
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("empty embedding response from gemini")
	}

	// truncated outputs are not unit length
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(resp.Embeddings[0].Values),
		},
	}, nil
}
