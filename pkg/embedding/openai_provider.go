package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider embeds text with the OpenAI embeddings API. The catalog
// vectors were produced with text-embedding-3-small, so that is the default.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

func NewOpenAIProvider(apiKey, model string, dimensions int, opts ...option.RequestOption) (EmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required for openai embeddings")
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &OpenAIProvider{
		client:     &client,
		model:      model,
		dimensions: dimensions,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(p.model),
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response from openai")
	}

	values := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		values[i] = float32(v)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: values,
		},
	}, nil
}
