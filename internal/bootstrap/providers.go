package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-recommendation-be/internal/config"
	"ai-recommendation-be/pkg/embedding"
	"ai-recommendation-be/pkg/embedding/jina"
	"ai-recommendation-be/pkg/llm/factory"
	"ai-recommendation-be/pkg/llm/langflow"
	"ai-recommendation-be/pkg/rag/response"
)

// NewEmbeddingProvider picks the embedder named by EMBEDDING_PROVIDER. The
// catalog must have been embedded with the same provider and model.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions)
	case "gemini":
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
		return embedding.NewGeminiProvider(ctx, cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions)
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "jina":
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
		return jina.NewJinaProvider(cfg.Keys.Jina), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// NewResponder picks the reply backend named by LLM_PROVIDER. A nil
// responder means every reply comes from the fallback templates.
func NewResponder(cfg *config.Config) (response.Responder, error) {
	switch cfg.Ai.LLMProvider {
	case "", "none":
		log.Printf("[INFO] No LLM provider configured, using templated replies")
		return nil, nil
	case "langflow":
		log.Printf("[INFO] Using Langflow flow %s at %s", cfg.Ai.LangflowFlowID, cfg.Ai.LangflowBaseURL)
		client := langflow.NewClient(cfg.Ai.LangflowBaseURL, cfg.Ai.LangflowFlowID, cfg.Ai.LangflowAPIKey)
		return response.NewLangflowResponder(client), nil
	default:
		provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, cfg.Keys.OpenAI)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
		return response.NewLLMResponder(provider), nil
	}
}
