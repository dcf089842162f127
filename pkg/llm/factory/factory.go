package factory

import (
	"fmt"

	"ai-recommendation-be/pkg/llm"
	"ai-recommendation-be/pkg/llm/ollama"
	"ai-recommendation-be/pkg/llm/openai"
)

// NewLLMProvider builds the chat backend named by providerType.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		provider, err := openai.NewOpenAIProvider(apiKey, modelName)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
