package providers

import (
	"fmt"

	"github.com/morler/oxidize/providers/contracts"
	"github.com/morler/oxidize/providers/gemini"
	"github.com/morler/oxidize/providers/ollama"
	token_contracts "github.com/morler/oxidize/token_management/contracts"
)

// ChatProviderFactory returns the chat provider named in the config.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement token_contracts.ITokenManagement) (contracts.IChatAIProvider, error) {
	switch config.Provider {
	case "gemini":
		return gemini.NewGeminiChatProvider(&gemini.GeminiConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Temperature:     config.Temperature,
			TopP:            config.TopP,
			MaxOutputTokens: config.MaxOutputTokens,
			TokenManagement: tokenManagement,
		}), nil
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     config.Temperature,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
