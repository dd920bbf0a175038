package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/morler/oxidize/providers/contracts"
	"github.com/morler/oxidize/providers/models"
	gemini_models "github.com/morler/oxidize/providers/gemini/models"
	contracts2 "github.com/morler/oxidize/token_management/contracts"
)

// GeminiConfig implements the chat provider interface against the
// generativelanguage streaming REST API.
type GeminiConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Temperature     *float32
	TopP            *float32
	MaxOutputTokens int
	TokenManagement contracts2.ITokenManagement
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// NewGeminiChatProvider initializes a new Gemini provider.
func NewGeminiChatProvider(config *GeminiConfig) contracts.IChatAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &GeminiConfig{
		BaseURL:         baseURL,
		Model:           config.Model,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		TopP:            config.TopP,
		MaxOutputTokens: config.MaxOutputTokens,
		TokenManagement: config.TokenManagement,
	}
}

func (geminiProvider *GeminiConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse)

	go func() {
		defer close(responseChan)

		reqBody := gemini_models.GeminiGenerateRequest{
			SystemInstruction: &gemini_models.Content{
				Parts: []gemini_models.Part{{Text: prompt}},
			},
			Contents: []gemini_models.Content{
				{Role: "user", Parts: []gemini_models.Part{{Text: userInput}}},
			},
			GenerationConfig: gemini_models.GenerationConfig{
				Temperature:     geminiProvider.Temperature,
				TopP:            geminiProvider.TopP,
				MaxOutputTokens: geminiProvider.MaxOutputTokens,
			},
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %v", err)}
			return
		}

		url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", geminiProvider.BaseURL, geminiProvider.Model, geminiProvider.ApiKey)
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %v", err)}
			return
		}

		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("request canceled: %v", err)}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %v", err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			var apiError models.AIError
			if err := json.Unmarshal(body, &apiError); err != nil {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)}
				return
			}

			responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)}
			return
		}

		reader := bufio.NewReader(resp.Body)

		var promptTokens, outputTokens int

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				responseChan <- models.StreamResponse{Err: fmt.Errorf("error reading stream: %v", err)}
				return
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" || payload == "[DONE]" {
				continue
			}

			var response gemini_models.GeminiGenerateResponse
			if err := json.Unmarshal([]byte(payload), &response); err != nil {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("error unmarshalling chunk: %v", err)}
				return
			}

			for _, candidate := range response.Candidates {
				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						responseChan <- models.StreamResponse{Content: part.Text}
					}
				}
			}

			if response.UsageMetadata.TotalTokenCount > 0 {
				promptTokens = response.UsageMetadata.PromptTokenCount
				outputTokens = response.UsageMetadata.CandidatesTokenCount
			}
		}

		if promptTokens > 0 || outputTokens > 0 {
			geminiProvider.TokenManagement.UsedTokens(promptTokens, outputTokens)
		}

		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
