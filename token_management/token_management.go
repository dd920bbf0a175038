package token_management

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/morler/oxidize/constants/lipgloss"
	"github.com/morler/oxidize/embed_data"
	"github.com/morler/oxidize/token_management/contracts"
)

// tokenManager accumulates token usage across the generation calls of a
// single conversion run (initial conversion plus fix attempts).
type tokenManager struct {
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

type details struct {
	MaxTokens                  int     `json:"max_tokens"`
	MaxInputTokens             int     `json:"max_input_tokens"`
	MaxOutputTokens            int     `json:"max_output_tokens"`
	InputCostPerMillionTokens  float64 `json:"input_cost_per_million_tokens,omitempty"`
	OutputCostPerMillionTokens float64 `json:"output_cost_per_million_tokens,omitempty"`
	Mode                       string  `json:"mode"`
	SupportsFunctionCalling    bool    `json:"supports_function_calling,omitempty"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

// NewTokenManager creates a new token manager.
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// UsedTokens accumulates the token count for the run.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) DisplayTokens(providerName string, model string) {
	cost := tm.CalculateCost(model, tm.usedInputToken, tm.usedOutputToken)

	tokenInfo := fmt.Sprintf("Tokens Used: %d (input: %d / output: %d) - Cost: %.6f $ - Model: %s", tm.usedToken, tm.usedInputToken, tm.usedOutputToken, cost, model)

	tokenBox := lipgloss.BoxStyle.Render(tokenInfo)
	fmt.Println(tokenBox)
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

func (tm *tokenManager) CalculateCost(modelName string, inputToken int, outputToken int) float64 {
	modelDetails, err := getModelDetails(modelName)
	if err != nil {
		return 0
	}

	inputCost := float64(inputToken) * modelDetails.InputCostPerMillionTokens / 1000000.0
	outputCost := float64(outputToken) * modelDetails.OutputCostPerMillionTokens / 1000000.0

	return inputCost + outputCost
}

func getModelDetails(modelName string) (details, error) {
	modelName = strings.ToLower(modelName)

	models := Models{
		ModelDetails: make(map[string]details),
	}

	err := json.Unmarshal(embed_data.ModelDetails, &models)
	if err != nil {
		log.Printf("Error unmarshaling JSON: %v", err)
		return details{}, err
	}

	model, exists := models.ModelDetails[modelName]
	if !exists {
		return details{}, fmt.Errorf("model details with name '%s' not found", modelName)
	}

	return model, nil
}
