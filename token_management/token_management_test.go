package token_management

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsedTokens_Accumulates(t *testing.T) {
	tm := NewTokenManager()

	tm.UsedTokens(100, 50)
	tm.UsedTokens(10, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 165, total)
	assert.Equal(t, 110, input)
	assert.Equal(t, 55, output)
}

func TestClearToken(t *testing.T) {
	tm := NewTokenManager()

	tm.UsedTokens(100, 50)
	tm.ClearToken()

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Zero(t, total)
	assert.Zero(t, input)
	assert.Zero(t, output)
}

func TestCalculateCost_KnownModel(t *testing.T) {
	tm := NewTokenManager()

	cost := tm.CalculateCost("gemini-2.5-pro", 1000000, 1000000)
	assert.Greater(t, cost, 0.0)
}

func TestCalculateCost_UnknownModel(t *testing.T) {
	tm := NewTokenManager()

	assert.Zero(t, tm.CalculateCost("no-such-model", 1000, 1000))
}
