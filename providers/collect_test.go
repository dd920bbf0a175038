package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/providers/models"
)

func streamOf(responses ...models.StreamResponse) <-chan models.StreamResponse {
	ch := make(chan models.StreamResponse, len(responses))
	for _, response := range responses {
		ch <- response
	}
	close(ch)
	return ch
}

func TestCollect_ConcatenatesChunks(t *testing.T) {
	response, err := Collect(streamOf(
		models.StreamResponse{Content: "fn main"},
		models.StreamResponse{Content: "() {}"},
		models.StreamResponse{Done: true},
	))

	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", response)
}

func TestCollect_PropagatesStreamError(t *testing.T) {
	streamErr := errors.New("connection reset")

	_, err := Collect(streamOf(
		models.StreamResponse{Content: "partial"},
		models.StreamResponse{Err: streamErr},
	))

	assert.ErrorIs(t, err, streamErr)
}

func TestCollect_EmptyResponse(t *testing.T) {
	_, err := Collect(streamOf(
		models.StreamResponse{Content: "   \n"},
		models.StreamResponse{Done: true},
	))

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChatProviderFactory(t *testing.T) {
	gemini, err := ChatProviderFactory(&AIProviderConfig{Provider: "gemini", Model: "gemini-2.5-pro"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, gemini)

	ollama, err := ChatProviderFactory(&AIProviderConfig{Provider: "ollama", Model: "llama3.1"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, ollama)

	_, err = ChatProviderFactory(&AIProviderConfig{Provider: "openai"}, nil)
	assert.Error(t, err)
}
