package providers

import (
	"errors"
	"strings"

	"github.com/morler/oxidize/providers/models"
)

// ErrEmptyResponse reports that the generation backend returned no text.
var ErrEmptyResponse = errors.New("empty response from AI provider")

// Collect drains a streamed completion into a single string. The first
// streamed error aborts the collection.
func Collect(responseChan <-chan models.StreamResponse) (string, error) {
	var builder strings.Builder

	for response := range responseChan {
		if response.Err != nil {
			return "", response.Err
		}
		builder.WriteString(response.Content)
	}

	if strings.TrimSpace(builder.String()) == "" {
		return "", ErrEmptyResponse
	}

	return builder.String(), nil
}
