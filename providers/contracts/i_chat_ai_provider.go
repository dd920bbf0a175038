package contracts

import (
	"context"

	"github.com/morler/oxidize/providers/models"
)

// IChatAIProvider is the opaque text-generation collaborator: a prompt and a
// system instruction go in, a stream of text chunks comes out.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse
}
