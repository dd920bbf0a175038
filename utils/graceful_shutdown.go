package utils

import (
	"context"
	"fmt"

	"github.com/morler/oxidize/constants/lipgloss"
)

// GracefulShutdown waits for the context to be cancelled, runs the cleanup
// hook, and lets the caller's select loop observe the cancellation.
func GracefulShutdown(ctx context.Context, cleanup func()) {
	<-ctx.Done()
	fmt.Println(lipgloss.Yellow.Render("\nShutting down..."))
	if cleanup != nil {
		cleanup()
	}
}
