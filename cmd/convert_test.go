package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/config"
	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/providers"
	"github.com/morler/oxidize/providers/models"
	"github.com/morler/oxidize/repo_ingester"
	"github.com/morler/oxidize/token_management"
)

// recordingProvider counts generation calls and streams nothing.
type recordingProvider struct {
	calls int
}

func (p *recordingProvider) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	p.calls++
	ch := make(chan models.StreamResponse)
	close(ch)
	return ch
}

func newTestDependencies(provider *recordingProvider) *RootDependencies {
	return &RootDependencies{
		Config: &config.Config{
			Theme:            "dracula",
			AIProviderConfig: &providers.AIProviderConfig{Provider: "gemini", Model: "gemini-2.5-pro"},
		},
		Logger:              logging.Nop(),
		Ingester:            repo_ingester.NewIngester(logging.Nop(), false),
		TokenManagement:     token_management.NewTokenManager(),
		CurrentChatProvider: provider,
	}
}

func writePythonRepo(t *testing.T) string {
	t.Helper()
	repoDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "app.py"), []byte("def main():\n    pass\n"), 0644))
	return repoDir
}

func TestConvert_DryRunNeverCallsModel(t *testing.T) {
	provider := &recordingProvider{}
	rootDependencies := newTestDependencies(provider)

	ok := handleConvertCommand(rootDependencies, convertOptions{dryRun: true}, writePythonRepo(t))

	assert.True(t, ok)
	assert.Zero(t, provider.calls)

	// No generation means no token usage either.
	total, _, _ := rootDependencies.TokenManagement.GetCurrentTokenUsage()
	assert.Zero(t, total)
}

func TestConvert_DryRunFailsOnEmptyRepo(t *testing.T) {
	provider := &recordingProvider{}
	rootDependencies := newTestDependencies(provider)

	ok := handleConvertCommand(rootDependencies, convertOptions{dryRun: true}, t.TempDir())

	assert.False(t, ok)
	assert.Zero(t, provider.calls)
}

func TestPrompt_PrintsConversionPrompt(t *testing.T) {
	rootDependencies := newTestDependencies(&recordingProvider{})

	var out bytes.Buffer
	ok := handlePromptCommand(rootDependencies, &out, writePythonRepo(t), false)

	require.True(t, ok)
	assert.Contains(t, out.String(), "FILE: app.py")
	assert.Contains(t, out.String(), "```python")
	assert.NotContains(t, out.String(), "expert Rust programmer")
}

func TestPrompt_IncludesSystemPromptWhenAsked(t *testing.T) {
	rootDependencies := newTestDependencies(&recordingProvider{})

	var out bytes.Buffer
	ok := handlePromptCommand(rootDependencies, &out, writePythonRepo(t), true)

	require.True(t, ok)
	assert.Contains(t, out.String(), "expert Rust programmer")
	assert.Contains(t, out.String(), "FILE: app.py")
}

func TestPrompt_MissingRepo(t *testing.T) {
	rootDependencies := newTestDependencies(&recordingProvider{})

	var out bytes.Buffer
	ok := handlePromptCommand(rootDependencies, &out, filepath.Join(t.TempDir(), "missing"), false)

	assert.False(t, ok)
	assert.Empty(t, out.String())
}
