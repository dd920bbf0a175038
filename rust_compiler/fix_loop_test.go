package rust_compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/logging"
)

// fakeBuilder returns scripted outcomes in order, repeating the last one.
type fakeBuilder struct {
	outcomes []*BuildOutcome
	err      error
	calls    int
}

func (b *fakeBuilder) Build(ctx context.Context, projectDir string) (*BuildOutcome, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	index := b.calls - 1
	if index >= len(b.outcomes) {
		index = len(b.outcomes) - 1
	}
	return b.outcomes[index], nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
	// diagnostics seen per call, for asserting feedback content.
	seenDiagnostics []string
}

func (g *fakeGenerator) GenerateFix(ctx context.Context, priorFiles map[string]string, diagnostics string) (string, error) {
	g.calls++
	g.seenDiagnostics = append(g.seenDiagnostics, diagnostics)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestLoop(builder *fakeBuilder, generator *fakeGenerator) *FixLoop {
	loop := NewFixLoop(builder, generator, logging.Nop(), "unused", DefaultMaxAttempts)
	loop.extract = func(response string) (map[string]string, error) {
		return map[string]string{"src/main.rs": response}, nil
	}
	loop.materialize = func(logger *logging.Logger, files map[string]string, outputDir string) (string, error) {
		return outputDir, nil
	}
	return loop
}

func TestFixLoop_SucceedsFirstAttempt(t *testing.T) {
	builder := &fakeBuilder{outcomes: []*BuildOutcome{{Succeeded: true}}}
	generator := &fakeGenerator{}

	ok := newTestLoop(builder, generator).RunWithRetries(context.Background(), "proj", nil)

	assert.True(t, ok)
	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, 0, generator.calls)
}

func TestFixLoop_SucceedsAfterOneFix(t *testing.T) {
	builder := &fakeBuilder{outcomes: []*BuildOutcome{
		{Succeeded: false, Diagnostics: "error[E0425]: cannot find function"},
		{Succeeded: true},
	}}
	generator := &fakeGenerator{response: "fn main() {}"}

	ok := newTestLoop(builder, generator).RunWithRetries(context.Background(), "proj", nil)

	assert.True(t, ok)
	assert.Equal(t, 2, builder.calls)
	assert.Equal(t, 1, generator.calls)
	// The generator must see the diagnostics of the failed attempt.
	require.Len(t, generator.seenDiagnostics, 1)
	assert.Contains(t, generator.seenDiagnostics[0], "E0425")
}

func TestFixLoop_ExhaustsAttempts(t *testing.T) {
	builder := &fakeBuilder{outcomes: []*BuildOutcome{{Succeeded: false, Diagnostics: "broken"}}}
	generator := &fakeGenerator{response: "still broken"}

	ok := newTestLoop(builder, generator).RunWithRetries(context.Background(), "proj", nil)

	assert.False(t, ok)
	// Three builds, and one fewer fix generations than attempts.
	assert.Equal(t, 3, builder.calls)
	assert.Equal(t, 2, generator.calls)
}

func TestFixLoop_GeneratorFailureConsumesAttempt(t *testing.T) {
	builder := &fakeBuilder{outcomes: []*BuildOutcome{{Succeeded: false, Diagnostics: "broken"}}}
	generator := &fakeGenerator{err: errors.New("provider unavailable")}

	ok := newTestLoop(builder, generator).RunWithRetries(context.Background(), "proj", nil)

	// Every failed fix still consumes its attempt, so the loop terminates
	// at the same bound.
	assert.False(t, ok)
	assert.Equal(t, 3, builder.calls)
	assert.Equal(t, 2, generator.calls)
}

func TestFixLoop_MissingManifestIsNotRetried(t *testing.T) {
	builder := &fakeBuilder{err: ErrMissingManifest}
	generator := &fakeGenerator{}

	ok := newTestLoop(builder, generator).RunWithRetries(context.Background(), "proj", nil)

	assert.False(t, ok)
	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, 0, generator.calls)
}

func TestFixLoop_ZeroAttemptsFallsBackToDefault(t *testing.T) {
	builder := &fakeBuilder{outcomes: []*BuildOutcome{{Succeeded: false, Diagnostics: "broken"}}}
	generator := &fakeGenerator{response: "x"}

	loop := NewFixLoop(builder, generator, logging.Nop(), "unused", 0)
	loop.extract = func(response string) (map[string]string, error) {
		return map[string]string{"src/main.rs": response}, nil
	}
	loop.materialize = func(logger *logging.Logger, files map[string]string, outputDir string) (string, error) {
		return outputDir, nil
	}

	ok := loop.RunWithRetries(context.Background(), "proj", nil)

	assert.False(t, ok)
	assert.Equal(t, DefaultMaxAttempts, builder.calls)
}
