package rust_compiler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/logging"
)

func TestAnalyzeErrors_KnownPatterns(t *testing.T) {
	diagnostics := `error[E0463]: cannot find crate ` + "`serde`" + `
error[E0308]: mismatched types
  expected i32, found String`

	hints := AnalyzeErrors(diagnostics)

	require.Len(t, hints, 2)
	assert.Contains(t, hints[0], "Missing dependency in Cargo.toml")
	assert.Contains(t, hints[1], "Type mismatch")
}

func TestAnalyzeErrors_NoKnownPatterns(t *testing.T) {
	assert.Empty(t, AnalyzeErrors("error: something entirely novel"))
}

func TestAnalyzeErrors_CaseInsensitive(t *testing.T) {
	hints := AnalyzeErrors("ERROR: Cannot Find Crate `tokio`")
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "Missing dependency")
}

func TestDefaultTimeouts(t *testing.T) {
	timeouts := DefaultTimeouts()

	assert.Equal(t, 5*time.Minute, timeouts.Check)
	assert.Equal(t, 10*time.Minute, timeouts.Build)
	assert.Equal(t, 5*time.Minute, timeouts.Test)
	assert.Equal(t, 1*time.Minute, timeouts.Format)
	assert.Equal(t, 5*time.Minute, timeouts.Lint)
}

func TestBuild_MissingManifest(t *testing.T) {
	compiler := &Compiler{logger: logging.Nop(), timeouts: DefaultTimeouts()}

	outcome, err := compiler.Build(context.Background(), t.TempDir())

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrMissingManifest)
}

func TestCheckAndCollectErrors_MissingManifest(t *testing.T) {
	compiler := &Compiler{logger: logging.Nop(), timeouts: DefaultTimeouts()}

	ok, diagnostics := compiler.CheckAndCollectErrors(context.Background(), t.TempDir())

	assert.False(t, ok)
	assert.Contains(t, diagnostics, "Cargo.toml not found")
}
