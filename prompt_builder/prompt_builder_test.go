package prompt_builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/repo_ingester/models"
)

func TestBuildConversionPrompt_IncludesAllFiles(t *testing.T) {
	pythonFiles := []models.PythonFile{
		{RelativePath: "app.py", Content: "def main():\n    pass\n", Outline: "function: main"},
		{RelativePath: "pkg/util.py", Content: "x = 1\n"},
	}

	prompt, err := BuildConversionPrompt(pythonFiles)
	require.NoError(t, err)

	assert.Contains(t, prompt, "PROJECT STRUCTURE")
	assert.Contains(t, prompt, "FILE: app.py")
	assert.Contains(t, prompt, "FILE: pkg/util.py")
	assert.Contains(t, prompt, "```python\ndef main():")
	assert.Contains(t, prompt, "function: main")
}

func TestBuildConversionPrompt_Empty(t *testing.T) {
	_, err := BuildConversionPrompt(nil)
	assert.ErrorIs(t, err, ErrNoPythonFiles)
}

func TestBuildFixPrompt_ManifestComesFirst(t *testing.T) {
	projectFiles := map[string]string{
		"src/main.rs": "fn main() {}",
		"Cargo.toml":  "[package]\nname = \"demo\"",
		"src/api.rs":  "pub fn api() {}",
	}

	prompt := BuildFixPrompt(projectFiles, "error[E0308]: mismatched types")

	manifestIndex := strings.Index(prompt, "[Cargo.toml]")
	mainIndex := strings.Index(prompt, "[src/main.rs]")
	require.NotEqual(t, -1, manifestIndex)
	require.NotEqual(t, -1, mainIndex)
	assert.Less(t, manifestIndex, mainIndex)

	assert.Contains(t, prompt, "COMPILER ERRORS")
	assert.Contains(t, prompt, "E0308")
	assert.Contains(t, prompt, "```toml")
	assert.Contains(t, prompt, "```rust")
}

func TestSystemPrompts_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, ConversionSystemPrompt())
	assert.NotEmpty(t, FixSystemPrompt())
	assert.Contains(t, FixSystemPrompt(), "COMPLETE")
}
