package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFileDiffs_AddedAndRemoved(t *testing.T) {
	oldFiles := map[string]string{
		"src/old.rs": "pub fn stale() {}",
	}
	newFiles := map[string]string{
		"src/new.rs": "pub fn fresh() {}",
	}

	diff := RenderFileDiffs(oldFiles, newFiles)

	assert.Contains(t, diff, "+ src/new.rs (added)")
	assert.Contains(t, diff, "- src/old.rs (removed)")
}

func TestRenderFileDiffs_Modified(t *testing.T) {
	oldFiles := map[string]string{
		"src/main.rs": "fn main() { old(); }",
	}
	newFiles := map[string]string{
		"src/main.rs": "fn main() { new(); }",
	}

	diff := RenderFileDiffs(oldFiles, newFiles)

	assert.Contains(t, diff, "~ src/main.rs")
	assert.Contains(t, diff, "old")
	assert.Contains(t, diff, "new")
}

func TestRenderFileDiffs_NoChanges(t *testing.T) {
	files := map[string]string{
		"Cargo.toml":  "[package]",
		"src/main.rs": "fn main() {}",
	}

	assert.Empty(t, RenderFileDiffs(files, files))
}
