package rust_compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/oxidize/logging"
)

func TestSaveRustProject_WritesFiles(t *testing.T) {
	outputDir := t.TempDir()

	files := map[string]string{
		"Cargo.toml":   "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n",
		"src/main.rs":  "fn main() {}\n",
		"src/utils.rs": "pub fn helper() {}\n",
	}

	projectDir, err := SaveRustProject(logging.Nop(), files, outputDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "demo"), projectDir)

	for relativePath, content := range files {
		written, err := os.ReadFile(filepath.Join(projectDir, relativePath))
		require.NoError(t, err)
		assert.Equal(t, content, string(written))
	}
}

func TestSaveRustProject_OverwriteReplacesEverything(t *testing.T) {
	outputDir := t.TempDir()

	first := map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "fn main() {}\n",
		"src/old.rs":  "pub fn stale() {}\n",
	}
	projectDir, err := SaveRustProject(logging.Nop(), first, outputDir)
	require.NoError(t, err)

	second := map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "fn main() { println!(\"v2\"); }\n",
	}
	projectDir2, err := SaveRustProject(logging.Nop(), second, outputDir)
	require.NoError(t, err)
	require.Equal(t, projectDir, projectDir2)

	// A file only present in the first materialization must be gone.
	_, err = os.Stat(filepath.Join(projectDir, "src/old.rs"))
	assert.True(t, os.IsNotExist(err))

	written, err := os.ReadFile(filepath.Join(projectDir, "src/main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "v2")
}

func TestSaveRustProject_DefaultManifest(t *testing.T) {
	outputDir := t.TempDir()

	files := map[string]string{
		"src/main.rs": "fn main() {}\n",
	}

	projectDir, err := SaveRustProject(logging.Nop(), files, outputDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, DefaultProjectName), projectDir)

	manifest, err := os.ReadFile(filepath.Join(projectDir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "name = \"converted_project\"")
	assert.Contains(t, string(manifest), "[dependencies]")
}

func TestSaveRustProject_EntryPointSkeleton(t *testing.T) {
	outputDir := t.TempDir()

	// Manifest only: the materializer must still produce a compilable
	// project.
	files := map[string]string{
		"Cargo.toml": "[package]\nname = \"empty\"\nversion = \"0.1.0\"\n",
	}

	projectDir, err := SaveRustProject(logging.Nop(), files, outputDir)
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(projectDir, "src/main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "fn main()")
}

func TestSaveRustProject_LibraryOnlyProjectKeepsNoMain(t *testing.T) {
	outputDir := t.TempDir()

	files := map[string]string{
		"Cargo.toml": "[package]\nname = \"lib_only\"\nversion = \"0.1.0\"\n",
		"src/lib.rs": "pub fn api() {}\n",
	}

	projectDir, err := SaveRustProject(logging.Nop(), files, outputDir)
	require.NoError(t, err)

	// lib.rs is a valid entry point, no main.rs is synthesized.
	_, err = os.Stat(filepath.Join(projectDir, "src/main.rs"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRustProject_DoesNotMutateInput(t *testing.T) {
	outputDir := t.TempDir()

	files := map[string]string{
		"src/main.rs": "fn main() {}\n",
	}

	_, err := SaveRustProject(logging.Nop(), files, outputDir)
	require.NoError(t, err)

	// The synthesized default manifest lands on disk, not in the caller's
	// extracted set.
	assert.NotContains(t, files, "Cargo.toml")
	assert.Len(t, files, 1)
}

func TestSaveRustProject_NoFiles(t *testing.T) {
	_, err := SaveRustProject(logging.Nop(), map[string]string{}, t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestExtractProjectName(t *testing.T) {
	assert.Equal(t, "myapp", ExtractProjectName("[package]\nname = \"myapp\"\nversion = \"0.1.0\"\n"))
	assert.Equal(t, "myapp", ExtractProjectName("[package]\nname = 'myapp'\n"))
	assert.Equal(t, DefaultProjectName, ExtractProjectName("[package]\nversion = \"0.1.0\"\n"))
	assert.Equal(t, DefaultProjectName, ExtractProjectName(""))
}
