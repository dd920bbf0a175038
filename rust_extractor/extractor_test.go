package rust_extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AnnotatedSegments(t *testing.T) {
	response := "Here is the converted project:\n\n" +
		"```toml\n[Cargo.toml]\n[package]\nname = \"myapp\"\nversion = \"0.1.0\"\n```\n\n" +
		"```rust\n[src/main.rs]\nfn main() {\n    println!(\"hi\");\n}\n```\n\n" +
		"```rust\n[src/utils.rs]\npub fn helper() {}\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	assert.Len(t, files, 3)
	assert.Contains(t, files["Cargo.toml"], "name = \"myapp\"")
	assert.Contains(t, files["src/main.rs"], "fn main()")
	assert.Contains(t, files["src/utils.rs"], "pub fn helper()")
}

func TestExtract_PathNormalization(t *testing.T) {
	// A bare .rs filename without a directory is routed under src/.
	response := "```rust\n[main.rs]\nfn main() {}\n```\n" +
		"```toml\n[cargo.toml]\n[package]\nname = \"x\"\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	assert.Contains(t, files, "src/main.rs")
	// Manifest spelling is normalized regardless of case.
	assert.Contains(t, files, "Cargo.toml")
}

func TestExtract_TomlTableHeaderIsNotAPath(t *testing.T) {
	// A toml fence whose first line is [package] must keep that line as
	// content instead of consuming it as a path annotation.
	response := "```toml\n[Cargo.toml]\n[package]\nname = \"demo\"\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	require.Contains(t, files, "Cargo.toml")
	assert.Contains(t, files["Cargo.toml"], "[package]")
}

func TestExtract_LastSegmentWinsOnDuplicatePath(t *testing.T) {
	response := "```rust\n[src/main.rs]\nfn main() { old(); }\n```\n" +
		"```rust\n[src/main.rs]\nfn main() { new(); }\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	assert.Contains(t, files["src/main.rs"], "new()")
	assert.NotContains(t, files["src/main.rs"], "old()")
}

func TestExtract_PathlessRustFallback(t *testing.T) {
	// Bare rust fences with no annotations become numbered modules, first
	// one is the entry point.
	response := "```rust\nfn main() {}\n```\n" +
		"```rust\npub fn second() {}\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	assert.Contains(t, files, "src/main.rs")
	assert.Contains(t, files, "src/module_1.rs")
}

func TestExtract_LooseManifest(t *testing.T) {
	// A [package] section outside any fence is still recovered.
	response := "Your manifest:\n\n[package]\nname = \"loose\"\nversion = \"0.1.0\"\n\n" +
		"```rust\n[src/main.rs]\nfn main() {}\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	require.Contains(t, files, "Cargo.toml")
	assert.Contains(t, files["Cargo.toml"], "name = \"loose\"")
}

func TestExtract_NoUsableFencesYieldsSkeleton(t *testing.T) {
	// Fences exist but carry no rust or toml, so the caller still gets a
	// compilable entry point.
	response := "```python\nprint(\"hello\")\n```\n"

	files, err := Extract(response)
	require.NoError(t, err)

	require.Contains(t, files, "src/main.rs")
	assert.Equal(t, HelloWorldMain, files["src/main.rs"])
}

func TestExtract_NoFencesAtAll(t *testing.T) {
	_, err := Extract("Sorry, I cannot convert this project.")
	assert.ErrorIs(t, err, ErrEmptyExtraction)
}

func TestExtract_Idempotent(t *testing.T) {
	response := "```toml\n[Cargo.toml]\n[package]\nname = \"stable\"\n```\n" +
		"```rust\n[src/main.rs]\nfn main() {}\n```\n"

	first, err := Extract(response)
	require.NoError(t, err)
	second, err := Extract(response)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_UnterminatedFence(t *testing.T) {
	response := "```rust\n[src/main.rs]\nfn main() {}"

	files, err := Extract(response)
	require.NoError(t, err)

	assert.Contains(t, files["src/main.rs"], "fn main()")
}

func TestParseSegments_KindClassification(t *testing.T) {
	response := "```toml\na = 1\n```\n```rust\nfn f() {}\n```\n```python\npass\n```\n"

	segments := ParseSegments(response)
	require.Len(t, segments, 3)

	assert.Equal(t, SegmentManifest, segments[0].Kind)
	assert.Equal(t, SegmentSource, segments[1].Kind)
	assert.Equal(t, SegmentOther, segments[2].Kind)
}
