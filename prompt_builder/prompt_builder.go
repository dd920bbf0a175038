package prompt_builder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/morler/oxidize/embed_data"
	"github.com/morler/oxidize/repo_ingester/models"
	"github.com/morler/oxidize/rust_extractor"
)

// ErrNoPythonFiles reports an ingestion that produced nothing to convert.
var ErrNoPythonFiles = errors.New("no Python files found to convert")

// ConversionSystemPrompt returns the system prompt that instructs the model
// how to convert a Python project and how to format the emitted files.
func ConversionSystemPrompt() string {
	return string(embed_data.RustConversionPrompt)
}

// FixSystemPrompt returns the system prompt used when feeding compile
// diagnostics back to the model.
func FixSystemPrompt() string {
	return string(embed_data.FixBuildErrorsPrompt)
}

// BuildConversionPrompt assembles the user prompt from the ingested Python
// files: a structure overview first, then each file's full content inside a
// fenced python block.
func BuildConversionPrompt(pythonFiles []models.PythonFile) (string, error) {
	if len(pythonFiles) == 0 {
		return "", ErrNoPythonFiles
	}

	var builder strings.Builder

	builder.WriteString("Convert this Python project to Rust:\n\n")

	builder.WriteString("==== PROJECT STRUCTURE ====\n")
	for _, file := range pythonFiles {
		builder.WriteString(fmt.Sprintf("%s\n", file.RelativePath))
		if file.Outline != "" {
			for _, line := range strings.Split(file.Outline, "\n") {
				builder.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	builder.WriteString("\n")

	for _, file := range pythonFiles {
		builder.WriteString("==== FILE ====\n")
		builder.WriteString(fmt.Sprintf("FILE: %s\n", file.RelativePath))
		builder.WriteString("```python\n")
		builder.WriteString(file.Content)
		if !strings.HasSuffix(file.Content, "\n") {
			builder.WriteString("\n")
		}
		builder.WriteString("```\n\n")
	}

	builder.WriteString("Please convert this entire project to a complete, working Rust project.\n")

	return builder.String(), nil
}

// BuildFixPrompt assembles the user prompt for one fix attempt: the complete
// current project followed by the compiler diagnostics to resolve.
func BuildFixPrompt(projectFiles map[string]string, diagnostics string) string {
	var builder strings.Builder

	builder.WriteString("The following Rust project fails to compile.\n\n")

	builder.WriteString("==== CURRENT PROJECT ====\n")
	for _, path := range orderedPaths(projectFiles) {
		language := "rust"
		if path == rust_extractor.ManifestFileName {
			language = "toml"
		}
		builder.WriteString(fmt.Sprintf("[%s]\n", path))
		builder.WriteString(fmt.Sprintf("```%s\n", language))
		builder.WriteString(projectFiles[path])
		if !strings.HasSuffix(projectFiles[path], "\n") {
			builder.WriteString("\n")
		}
		builder.WriteString("```\n\n")
	}

	builder.WriteString("==== COMPILER ERRORS ====\n")
	builder.WriteString(diagnostics)
	builder.WriteString("\n\nFix the errors and return the COMPLETE corrected project.\n")

	return builder.String()
}

// orderedPaths returns the project paths with the manifest first so the
// model sees dependencies before the sources that use them.
func orderedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))

	if _, ok := files[rust_extractor.ManifestFileName]; ok {
		paths = append(paths, rust_extractor.ManifestFileName)
	}

	var sources []string
	for path := range files {
		if path != rust_extractor.ManifestFileName {
			sources = append(sources, path)
		}
	}
	sort.Strings(sources)

	return append(paths, sources...)
}
