package rust_compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/rust_extractor"
)

// ErrNoFiles reports that the materializer received an empty file set.
var ErrNoFiles = errors.New("no files to materialize")

// DefaultProjectName is used when the manifest declares no usable name.
const DefaultProjectName = "converted_project"

var projectNameRegex = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)

// DefaultCargoToml returns the manifest synthesized when a response carries
// none: default name, empty dependency section.
func DefaultCargoToml() string {
	return fmt.Sprintf("[package]\nname = \"%s\"\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n", DefaultProjectName)
}

// ExtractProjectName pulls the declared package name out of a manifest,
// falling back to DefaultProjectName when absent or malformed.
func ExtractProjectName(cargoToml string) string {
	if matches := projectNameRegex.FindStringSubmatch(cargoToml); matches != nil {
		return matches[1]
	}
	return DefaultProjectName
}

// SaveRustProject writes an extracted file set under outputDir as a Rust
// project and returns the created project root. A pre-existing project
// directory is destroyed and recreated, never merged into. After writing,
// the project is guaranteed to have a manifest and an entry point.
func SaveRustProject(logger *logging.Logger, files map[string]string, outputDir string) (string, error) {
	if len(files) == 0 {
		return "", ErrNoFiles
	}

	logger.Infof("Saving Rust project to %s", outputDir)

	// Work on a copy so the caller's extracted set is never mutated.
	projectFiles := make(map[string]string, len(files)+1)
	for relativePath, content := range files {
		projectFiles[relativePath] = content
	}

	if _, ok := projectFiles[rust_extractor.ManifestFileName]; !ok {
		logger.Warnf("No Cargo.toml found in response, creating default")
		projectFiles[rust_extractor.ManifestFileName] = DefaultCargoToml()
	}

	projectName := ExtractProjectName(projectFiles[rust_extractor.ManifestFileName])
	projectDir := filepath.Join(outputDir, projectName)

	if _, err := os.Stat(projectDir); err == nil {
		if err := os.RemoveAll(projectDir); err != nil {
			return "", fmt.Errorf("failed to remove existing project directory: %w", err)
		}
	}
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	for relativePath, content := range projectFiles {
		fullPath := filepath.Join(projectDir, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create directory for %s: %w", relativePath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", relativePath, err)
		}
		logger.Debugf("Saved: %s", relativePath)
	}

	// A buildable skeleton needs either a binary or a library entry point.
	srcDir := filepath.Join(projectDir, rust_extractor.SourceDir)
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create src directory: %w", err)
	}

	mainPath := filepath.Join(srcDir, rust_extractor.EntryPointFileName)
	libPath := filepath.Join(srcDir, "lib.rs")
	if !fileExists(mainPath) && !fileExists(libPath) {
		logger.Infof("Creating default main.rs")
		if err := os.WriteFile(mainPath, []byte(rust_extractor.HelloWorldMain), 0644); err != nil {
			return "", fmt.Errorf("failed to write default main.rs: %w", err)
		}
	}

	logger.Infof("Rust project saved: %s", projectDir)
	return projectDir, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
