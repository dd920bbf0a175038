package utils

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns are path parts never worth sending to the
// generator: VCS metadata, editor state, build output, binary assets.
var defaultIgnorePatterns = []string{
	".git",
	".svn",
	".idea",
	".vscode",
	".cache",
	".tox",
	".venv",
	"venv",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
	"node_modules",
	"dist",
	"build",
	"out",
	"*.pyc",
	"*.pyo",
	"*.so",
	"*.egg-info",
	"*.log",
	"*.bak",
}

// skippedFolders are repository folders excluded from conversion input.
var skippedFolders = []string{"test", "tests", "doc", "docs"}

// IsDefaultIgnored reports whether any part of the path matches the
// built-in ignore list.
func IsDefaultIgnored(path string) bool {
	parts := strings.Split(path, "/")

	for _, part := range parts {
		part = strings.ToLower(part)
		for _, pattern := range defaultIgnorePatterns {
			if strings.HasPrefix(pattern, "*") {
				if strings.HasSuffix(part, strings.TrimPrefix(pattern, "*")) {
					return true
				}
			} else if part == pattern {
				return true
			}
		}
	}
	return false
}

// IsSkippedFolder reports whether the path sits under a test or docs folder.
func IsSkippedFolder(path string) bool {
	for _, part := range strings.Split(path, "/") {
		lower := strings.ToLower(part)
		for _, folder := range skippedFolders {
			if lower == folder {
				return true
			}
		}
	}
	return false
}

// CompileGitignore loads the repository's .gitignore when present. Returns
// nil when there is none, which matches everything-allowed semantics.
func CompileGitignore(rootDir string) *ignore.GitIgnore {
	gitIgnore, err := ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gitIgnore
}
