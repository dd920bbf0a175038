package utils

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/morler/oxidize/constants/lipgloss"
)

// RenderRustPreview prints the extracted project files with syntax
// highlighting, manifest first, sources in path order.
func RenderRustPreview(files map[string]string, theme string) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		// Cargo.toml before everything else.
		if strings.HasSuffix(paths[i], ".toml") != strings.HasSuffix(paths[j], ".toml") {
			return strings.HasSuffix(paths[i], ".toml")
		}
		return paths[i] < paths[j]
	})

	for _, path := range paths {
		fmt.Println(lipgloss.Info.Render(fmt.Sprintf("── %s ──", path)))

		language := "rust"
		if strings.HasSuffix(path, ".toml") {
			language = "toml"
		}

		if err := quick.Highlight(os.Stdout, files[path]+"\n", language, "terminal256", theme); err != nil {
			return err
		}
		fmt.Println()
	}

	return nil
}
