package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderFileDiffs summarizes what changed between two extracted file sets:
// added and removed paths, and a line-level diff for modified files. Used
// for logging what a fix attempt rewrote.
func RenderFileDiffs(oldFiles, newFiles map[string]string) string {
	var builder strings.Builder

	paths := make(map[string]struct{})
	for path := range oldFiles {
		paths[path] = struct{}{}
	}
	for path := range newFiles {
		paths[path] = struct{}{}
	}

	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	dmp := diffmatchpatch.New()

	for _, path := range sorted {
		oldContent, hadOld := oldFiles[path]
		newContent, hasNew := newFiles[path]

		switch {
		case !hadOld:
			builder.WriteString(fmt.Sprintf("+ %s (added)\n", path))
		case !hasNew:
			builder.WriteString(fmt.Sprintf("- %s (removed)\n", path))
		case oldContent != newContent:
			builder.WriteString(fmt.Sprintf("~ %s\n", path))
			diffs := dmp.DiffMain(oldContent, newContent, true)
			diffs = dmp.DiffCleanupSemantic(diffs)
			for _, diff := range diffs {
				text := strings.TrimRight(diff.Text, "\n")
				if text == "" {
					continue
				}
				switch diff.Type {
				case diffmatchpatch.DiffInsert:
					for _, line := range strings.Split(text, "\n") {
						builder.WriteString("  + " + line + "\n")
					}
				case diffmatchpatch.DiffDelete:
					for _, line := range strings.Split(text, "\n") {
						builder.WriteString("  - " + line + "\n")
					}
				}
			}
		}
	}

	return strings.TrimRight(builder.String(), "\n")
}
