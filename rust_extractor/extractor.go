package rust_extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// ManifestFileName is the canonical key a manifest segment is stored
	// under, regardless of how the response spelled it.
	ManifestFileName = "Cargo.toml"

	// SourceDir is the conventional Rust source directory.
	SourceDir = "src"

	// EntryPointFileName is the binary entry point inside SourceDir.
	EntryPointFileName = "main.rs"

	// HelloWorldMain is the minimal compilable entry point used when the
	// response carries no usable Rust source.
	HelloWorldMain = "fn main() {\n    println!(\"Hello, world!\");\n}\n"
)

// ErrEmptyExtraction reports a response with no recoverable files.
var ErrEmptyExtraction = errors.New("no Rust files found in AI response")

// SegmentKind classifies a fenced segment by its language marker.
type SegmentKind int

const (
	SegmentManifest SegmentKind = iota // toml / cargo fences
	SegmentSource                      // rust fences
	SegmentOther                       // any other language marker
)

// ParsedSegment is one fenced code segment from a response, with its
// bracketed path annotation when present.
type ParsedSegment struct {
	Kind    SegmentKind
	Path    string
	Content string
}

var (
	fenceOpenRegex  = regexp.MustCompile("^```(\\S*)\\s*$")
	pathLineRegex   = regexp.MustCompile(`^\[([^\]]+)\]\s*$`)
	manifestHeader  = "[package]"
	fenceMarker     = "```"
	sourceExtension = ".rs"
)

func kindForLanguage(language string) SegmentKind {
	switch strings.ToLower(language) {
	case "toml", "cargo":
		return SegmentManifest
	case "rust":
		return SegmentSource
	default:
		return SegmentOther
	}
}

// ParseSegments scans a response for fenced code segments of any language.
// The first line inside a fence is consumed as the segment path when it is a
// bracketed annotation like [src/main.rs].
func ParseSegments(response string) []ParsedSegment {
	var segments []ParsedSegment

	lines := strings.Split(response, "\n")

	insideFence := false
	var currentKind SegmentKind
	var currentPath string
	var currentLines []string
	firstContentLine := false

	for _, line := range lines {
		if !insideFence {
			if matches := fenceOpenRegex.FindStringSubmatch(strings.TrimSpace(line)); matches != nil {
				insideFence = true
				currentKind = kindForLanguage(matches[1])
				currentPath = ""
				currentLines = nil
				firstContentLine = true
			}
			continue
		}

		if strings.TrimSpace(line) == fenceMarker {
			insideFence = false
			segments = append(segments, ParsedSegment{
				Kind:    currentKind,
				Path:    currentPath,
				Content: strings.TrimSpace(strings.Join(currentLines, "\n")),
			})
			continue
		}

		if firstContentLine {
			firstContentLine = false
			if matches := pathLineRegex.FindStringSubmatch(strings.TrimSpace(line)); matches != nil {
				annotation := strings.TrimSpace(matches[1])
				// Bracketed TOML table headers like [package] or
				// [dependencies] are content, not path annotations.
				if strings.Contains(annotation, ".") {
					currentPath = annotation
					continue
				}
			}
		}

		currentLines = append(currentLines, line)
	}

	// An unterminated fence still counts as a segment.
	if insideFence {
		segments = append(segments, ParsedSegment{
			Kind:    currentKind,
			Path:    currentPath,
			Content: strings.TrimSpace(strings.Join(currentLines, "\n")),
		})
	}

	return segments
}

// routePath applies the path normalization rules, in order.
func routePath(path string) string {
	if strings.EqualFold(path, ManifestFileName) {
		return ManifestFileName
	}
	if strings.HasPrefix(path, SourceDir+"/") {
		return path
	}
	if !strings.Contains(path, "/") && strings.HasSuffix(path, sourceExtension) {
		return SourceDir + "/" + path
	}
	return path
}

// Extract parses a generated response into relative path -> file content.
// Later segments overwrite earlier ones on path collisions. It fails with
// ErrEmptyExtraction only when the response contains no fenced segments at
// all; a response with fences but no usable Rust yields a hello-world entry
// point so the build step still has something to compile.
func Extract(response string) (map[string]string, error) {
	segments := ParseSegments(response)
	files := make(map[string]string)

	// Primary pass: annotated manifest and source segments.
	for _, segment := range segments {
		if segment.Kind == SegmentOther || segment.Path == "" {
			continue
		}
		files[routePath(segment.Path)] = segment.Content
	}

	// Looser manifest scan when no fenced manifest was captured.
	if _, ok := files[ManifestFileName]; !ok {
		if manifest := extractLooseManifest(response); manifest != "" {
			files[ManifestFileName] = manifest
		}
	}

	// Path-less fallback: number the bare rust segments under src/.
	if len(files) == 0 {
		index := 0
		for _, segment := range segments {
			if segment.Kind != SegmentSource {
				continue
			}
			if index == 0 {
				files[SourceDir+"/"+EntryPointFileName] = segment.Content
			} else {
				files[fmt.Sprintf("%s/module_%d.rs", SourceDir, index)] = segment.Content
			}
			index++
		}
	}

	// Skeleton fallback: fences exist but none carried convertible content.
	if len(files) == 0 && len(segments) > 0 {
		files[SourceDir+"/"+EntryPointFileName] = HelloWorldMain
	}

	if len(files) == 0 {
		return nil, ErrEmptyExtraction
	}

	return files, nil
}

// extractLooseManifest captures a bare [package] section up to the next
// blank line, fence marker, or end of input.
func extractLooseManifest(response string) string {
	start := strings.Index(response, manifestHeader)
	if start == -1 {
		return ""
	}

	var captured []string
	for _, line := range strings.Split(response[start:], "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), fenceMarker) {
			break
		}
		captured = append(captured, line)
	}

	return strings.TrimSpace(strings.Join(captured, "\n"))
}
