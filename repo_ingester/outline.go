package repo_ingester

import (
	"encoding/json"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/morler/oxidize/embed_data"
)

// OutlineFile extracts the structural elements of a Python source file
// (functions, classes, imports) using tree-sitter queries. The outline gives
// the generator an orientation map without inflating the prompt.
func OutlineFile(sourceCode []byte) []string {
	lang := python.GetLanguage()

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree := parser.Parse(nil, sourceCode)

	queries := make(map[string]string)
	if err := json.Unmarshal(embed_data.PythonQuery, &queries); err != nil {
		return nil
	}

	// Stable tag order keeps outlines reproducible across runs.
	tags := make([]string, 0, len(queries))
	for tag := range queries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var elements []string
	for _, tag := range tags {
		query, err := sitter.NewQuery([]byte(queries[tag]), lang)
		if err != nil {
			continue
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())

		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}

			for _, capture := range match.Captures {
				element := capture.Node.Content(sourceCode)
				elements = append(elements, fmt.Sprintf("%s: %s", tag, element))
			}
		}
	}

	return elements
}
