package models

// PythonFile holds one ingested source file with its structure outline.
type PythonFile struct {
	RelativePath string
	Content      string
	Outline      string
}
