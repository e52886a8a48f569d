// Package lang provides the dialect registry mapping file extensions to
// dialects and to the tree-sitter grammar used as a reference when
// cross-checking our own parser.
package lang

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language describes one dialect accepted by the front end.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// FindMethodClass returns the enclosing class name if a reference
	// function_definition node is a method. Returns "" otherwise.
	FindMethodClass func(node *sitter.Node, source []byte) string
}

// GetLanguage returns the tree-sitter reference grammar.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for the reference grammar.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps dialect names to their configuration.
// Populated by init() functions in per-dialect files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the dialect name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
