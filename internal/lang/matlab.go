package lang

import "github.com/smacker/go-tree-sitter/python"

// The dialect uses Python statement and expression syntax.
func init() {
	Languages["matlab"] = &Language{
		Name:            "matlab",
		Extensions:      []string{".m"},
		lang:            python.GetLanguage(),
		FindMethodClass: pythonFindMethodClass,
	}
}
