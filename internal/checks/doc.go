// Package checks holds the built-in rules. Importing it registers every
// rule with package check.
package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

func kw(k token.Kind) ast.Type { return ast.TokenType(k) }
