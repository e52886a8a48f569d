package checks

import (
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "LongIntegerWithLowercaseSuffixUsage",
			Name:        `Long suffix "L" should be upper case`,
			Description: `A lower case "l" suffix is easily mistaken for the digit 1.`,
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return longIntegerSuffix{} },
	})
}

type longIntegerSuffix struct{}

func (longIntegerSuffix) Subscriptions() []ast.Type { return []ast.Type{ast.TokenType(token.Number)} }

func (longIntegerSuffix) VisitNode(ctx *check.Context, n ast.Node) {
	if strings.HasSuffix(n.TokenText(), "l") {
		ctx.ReportNode(n, `Replace suffix in long integers from lower case "l" to upper case "L".`)
	}
}
