package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "PreIncrementDecrement",
			Name:        "Increment and decrement operators should not be used",
			Description: "++x and --x are two unary operators, not an increment or a decrement.",
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return preIncrementDecrement{} },
	})
}

type preIncrementDecrement struct{}

func (preIncrementDecrement) Subscriptions() []ast.Type { return []ast.Type{ast.Factor} }

func (preIncrementDecrement) VisitNode(ctx *check.Context, n ast.Node) {
	if n.NumChildren() != 2 {
		return
	}
	op, operand := n.Child(0), n.Child(1)
	if !operand.Is(ast.Factor) || !operand.FirstChild().Is(op.Type()) {
		return
	}
	switch op.Token().Kind {
	case token.Plus:
		ctx.ReportNode(n, "This statement doesn't produce the expected result, replace use of non-existent pre-increment operator")
	case token.Minus:
		ctx.ReportNode(n, "This statement doesn't produce the expected result, replace use of non-existent pre-decrement operator")
	}
}
