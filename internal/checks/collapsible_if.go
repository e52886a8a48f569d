package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "S1066",
			Name:        `Collapsible "if" statements should be merged`,
			Description: "An if statement whose body is a single if without else or elif can be merged with it.",
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return collapsibleIf{} },
	})
}

type collapsibleIf struct{}

func (collapsibleIf) Subscriptions() []ast.Type { return []ast.Type{ast.IfStmt} }

func (collapsibleIf) VisitNode(ctx *check.Context, n ast.Node) {
	suite := n.LastChild(ast.Suite)
	if suite.PreviousSibling().PreviousSibling().Is(kw(token.KwElse)) {
		return
	}
	inner := singleIfChild(suite)
	if !inner.IsNil() && !inner.HasDirectChildren(kw(token.KwElif), kw(token.KwElse)) {
		ctx.ReportNode(inner, "Merge this if statement with the enclosing one.")
	}
}

func singleIfChild(suite ast.Node) ast.Node {
	stmts := suite.Children(ast.Statement)
	if len(stmts) != 1 {
		return ast.Node{}
	}
	var ifs []ast.Node
	for _, c := range stmts[0].Children(ast.CompoundStmt) {
		ifs = append(ifs, c.Children(ast.IfStmt)...)
	}
	if len(ifs) != 1 {
		return ast.Node{}
	}
	return ifs[0]
}
