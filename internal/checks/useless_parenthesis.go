package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "S1721",
			Name:        "Parentheses should not be used after certain keywords",
			Description: "Keywords such as if, while, return or not take an expression without parentheses.",
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return uselessParenthesis{} },
	})
}

const uselessParenthesisMessage = `Remove the parentheses after this "{0}" keyword`

var keywordsFollowedByTest = map[ast.Type]string{
	ast.AssertStmt: "assert",
	ast.RaiseStmt:  "raise",
	ast.WhileStmt:  "while",
}

type uselessParenthesis struct{}

func (uselessParenthesis) Subscriptions() []ast.Type {
	return []ast.Type{
		ast.AssertStmt,
		ast.DelStmt,
		ast.IfStmt,
		ast.ForStmt,
		ast.RaiseStmt,
		ast.ReturnStmt,
		ast.WhileStmt,
		ast.YieldExpr,
		ast.ExceptClause,
		ast.NotTest,
	}
}

func (uselessParenthesis) VisitNode(ctx *check.Context, n ast.Node) {
	if keyword, ok := keywordsFollowedByTest[n.Type()]; ok {
		checkParenthesis(ctx, n.FirstChild(ast.Test), keyword, n)
		return
	}
	switch n.Type() {
	case ast.DelStmt:
		checkParenthesis(ctx, n.FirstChild(ast.Exprlist), "del", n)
	case ast.IfStmt:
		tests := n.Children(ast.Test)
		checkParenthesis(ctx, tests[0], "if", n)
		if len(tests) > 1 {
			checkParenthesis(ctx, tests[1], "elif", tests[1])
		}
	case ast.ForStmt:
		checkParenthesis(ctx, n.FirstChild(ast.Exprlist), "for", n)
		checkParenthesis(ctx, n.FirstChild(ast.Testlist), "in", n)
	case ast.ReturnStmt:
		checkParenthesis(ctx, n.FirstChild(ast.Testlist), "return", n)
	case ast.YieldExpr:
		checkParenthesis(ctx, n.FirstChild(ast.Testlist), "yield", n)
	case ast.ExceptClause:
		if len(parenthesizedTests(n.Children(ast.Test))) == 1 {
			checkParenthesis(ctx, n.FirstChild(ast.Test), "except", n)
		}
	case ast.NotTest:
		visitNotTest(ctx, n)
	}
}

func visitNotTest(ctx *check.Context, n ast.Node) {
	for _, test := range parenthesizedTests(n.Children(ast.Atom)) {
		if test.HasDirectChildren(ast.Atom, ast.Comparison) {
			checkParenthesis(ctx, n.FirstChild().NextSibling(), "not", n)
			return
		}
	}
}

// parenthesizedTests collects the TEST children of the TESTLIST_COMP of each
// atom. Non-atoms are looked through one level, so both ATOM and TEST nodes
// are accepted.
func parenthesizedTests(nodes []ast.Node) []ast.Node {
	var out []ast.Node
	for _, n := range nodes {
		atoms := []ast.Node{n}
		if !n.Is(ast.Atom) {
			atoms = n.Children(ast.Atom)
		}
		for _, atom := range atoms {
			for _, comp := range atom.Children(ast.TestlistComp) {
				out = append(out, comp.Children(ast.Test)...)
			}
		}
	}
	return out
}

func checkParenthesis(ctx *check.Context, child ast.Node, keyword string, at ast.Node) {
	if child.IsNil() || child.Token().Kind != token.LParen {
		return
	}
	if child.Line() == child.LastToken().Line {
		ctx.ReportNode(at, uselessParenthesisMessage, keyword)
	}
}
