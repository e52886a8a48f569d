package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "S108",
			Name:        "Nested blocks of code should not be left empty",
			Description: "A block holding only pass and no comment is flagged, unless it is a function or class body or an exception handler.",
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return emptyBlock{} },
	})
}

type emptyBlock struct{}

func (emptyBlock) Subscriptions() []ast.Type { return []ast.Type{ast.Suite} }

func (emptyBlock) VisitNode(ctx *check.Context, suite ast.Node) {
	if suite.Parent().Is(ast.Funcdef, ast.Classdef) || inExceptHandler(suite) {
		return
	}

	stmtLists := suite.Children(ast.StmtList)
	if len(stmtLists) == 0 {
		for _, stmt := range suite.Children(ast.Statement) {
			if stmt.HasDirectChildren(ast.CompoundStmt) {
				return
			}
			stmtLists = append(stmtLists, stmt.Children(ast.StmtList)...)
		}
	}
	if len(stmtLists) == 0 {
		return
	}
	for _, list := range stmtLists {
		for _, simple := range list.Children(ast.SimpleStmt) {
			for _, c := range simple.Children() {
				if !c.Is(ast.PassStmt) {
					return
				}
			}
		}
	}
	if containsComment(suite) {
		return
	}
	ctx.ReportNode(stmtLists[0], "Either remove or fill this block of code.")
}

// inExceptHandler matches EXCEPT_CLAUSE ':' SUITE inside a try statement.
func inExceptHandler(suite ast.Node) bool {
	return suite.Parent().Is(ast.TryStmt) &&
		suite.PreviousSibling().PreviousSibling().Is(ast.ExceptClause)
}

func containsComment(n ast.Node) bool {
	for _, tok := range n.Tokens() {
		if len(tok.Comments()) > 0 {
			return true
		}
	}
	return false
}
