// Package grammar defines the rule set of the dialect on top of the peg
// engine.
package grammar

import (
	"sync"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/peg"
	"github.com/phobologic/mcheck/internal/token"
)

var (
	once    sync.Once
	dialect *peg.Grammar
)

// Get returns the shared, immutable dialect grammar.
func Get() *peg.Grammar {
	once.Do(func() {
		dialect = New().MustBuild(ast.FileInput)
	})
	return dialect
}

// New returns a builder holding every rule of the dialect. Callers build it
// with ast.FileInput as the root.
func New() *peg.Builder {
	b := peg.NewBuilder()
	statements(b)
	compoundStatements(b)
	expressions(b)
	return b
}

func statements(b *peg.Builder) {
	b.Rule(ast.FileInput).Is(peg.ZeroOrMore(peg.FirstOf(token.Newline, ast.Statement)), token.EOF)
	b.Rule(ast.Statement).Is(peg.FirstOf(
		peg.Seq(ast.StmtList, token.Newline),
		ast.CompoundStmt,
		ast.StmtList))
	b.Rule(ast.StmtList).Is(ast.SimpleStmt, peg.ZeroOrMore(token.Semicolon, ast.SimpleStmt), peg.Optional(token.Semicolon))
	b.Rule(ast.SimpleStmt).Is(peg.FirstOf(
		ast.PrintStmt,
		ast.ExecStmt,
		ast.ExpressionStmt,
		ast.AssertStmt,
		ast.PassStmt,
		ast.DelStmt,
		ast.ReturnStmt,
		ast.YieldStmt,
		ast.RaiseStmt,
		ast.BreakStmt,
		ast.ContinueStmt,
		ast.ImportStmt,
		ast.GlobalStmt,
		ast.NonlocalStmt))

	b.Rule(ast.PrintStmt).Is("print", peg.NextNot(token.LParen), peg.FirstOf(
		peg.Seq(token.RShift, ast.Test, peg.Optional(peg.OneOrMore(token.Comma, ast.Test), peg.Optional(token.Comma))),
		peg.Optional(ast.Test, peg.ZeroOrMore(token.Comma, ast.Test), peg.Optional(token.Comma))))
	b.Rule(ast.ExecStmt).Is("exec", peg.NextNot(token.LParen), ast.OrExpr, peg.Optional(token.KwIn, ast.Test, peg.Optional(token.Comma, ast.Test)))

	b.Rule(ast.ExpressionStmt).Is(ast.TestlistStarExpr, peg.FirstOf(
		peg.Seq(ast.Augassign, peg.FirstOf(ast.YieldExpr, ast.Testlist)),
		peg.ZeroOrMore(token.Assign, peg.FirstOf(ast.YieldExpr, ast.TestlistStarExpr))))
	b.Rule(ast.TestlistStarExpr).Is(
		peg.FirstOf(ast.Test, ast.StarExpr),
		peg.ZeroOrMore(token.Comma, peg.FirstOf(ast.Test, ast.StarExpr)),
		peg.Optional(token.Comma))
	b.Rule(ast.Augassign).Is(peg.FirstOf(
		token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign, token.FloorDivAssign, token.PercentAssign,
		token.PowerAssign, token.RShiftAssign, token.LShiftAssign, token.AmpAssign, token.CaretAssign, token.PipeAssign))

	b.Rule(ast.AssertStmt).Is(token.KwAssert, ast.Test, peg.Optional(token.Comma, ast.Test))
	b.Rule(ast.PassStmt).Is(token.KwPass)
	b.Rule(ast.DelStmt).Is(token.KwDel, ast.Exprlist)
	b.Rule(ast.ReturnStmt).Is(token.KwReturn, peg.Optional(ast.Testlist))
	b.Rule(ast.YieldStmt).Is(ast.YieldExpr)
	b.Rule(ast.RaiseStmt).Is(token.KwRaise, peg.Optional(ast.Test, peg.Optional(peg.FirstOf(
		peg.Seq(token.KwFrom, ast.Test),
		peg.Seq(token.Comma, ast.Test, peg.Optional(token.Comma, ast.Test))))))
	b.Rule(ast.BreakStmt).Is(token.KwBreak)
	b.Rule(ast.ContinueStmt).Is(token.KwContinue)

	b.Rule(ast.ImportStmt).Is(peg.FirstOf(ast.ImportName, ast.ImportFrom))
	b.Rule(ast.ImportName).Is(token.KwImport, ast.DottedAsNames)
	b.Rule(ast.ImportFrom).Is(token.KwFrom,
		peg.FirstOf(
			peg.Seq(peg.ZeroOrMore(peg.FirstOf(token.Dot, token.Ellipsis)), ast.DottedName),
			peg.OneOrMore(peg.FirstOf(token.Dot, token.Ellipsis))),
		token.KwImport,
		peg.FirstOf(token.Star, peg.Seq(token.LParen, ast.ImportAsNames, token.RParen), ast.ImportAsNames))
	b.Rule(ast.ImportAsName).Is(ast.Name, peg.Optional(token.KwAs, ast.Name))
	b.Rule(ast.DottedAsName).Is(ast.DottedName, peg.Optional(token.KwAs, ast.Name))
	b.Rule(ast.ImportAsNames).Is(ast.ImportAsName, peg.ZeroOrMore(token.Comma, ast.ImportAsName), peg.Optional(token.Comma))
	b.Rule(ast.DottedAsNames).Is(ast.DottedAsName, peg.ZeroOrMore(token.Comma, ast.DottedAsName))
	b.Rule(ast.GlobalStmt).Is(token.KwGlobal, ast.Name, peg.ZeroOrMore(token.Comma, ast.Name))
	b.Rule(ast.NonlocalStmt).Is(token.KwNonlocal, ast.Name, peg.ZeroOrMore(token.Comma, ast.Name))
}

func compoundStatements(b *peg.Builder) {
	b.Rule(ast.CompoundStmt).Is(peg.FirstOf(
		ast.IfStmt,
		ast.WhileStmt,
		ast.ForStmt,
		ast.TryStmt,
		ast.WithStmt,
		ast.Funcdef,
		ast.Classdef))
	b.Rule(ast.Suite).Is(peg.FirstOf(
		peg.Seq(ast.StmtList, token.Newline),
		peg.Seq(token.Newline, token.Indent, peg.OneOrMore(ast.Statement), token.Dedent)))

	elseClause := peg.Optional(token.KwElse, token.Colon, ast.Suite)
	b.Rule(ast.IfStmt).Is(token.KwIf, ast.Test, token.Colon, ast.Suite,
		peg.ZeroOrMore(token.KwElif, ast.Test, token.Colon, ast.Suite),
		elseClause)
	b.Rule(ast.WhileStmt).Is(token.KwWhile, ast.Test, token.Colon, ast.Suite, elseClause)
	b.Rule(ast.ForStmt).Is(token.KwFor, ast.Exprlist, token.KwIn, ast.Testlist, token.Colon, ast.Suite, elseClause)
	b.Rule(ast.TryStmt).Is(token.KwTry, token.Colon, ast.Suite, peg.FirstOf(
		peg.Seq(
			peg.OneOrMore(ast.ExceptClause, token.Colon, ast.Suite),
			elseClause,
			peg.Optional(token.KwFinally, token.Colon, ast.Suite)),
		peg.Seq(token.KwFinally, token.Colon, ast.Suite)))
	b.Rule(ast.ExceptClause).Is(token.KwExcept, peg.Optional(ast.Test, peg.Optional(peg.FirstOf(token.KwAs, token.Comma), ast.Test)))
	b.Rule(ast.WithStmt).Is(token.KwWith, ast.WithItem, peg.ZeroOrMore(token.Comma, ast.WithItem), token.Colon, ast.Suite)
	b.Rule(ast.WithItem).Is(ast.Test, peg.Optional(token.KwAs, ast.Expr))

	b.Rule(ast.Funcdef).Is(peg.Optional(ast.Decorators), token.KwDef, ast.Funcname,
		token.LParen, peg.Optional(ast.Varargslist), token.RParen,
		peg.Optional(token.Arrow, ast.Test),
		token.Colon, ast.Suite)
	b.Rule(ast.Decorators).Is(peg.OneOrMore(ast.Decorator))
	b.Rule(ast.Decorator).Is(token.At, ast.DottedName, peg.Optional(token.LParen, peg.Optional(ast.Arglist), token.RParen), token.Newline)
	b.Rule(ast.DottedName).Is(ast.Name, peg.ZeroOrMore(token.Dot, ast.Name))
	b.Rule(ast.Funcname).Is(ast.Name)
	b.Rule(ast.Classdef).Is(peg.Optional(ast.Decorators), token.KwClass, ast.Classname,
		peg.Optional(token.LParen, peg.Optional(ast.Arglist), token.RParen),
		token.Colon, ast.Suite)
	b.Rule(ast.Classname).Is(ast.Name)

	param := peg.Seq(ast.Fpdef, peg.Optional(token.Assign, ast.Test))
	b.Rule(ast.Varargslist).Is(peg.FirstOf(
		peg.Seq(
			peg.ZeroOrMore(param, token.Comma),
			peg.FirstOf(
				peg.Seq(token.Star, peg.Optional(ast.Name), peg.ZeroOrMore(token.Comma, param), peg.Optional(token.Comma, token.Power, ast.Name)),
				peg.Seq(token.Power, ast.Name)),
			peg.Optional(token.Comma)),
		peg.Seq(param, peg.ZeroOrMore(token.Comma, param), peg.Optional(token.Comma))))
	b.Rule(ast.Fpdef).Is(peg.FirstOf(ast.Name, peg.Seq(token.LParen, ast.Fplist, token.RParen)))
	b.Rule(ast.Fplist).Is(ast.Fpdef, peg.ZeroOrMore(token.Comma, ast.Fpdef), peg.Optional(token.Comma))
}

func expressions(b *peg.Builder) {
	b.Rule(ast.Test).Is(peg.FirstOf(
		peg.Seq(ast.OrTest, peg.Optional(token.KwIf, ast.OrTest, token.KwElse, ast.Test)),
		ast.Lambdef))
	b.Rule(ast.TestNocond).Is(peg.FirstOf(ast.OrTest, ast.LambdefNocond))
	b.Rule(ast.Lambdef).Is(token.KwLambda, peg.Optional(ast.Varargslist), token.Colon, ast.Test)
	b.Rule(ast.LambdefNocond).Is(token.KwLambda, peg.Optional(ast.Varargslist), token.Colon, ast.TestNocond)

	b.Rule(ast.OrTest).Is(ast.AndTest, peg.ZeroOrMore(token.KwOr, ast.AndTest)).SkipIfOneChild()
	b.Rule(ast.AndTest).Is(ast.NotTest, peg.ZeroOrMore(token.KwAnd, ast.NotTest)).SkipIfOneChild()
	b.Rule(ast.NotTest).Is(peg.FirstOf(peg.Seq(token.KwNot, ast.NotTest), ast.Comparison)).SkipIfOneChild()
	b.Rule(ast.Comparison).Is(ast.OrExpr, peg.ZeroOrMore(ast.CompOperator, ast.OrExpr)).SkipIfOneChild()
	b.Rule(ast.CompOperator).Is(peg.FirstOf(
		token.Lt, token.Gt, token.Eq, token.Ge, token.Le, token.Ne, token.LtGt,
		peg.Seq(token.KwIs, peg.Optional(token.KwNot)),
		peg.Seq(peg.Optional(token.KwNot), token.KwIn)))

	b.Rule(ast.StarExpr).Is(token.Star, ast.Expr)
	b.Rule(ast.Expr).Is(ast.XorExpr, peg.ZeroOrMore(token.Pipe, ast.XorExpr)).SkipIfOneChild()
	b.Rule(ast.OrExpr).Is(ast.XorExpr, peg.ZeroOrMore(token.Pipe, ast.XorExpr)).SkipIfOneChild()
	b.Rule(ast.XorExpr).Is(ast.AndExpr, peg.ZeroOrMore(token.Caret, ast.AndExpr)).SkipIfOneChild()
	b.Rule(ast.AndExpr).Is(ast.ShiftExpr, peg.ZeroOrMore(token.Amp, ast.ShiftExpr)).SkipIfOneChild()
	b.Rule(ast.ShiftExpr).Is(ast.AExpr, peg.ZeroOrMore(peg.FirstOf(token.LShift, token.RShift), ast.AExpr)).SkipIfOneChild()
	b.Rule(ast.AExpr).Is(ast.MExpr, peg.ZeroOrMore(peg.FirstOf(token.Plus, token.Minus), ast.MExpr)).SkipIfOneChild()
	b.Rule(ast.MExpr).Is(ast.Factor, peg.ZeroOrMore(peg.FirstOf(token.Star, token.FloorDiv, token.Slash, token.Percent), ast.Factor)).SkipIfOneChild()
	b.Rule(ast.Factor).Is(peg.FirstOf(peg.Seq(peg.FirstOf(token.Plus, token.Minus, token.Tilde), ast.Factor), ast.Power)).SkipIfOneChild()
	b.Rule(ast.Power).Is(ast.Atom, peg.ZeroOrMore(ast.Trailer), peg.Optional(token.Power, ast.Factor)).SkipIfOneChild()

	b.Rule(ast.Atom).Is(peg.FirstOf(
		peg.Seq(token.LParen, peg.Optional(peg.FirstOf(ast.YieldExpr, ast.TestlistComp)), token.RParen),
		peg.Seq(token.LBracket, peg.Optional(ast.TestlistComp), token.RBracket),
		peg.Seq(token.LBrace, peg.Optional(ast.Dictorsetmaker), token.RBrace),
		peg.Seq(token.Backtick, ast.Test, peg.ZeroOrMore(token.Comma, ast.Test), token.Backtick),
		ast.Name,
		token.Number,
		peg.OneOrMore(token.String),
		token.Ellipsis,
		token.KwNone,
		token.KwTrue,
		token.KwFalse))
	testOrStar := peg.FirstOf(ast.Test, ast.StarExpr)
	b.Rule(ast.TestlistComp).Is(testOrStar, peg.FirstOf(
		ast.CompFor,
		peg.Seq(peg.ZeroOrMore(token.Comma, testOrStar), peg.Optional(token.Comma))))
	b.Rule(ast.Trailer).Is(peg.FirstOf(
		peg.Seq(token.LParen, peg.Optional(ast.Arglist), token.RParen),
		peg.Seq(token.LBracket, ast.Subscriptlist, token.RBracket),
		peg.Seq(token.Dot, ast.Name)))
	b.Rule(ast.Subscriptlist).Is(ast.Subscript, peg.ZeroOrMore(token.Comma, ast.Subscript), peg.Optional(token.Comma))
	b.Rule(ast.Subscript).Is(peg.FirstOf(
		token.Ellipsis,
		peg.Seq(peg.Optional(ast.Test), token.Colon, peg.Optional(ast.Test), peg.Optional(ast.Sliceop)),
		ast.Test))
	b.Rule(ast.Sliceop).Is(token.Colon, peg.Optional(ast.Test))

	exprOrStar := peg.FirstOf(ast.Expr, ast.StarExpr)
	b.Rule(ast.Exprlist).Is(exprOrStar, peg.ZeroOrMore(token.Comma, exprOrStar), peg.Optional(token.Comma))
	b.Rule(ast.Testlist).Is(ast.Test, peg.ZeroOrMore(token.Comma, ast.Test), peg.Optional(token.Comma))
	b.Rule(ast.Dictorsetmaker).Is(peg.FirstOf(
		peg.Seq(ast.Test, token.Colon, ast.Test, peg.FirstOf(
			ast.CompFor,
			peg.Seq(peg.ZeroOrMore(token.Comma, ast.Test, token.Colon, ast.Test), peg.Optional(token.Comma)))),
		peg.Seq(ast.Test, peg.FirstOf(
			ast.CompFor,
			peg.Seq(peg.ZeroOrMore(token.Comma, ast.Test), peg.Optional(token.Comma))))))

	argItem := peg.FirstOf(peg.Seq(token.Star, ast.Test), peg.Seq(token.Power, ast.Test), ast.Argument)
	b.Rule(ast.Arglist).Is(argItem, peg.ZeroOrMore(token.Comma, argItem), peg.Optional(token.Comma))
	b.Rule(ast.Argument).Is(peg.FirstOf(
		peg.Seq(ast.Test, token.Assign, ast.Test),
		peg.Seq(ast.Test, peg.Optional(ast.CompFor))))

	b.Rule(ast.CompIter).Is(peg.FirstOf(ast.CompFor, ast.CompIf))
	b.Rule(ast.CompFor).Is(token.KwFor, ast.Exprlist, token.KwIn, ast.OrTest, peg.Optional(ast.CompIter))
	b.Rule(ast.CompIf).Is(token.KwIf, ast.TestNocond, peg.Optional(ast.CompIter))
	b.Rule(ast.YieldExpr).Is(token.KwYield, peg.Optional(peg.FirstOf(peg.Seq(token.KwFrom, ast.Test), ast.Testlist)))
	b.Rule(ast.Name).Is(token.Name)
}
