package scanner

import (
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/sourcecode"
	"github.com/phobologic/mcheck/internal/token"
)

const noSonarTag = "NOSONAR"

// scope is the per-file metric state shared by the metric visitors.
type scope struct {
	ignoreHeaderComments bool

	file    *sourcecode.Node
	stack   []*sourcecode.Node
	noSonar map[int]bool
}

func newScope(path string, ignoreHeaderComments bool) *scope {
	file := sourcecode.New(sourcecode.File, path, 1)
	return &scope{
		ignoreHeaderComments: ignoreHeaderComments,
		file:                 file,
		stack:                []*sourcecode.Node{file},
		noSonar:              make(map[int]bool),
	}
}

func (s *scope) top() *sourcecode.Node { return s.stack[len(s.stack)-1] }

func (s *scope) push(n *sourcecode.Node) { s.stack = append(s.stack, n) }

func (s *scope) pop() {
	if len(s.stack) == 1 {
		return
	}
	n := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	s.top().AddChild(n)
}

// metricVisitors returns the visitors feeding s. Their order is part of the
// dispatch contract: scope builders run before the counters so that a
// definition's own counts land on its node.
func metricVisitors(s *scope) []namedVisitor {
	return []namedVisitor{
		{"metrics.classes", &definitionBuilder{scope: s, typ: ast.Classdef, kind: sourcecode.Class, name: ast.Classname}},
		{"metrics.functions", &definitionBuilder{scope: s, typ: ast.Funcdef, kind: sourcecode.Function, name: ast.Funcname}},
		{"metrics.counters", &counter{scope: s}},
		{"metrics.complexity", &complexity{scope: s}},
		{"metrics.lines", &lineCounter{scope: s, code: make(map[int]bool), comments: make(map[int]bool)}},
	}
}

type namedVisitor struct {
	name    string
	visitor check.Check
}

// definitionBuilder opens a Class or Function scope for each definition.
type definitionBuilder struct {
	scope *scope
	typ   ast.Type
	kind  sourcecode.Kind
	name  ast.Type
}

func (b *definitionBuilder) Subscriptions() []ast.Type { return []ast.Type{b.typ} }

func (b *definitionBuilder) VisitNode(_ *check.Context, n ast.Node) {
	name := n.FirstChild(b.name)
	node := sourcecode.New(b.kind, sourcecode.Key(name.TokenText(), name.Line()), name.Line())
	node.EndLine = lastCodeLine(n)
	node.Set(sourcecode.Lines, node.EndLine-node.StartLine+1)
	b.scope.push(node)
}

func (b *definitionBuilder) LeaveNode(*check.Context, ast.Node) { b.scope.pop() }

// lastCodeLine returns the last line of n that holds source text.
func lastCodeLine(n ast.Node) int {
	toks := n.Tokens()
	for i := len(toks) - 1; i >= 0; i-- {
		if !toks[i].Kind.IsSynthetic() && toks[i].Kind != token.Newline {
			return toks[i].EndLine()
		}
	}
	return n.Line()
}

// counter counts statements and definitions into the innermost scope.
type counter struct{ scope *scope }

func (*counter) Subscriptions() []ast.Type {
	return []ast.Type{ast.Statement, ast.Funcdef, ast.Classdef}
}

func (c *counter) VisitNode(_ *check.Context, n ast.Node) {
	switch n.Type() {
	case ast.Statement:
		c.scope.top().Add(sourcecode.Statements, 1)
	case ast.Funcdef:
		c.scope.top().Add(sourcecode.Functions, 1)
	case ast.Classdef:
		c.scope.top().Add(sourcecode.Classes, 1)
	}
}

// complexity adds one per branching construct.
type complexity struct{ scope *scope }

func (*complexity) Subscriptions() []ast.Type {
	return []ast.Type{
		ast.Funcdef,
		ast.WhileStmt,
		ast.ForStmt,
		ast.ReturnStmt,
		ast.RaiseStmt,
		ast.ExceptClause,
		ast.TokenType(token.KwIf),
		ast.TokenType(token.KwAnd),
		ast.TokenType(token.KwOr),
	}
}

func (c *complexity) VisitNode(*check.Context, ast.Node) {
	c.scope.top().Add(sourcecode.Complexity, 1)
}

// lineCounter measures physical lines, lines of code, comment lines and
// NOSONAR markers. Classes and functions are credited with the code and
// comment lines inside their own line range once the file is left.
type lineCounter struct {
	scope    *scope
	seenCode bool
	code     map[int]bool
	comments map[int]bool
}

func (c *lineCounter) VisitToken(_ *check.Context, tok token.Token) {
	for _, tr := range tok.Comments() {
		if strings.Contains(tr.Text, noSonarTag) {
			c.scope.noSonar[tr.Line] = true
		}
		if c.scope.ignoreHeaderComments && !c.seenCode {
			continue
		}
		if strings.TrimSpace(strings.TrimPrefix(tr.Text, "#")) != "" {
			c.comments[tr.Line] = true
		}
	}

	switch {
	case tok.Kind == token.EOF:
		c.scope.file.Set(sourcecode.Lines, tok.Line)
		c.scope.file.EndLine = tok.Line
	case tok.Kind.IsSynthetic(), tok.Kind == token.Newline:
	default:
		c.seenCode = true
		for l := tok.Line; l <= tok.EndLine(); l++ {
			c.code[l] = true
		}
	}
}

func (c *lineCounter) LeaveFile(*check.Context) {
	c.scope.file.Set(sourcecode.LinesOfCode, len(c.code))
	c.scope.file.Set(sourcecode.CommentLines, len(c.comments))
	for _, child := range c.scope.file.Children {
		child.Walk(func(n *sourcecode.Node) {
			n.Set(sourcecode.LinesOfCode, countLines(c.code, n.StartLine, n.EndLine))
			n.Set(sourcecode.CommentLines, countLines(c.comments, n.StartLine, n.EndLine))
		})
	}
}

// countLines returns how many lines of set fall within first..last.
func countLines(set map[int]bool, first, last int) int {
	n := 0
	for l := first; l <= last; l++ {
		if set[l] {
			n++
		}
	}
	return n
}
