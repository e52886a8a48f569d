package peg

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

// ParseError reports the furthest position the parser reached, what it
// expected there and the rules that were active at that point.
type ParseError struct {
	Line     int
	Column   int
	Found    string
	Expected []string
	Rules    []string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d, column %d: unexpected %s", e.Line, e.Column, e.Found)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&sb, ", expected %s", strings.Join(e.Expected, " or "))
	}
	if len(e.Rules) > 0 {
		fmt.Fprintf(&sb, " (in %s)", strings.Join(e.Rules, " > "))
	}
	return sb.String()
}

// Option configures a single Parse call.
type Option func(*parser)

// WithoutMemoization disables the packrat cache. Results are identical,
// only slower on backtracking-heavy input.
func WithoutMemoization() Option {
	return func(p *parser) { p.memoize = false }
}

type pnode struct {
	typ      ast.Type
	first    int
	last     int
	children []*pnode
}

type memoKey struct {
	rule int32
	pos  int32
}

type memoEntry struct {
	node *pnode
	end  int
	ok   bool
}

type parser struct {
	g       *Grammar
	toks    []token.Token
	memoize bool
	memo    map[memoKey]memoEntry

	stack []int
	quiet int

	furthest  int
	expected  []string
	failStack []int
}

// Parse matches the root rule against toks, which must be consumed in
// full. Parse state is local to the call.
func (g *Grammar) Parse(toks []token.Token, opts ...Option) (*ast.Tree, error) {
	p := &parser{g: g, toks: toks, memoize: true, furthest: -1}
	for _, opt := range opts {
		opt(p)
	}
	if p.memoize {
		p.memo = make(map[memoKey]memoEntry, len(toks)*4)
	}

	node, end, ok := p.rule(g.root, 0)
	if !ok || end != len(toks) {
		if ok {
			p.fail(end, "end of input")
		}
		return nil, p.error()
	}
	tree := ast.NewTree(toks)
	appendNode(tree, node, -1)
	return tree, nil
}

func appendNode(tree *ast.Tree, n *pnode, parent int) {
	id := tree.Append(n.typ, parent, n.first, n.last)
	for _, c := range n.children {
		appendNode(tree, c, id)
	}
}

func (p *parser) rule(idx, pos int) (*pnode, int, bool) {
	key := memoKey{rule: int32(idx), pos: int32(pos)}
	if p.memoize {
		if e, ok := p.memo[key]; ok {
			return e.node, e.end, e.ok
		}
	}

	r := p.g.rules[idx]
	p.stack = append(p.stack, idx)
	var children []*pnode
	end, ok := p.match(r.body, pos, &children)
	p.stack = p.stack[:len(p.stack)-1]

	var node *pnode
	if ok {
		if r.skipIfOneChild && len(children) == 1 {
			node = children[0]
		} else {
			node = &pnode{typ: r.typ, first: pos, last: end - 1, children: children}
		}
	}
	if p.memoize {
		p.memo[key] = memoEntry{node: node, end: end, ok: ok}
	}
	return node, end, ok
}

func (p *parser) match(e Expr, pos int, out *[]*pnode) (int, bool) {
	switch x := e.(type) {
	case kindExpr:
		if pos < len(p.toks) && p.toks[pos].Kind == x.kind {
			*out = append(*out, p.leaf(pos))
			return pos + 1, true
		}
		p.fail(pos, x.describe())
		return pos, false

	case valueExpr:
		if pos < len(p.toks) && p.toks[pos].Text == x.text {
			*out = append(*out, p.leaf(pos))
			return pos + 1, true
		}
		p.fail(pos, x.describe())
		return pos, false

	case *ruleRef:
		node, end, ok := p.rule(x.idx, pos)
		if !ok {
			return pos, false
		}
		*out = append(*out, node)
		return end, true

	case seqExpr:
		mark := len(*out)
		cur := pos
		for _, it := range x.items {
			next, ok := p.match(it, cur, out)
			if !ok {
				*out = (*out)[:mark]
				return pos, false
			}
			cur = next
		}
		return cur, true

	case firstOfExpr:
		mark := len(*out)
		for _, alt := range x.alts {
			if end, ok := p.match(alt, pos, out); ok {
				return end, true
			}
			*out = (*out)[:mark]
		}
		return pos, false

	case zeroOrMore:
		return p.repeat(x.body, pos, out), true

	case oneOrMore:
		end, ok := p.match(x.body, pos, out)
		if !ok {
			return pos, false
		}
		return p.repeat(x.body, end, out), true

	case optionalExpr:
		mark := len(*out)
		if end, ok := p.match(x.body, pos, out); ok {
			return end, true
		}
		*out = (*out)[:mark]
		return pos, true

	case nextNotExpr:
		var scratch []*pnode
		p.quiet++
		_, ok := p.match(x.body, pos, &scratch)
		p.quiet--
		if ok {
			p.fail(pos, x.describe())
			return pos, false
		}
		return pos, true
	}
	panic(fmt.Sprintf("peg: unexpected expression %T", e))
}

// repeat matches body as often as possible. An iteration that consumes
// nothing ends the loop.
func (p *parser) repeat(body Expr, pos int, out *[]*pnode) int {
	for {
		mark := len(*out)
		end, ok := p.match(body, pos, out)
		if !ok || end == pos {
			*out = (*out)[:mark]
			return pos
		}
		pos = end
	}
}

func (p *parser) leaf(pos int) *pnode {
	return &pnode{typ: ast.TokenType(p.toks[pos].Kind), first: pos, last: pos}
}

func (p *parser) fail(pos int, expected string) {
	if p.quiet > 0 || pos < p.furthest {
		return
	}
	if pos > p.furthest {
		p.furthest = pos
		p.expected = p.expected[:0]
		p.failStack = append(p.failStack[:0], p.stack...)
	}
	if !slices.Contains(p.expected, expected) {
		p.expected = append(p.expected, expected)
	}
}

func (p *parser) error() *ParseError {
	e := &ParseError{Line: 1, Found: "end of input"}
	pos := max(p.furthest, 0)
	if pos < len(p.toks) {
		tok := p.toks[pos]
		e.Line, e.Column = tok.Line, tok.Column
		switch tok.Kind {
		case token.EOF:
			e.Found = "end of file"
		case token.Newline, token.Indent, token.Dedent:
			e.Found = tok.Kind.String()
		default:
			e.Found = fmt.Sprintf("%q", tok.Text)
		}
	}
	e.Expected = append([]string(nil), p.expected...)
	slices.Sort(e.Expected)
	for _, idx := range p.failStack {
		e.Rules = append(e.Rules, p.g.rules[idx].typ.String())
	}
	return e
}
