package peg

import (
	"fmt"
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

// Expr is a parsing expression. Values of type token.Kind, ast.Type and
// string are accepted wherever an Expr is expected and stand for a token
// of that kind, a reference to that rule and a token with exactly that
// text, respectively.
type Expr interface {
	describe() string
}

type (
	kindExpr  struct{ kind token.Kind }
	valueExpr struct{ text string }
	ruleRef   struct {
		typ ast.Type
		idx int
	}
	seqExpr      struct{ items []Expr }
	firstOfExpr  struct{ alts []Expr }
	zeroOrMore   struct{ body Expr }
	oneOrMore    struct{ body Expr }
	optionalExpr struct{ body Expr }
	nextNotExpr  struct{ body Expr }
)

func (e kindExpr) describe() string  { return fmt.Sprintf("%q", e.kind.String()) }
func (e valueExpr) describe() string { return fmt.Sprintf("%q", e.text) }
func (e *ruleRef) describe() string  { return e.typ.String() }

func (e seqExpr) describe() string     { return "seq(" + describeAll(e.items) + ")" }
func (e firstOfExpr) describe() string { return "firstOf(" + describeAll(e.alts) + ")" }
func (e zeroOrMore) describe() string  { return "zeroOrMore(" + e.body.describe() + ")" }
func (e oneOrMore) describe() string   { return "oneOrMore(" + e.body.describe() + ")" }
func (e optionalExpr) describe() string {
	return "optional(" + e.body.describe() + ")"
}
func (e nextNotExpr) describe() string { return "nextNot(" + e.body.describe() + ")" }

func describeAll(items []Expr) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.describe()
	}
	return strings.Join(parts, ", ")
}

// invalidExpr records an argument of unsupported type so that Build can
// report it.
type invalidExpr struct{ v any }

func (e invalidExpr) describe() string { return fmt.Sprintf("invalid(%T)", e.v) }

func toExpr(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case token.Kind:
		return kindExpr{kind: x}
	case ast.Type:
		if x.IsToken() {
			return kindExpr{kind: token.Kind(x)}
		}
		return &ruleRef{typ: x, idx: -1}
	case string:
		return valueExpr{text: x}
	}
	return invalidExpr{v: v}
}

func toExprs(vs []any) []Expr {
	out := make([]Expr, len(vs))
	for i, v := range vs {
		out[i] = toExpr(v)
	}
	return out
}

func seqOf(vs []any) Expr {
	if len(vs) == 1 {
		return toExpr(vs[0])
	}
	return seqExpr{items: toExprs(vs)}
}

// Seq matches every item in order.
func Seq(items ...any) Expr { return seqOf(items) }

// FirstOf tries each alternative in order and commits to the first match.
func FirstOf(alts ...any) Expr { return firstOfExpr{alts: toExprs(alts)} }

// ZeroOrMore matches the sequence of items greedily, any number of times.
func ZeroOrMore(items ...any) Expr { return zeroOrMore{body: seqOf(items)} }

// OneOrMore is ZeroOrMore requiring at least one match.
func OneOrMore(items ...any) Expr { return oneOrMore{body: seqOf(items)} }

// Optional matches the sequence of items or nothing.
func Optional(items ...any) Expr { return optionalExpr{body: seqOf(items)} }

// NextNot succeeds without consuming input when the items do not match.
func NextNot(items ...any) Expr { return nextNotExpr{body: seqOf(items)} }
