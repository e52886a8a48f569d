// Package peg implements a packrat parser over token slices. Grammars are
// assembled with a Builder, validated once by Build and are immutable and
// safe for concurrent use afterwards.
package peg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
)

// ErrGrammar is returned by Build for malformed grammars.
var ErrGrammar = errors.New("invalid grammar")

type rule struct {
	typ            ast.Type
	body           Expr
	skipIfOneChild bool
}

// Grammar is a validated rule set with a root rule.
type Grammar struct {
	rules []*rule
	index map[ast.Type]int
	root  int
}

// Builder collects rule definitions.
type Builder struct {
	rules []*rule
	index map[ast.Type]int
	errs  []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[ast.Type]int)}
}

// RuleBuilder configures a single rule.
type RuleBuilder struct {
	r *rule
}

// Rule starts the definition of the rule producing nodes of type t.
func (b *Builder) Rule(t ast.Type) *RuleBuilder {
	if t.IsToken() {
		b.errs = append(b.errs, fmt.Errorf("%s is a token type, not a rule", t))
	}
	if _, dup := b.index[t]; dup {
		b.errs = append(b.errs, fmt.Errorf("rule %s defined twice", t))
	}
	r := &rule{typ: t}
	b.index[t] = len(b.rules)
	b.rules = append(b.rules, r)
	return &RuleBuilder{r: r}
}

// Is sets the rule's expression; several items form a sequence.
func (rb *RuleBuilder) Is(items ...any) *RuleBuilder {
	rb.r.body = seqOf(items)
	return rb
}

// SkipIfOneChild makes the rule produce no node of its own when it matched
// exactly one child; the child takes its place.
func (rb *RuleBuilder) SkipIfOneChild() *RuleBuilder {
	rb.r.skipIfOneChild = true
	return rb
}

// Build validates the rules and returns a grammar rooted at root. It
// rejects undefined references, repetitions whose body can match empty
// input and left-recursive rules.
func (b *Builder) Build(root ast.Type) (*Grammar, error) {
	errs := append([]error(nil), b.errs...)
	rootIdx, ok := b.index[root]
	if !ok {
		errs = append(errs, fmt.Errorf("root rule %s is not defined", root))
	}

	for _, r := range b.rules {
		if r.body == nil {
			errs = append(errs, fmt.Errorf("rule %s has no expression", r.typ))
			continue
		}
		walk(r.body, func(e Expr) {
			switch x := e.(type) {
			case *ruleRef:
				idx, ok := b.index[x.typ]
				if !ok {
					errs = append(errs, fmt.Errorf("rule %s references undefined rule %s", r.typ, x.typ))
					return
				}
				x.idx = idx
			case invalidExpr:
				errs = append(errs, fmt.Errorf("rule %s: unsupported expression %s", r.typ, x.describe()))
			}
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrGrammar, errors.Join(errs...))
	}

	g := &Grammar{rules: b.rules, index: b.index, root: rootIdx}
	nullable := g.nullable()
	for _, r := range g.rules {
		walk(r.body, func(e Expr) {
			var body Expr
			switch x := e.(type) {
			case zeroOrMore:
				body = x.body
			case oneOrMore:
				body = x.body
			default:
				return
			}
			if isNullable(body, nullable) {
				errs = append(errs, fmt.Errorf("rule %s: repeated expression %s can match empty input", r.typ, body.describe()))
			}
		})
	}
	if cycle := g.leftRecursion(nullable); cycle != nil {
		names := make([]string, len(cycle))
		for i, idx := range cycle {
			names[i] = g.rules[idx].typ.String()
		}
		errs = append(errs, fmt.Errorf("left recursion: %s", strings.Join(names, " -> ")))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrGrammar, errors.Join(errs...))
	}
	return g, nil
}

// MustBuild is Build panicking on error, for grammars fixed at compile time.
func (b *Builder) MustBuild(root ast.Type) *Grammar {
	g, err := b.Build(root)
	if err != nil {
		panic(err)
	}
	return g
}

// Root returns the type of the root rule.
func (g *Grammar) Root() ast.Type { return g.rules[g.root].typ }

// Describe returns the expression of rule t in builder notation.
func (g *Grammar) Describe(t ast.Type) string {
	idx, ok := g.index[t]
	if !ok {
		return ""
	}
	return g.rules[idx].body.describe()
}

func walk(e Expr, fn func(Expr)) {
	fn(e)
	switch x := e.(type) {
	case seqExpr:
		for _, it := range x.items {
			walk(it, fn)
		}
	case firstOfExpr:
		for _, alt := range x.alts {
			walk(alt, fn)
		}
	case zeroOrMore:
		walk(x.body, fn)
	case oneOrMore:
		walk(x.body, fn)
	case optionalExpr:
		walk(x.body, fn)
	case nextNotExpr:
		walk(x.body, fn)
	}
}

func isNullable(e Expr, rules []bool) bool {
	switch x := e.(type) {
	case *ruleRef:
		return rules[x.idx]
	case seqExpr:
		for _, it := range x.items {
			if !isNullable(it, rules) {
				return false
			}
		}
		return true
	case firstOfExpr:
		for _, alt := range x.alts {
			if isNullable(alt, rules) {
				return true
			}
		}
		return false
	case oneOrMore:
		return isNullable(x.body, rules)
	case zeroOrMore, optionalExpr, nextNotExpr:
		return true
	}
	return false
}

// nullable computes, per rule, whether it can succeed without consuming
// tokens.
func (g *Grammar) nullable() []bool {
	ns := make([]bool, len(g.rules))
	for changed := true; changed; {
		changed = false
		for i, r := range g.rules {
			if !ns[i] && isNullable(r.body, ns) {
				ns[i] = true
				changed = true
			}
		}
	}
	return ns
}

// leftRefs returns the rules e may invoke before consuming any token.
func leftRefs(e Expr, nullable []bool, out []int) []int {
	switch x := e.(type) {
	case *ruleRef:
		out = append(out, x.idx)
	case seqExpr:
		for _, it := range x.items {
			out = leftRefs(it, nullable, out)
			if !isNullable(it, nullable) {
				break
			}
		}
	case firstOfExpr:
		for _, alt := range x.alts {
			out = leftRefs(alt, nullable, out)
		}
	case zeroOrMore:
		out = leftRefs(x.body, nullable, out)
	case oneOrMore:
		out = leftRefs(x.body, nullable, out)
	case optionalExpr:
		out = leftRefs(x.body, nullable, out)
	case nextNotExpr:
		out = leftRefs(x.body, nullable, out)
	}
	return out
}

// leftRecursion returns a cycle of rules that can call themselves without
// consuming input, or nil.
func (g *Grammar) leftRecursion(nullable []bool) []int {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(g.rules))
	var path []int
	var visit func(i int) []int
	visit = func(i int) []int {
		state[i] = active
		path = append(path, i)
		for _, next := range leftRefs(g.rules[i].body, nullable, nil) {
			switch state[next] {
			case active:
				for j, idx := range path {
					if idx == next {
						return append(append([]int(nil), path[j:]...), next)
					}
				}
			case unvisited:
				if c := visit(next); c != nil {
					return c
				}
			}
		}
		path = path[:len(path)-1]
		state[i] = done
		return nil
	}
	for i := range g.rules {
		if state[i] == unvisited {
			if c := visit(i); c != nil {
				return c
			}
		}
	}
	return nil
}
