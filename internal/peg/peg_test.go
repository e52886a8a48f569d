package peg

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

// tokens builds a token slice from kinds, one column per token, ending
// with EOF.
func tokens(kinds ...token.Kind) []token.Token {
	out := make([]token.Token, 0, len(kinds)+1)
	for i, k := range kinds {
		out = append(out, token.Token{Kind: k, Text: k.String(), Line: 1, Column: i})
	}
	return append(out, token.Token{Kind: token.EOF, Line: 1, Column: len(kinds)})
}

// sumGrammar accepts NUMBER (("+" | "-") NUMBER)* EOF.
func sumGrammar(t *testing.T) *Grammar {
	t.Helper()
	b := NewBuilder()
	b.Rule(ast.FileInput).Is(ast.AExpr, token.EOF)
	b.Rule(ast.AExpr).Is(ast.Atom, ZeroOrMore(FirstOf(token.Plus, token.Minus), ast.Atom)).SkipIfOneChild()
	b.Rule(ast.Atom).Is(FirstOf(token.Number, Seq(token.LParen, ast.AExpr, token.RParen)))
	g, err := b.Build(ast.FileInput)
	require.NoError(t, err)
	return g
}

func TestParseSkipIfOneChild(t *testing.T) {
	t.Parallel()
	g := sumGrammar(t)

	tree, err := g.Parse(tokens(token.Number))
	require.NoError(t, err)
	root := tree.Root()
	require.Equal(t, 2, root.NumChildren())
	assert.Equal(t, ast.Atom, root.Child(0).Type())

	tree, err = g.Parse(tokens(token.Number, token.Plus, token.Number, token.Minus, token.Number))
	require.NoError(t, err)
	sum := tree.Root().Child(0)
	assert.Equal(t, ast.AExpr, sum.Type())
	assert.Equal(t, 5, sum.NumChildren())
	assert.Equal(t, ast.TokenType(token.Minus), sum.Child(3).Type())
}

func TestParseParentLinks(t *testing.T) {
	t.Parallel()
	g := sumGrammar(t)
	tree, err := g.Parse(tokens(token.LParen, token.Number, token.Plus, token.Number, token.RParen, token.Plus, token.Number))
	require.NoError(t, err)

	assert.True(t, tree.Root().Parent().IsNil())
	for i := 1; i < tree.Len(); i++ {
		n := tree.Node(i)
		p := n.Parent()
		require.False(t, p.IsNil())
		assert.Less(t, p.ID(), n.ID())
		assert.Contains(t, p.Children(), n)
	}
	assert.Len(t, tree.Root().Tokens(), 8)
}

func TestParseError(t *testing.T) {
	t.Parallel()
	g := sumGrammar(t)
	_, err := g.Parse(tokens(token.Number, token.Plus, token.Plus))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Column)
	assert.Equal(t, `"+"`, perr.Found)
	assert.ElementsMatch(t, []string{`"("`, `"NUMBER"`}, perr.Expected)
	assert.Equal(t, []string{"FILE_INPUT", "A_EXPR", "ATOM"}, perr.Rules)
	assert.Contains(t, err.Error(), "line 1, column 2")
}

func TestParseMemoizationIsTransparent(t *testing.T) {
	t.Parallel()
	g := sumGrammar(t)
	input := tokens(token.LParen, token.LParen, token.Number, token.RParen, token.Minus, token.Number, token.RParen, token.Plus, token.Number)

	memo, err := g.Parse(input)
	require.NoError(t, err)
	plain, err := g.Parse(input, WithoutMemoization())
	require.NoError(t, err)

	if diff := cmp.Diff(memo.Root().Shape(), plain.Root().Shape()); diff != "" {
		t.Errorf("memoized tree differs (-memo +plain):\n%s", diff)
	}
	assert.Equal(t, memo.Len(), plain.Len())
}

func TestNextNotAndValue(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Rule(ast.FileInput).Is(FirstOf(ast.PrintStmt, ast.Name), token.EOF)
	b.Rule(ast.PrintStmt).Is("print", NextNot(token.LParen), Optional(token.Number))
	b.Rule(ast.Name).Is(token.Name, Optional(token.LParen, token.RParen))
	g := b.MustBuild(ast.FileInput)

	toks := []token.Token{{Kind: token.Name, Text: "print"}, {Kind: token.Number, Text: "1"}, {Kind: token.EOF}}
	tree, err := g.Parse(toks)
	require.NoError(t, err)
	assert.Equal(t, ast.PrintStmt, tree.Root().Child(0).Type())

	toks = []token.Token{{Kind: token.Name, Text: "print"}, {Kind: token.LParen, Text: "("}, {Kind: token.RParen, Text: ")"}, {Kind: token.EOF}}
	tree, err = g.Parse(toks)
	require.NoError(t, err)
	assert.Equal(t, ast.Name, tree.Root().Child(0).Type())
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		setup func(b *Builder)
		want  string
	}{
		{
			name: "undefined rule",
			setup: func(b *Builder) {
				b.Rule(ast.FileInput).Is(ast.Test, token.EOF)
			},
			want: "undefined rule TEST",
		},
		{
			name: "nullable repetition",
			setup: func(b *Builder) {
				b.Rule(ast.FileInput).Is(ZeroOrMore(Optional(token.Name)), token.EOF)
			},
			want: "can match empty input",
		},
		{
			name: "left recursion",
			setup: func(b *Builder) {
				b.Rule(ast.FileInput).Is(ast.AExpr, token.EOF)
				b.Rule(ast.AExpr).Is(FirstOf(Seq(ast.MExpr, token.Plus, token.Number), token.Number))
				b.Rule(ast.MExpr).Is(Optional(token.Minus), ast.AExpr)
			},
			want: "left recursion: A_EXPR -> M_EXPR -> A_EXPR",
		},
		{
			name: "duplicate rule",
			setup: func(b *Builder) {
				b.Rule(ast.FileInput).Is(token.EOF)
				b.Rule(ast.FileInput).Is(token.EOF)
			},
			want: "defined twice",
		},
		{
			name: "unsupported expression",
			setup: func(b *Builder) {
				b.Rule(ast.FileInput).Is(42, token.EOF)
			},
			want: "unsupported expression",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder()
			tt.setup(b)
			_, err := b.Build(ast.FileInput)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGrammar))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	g := sumGrammar(t)
	assert.Equal(t, `seq(ATOM, zeroOrMore(seq(firstOf("+", "-"), ATOM)))`, g.Describe(ast.AExpr))
	assert.Equal(t, ast.FileInput, g.Root())
}
