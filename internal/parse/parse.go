// Package parse runs the front end over a single file and builds
// definition outlines, both from our own syntax tree and from the
// tree-sitter reference grammar.
package parse

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/grammar"
	"github.com/phobologic/mcheck/internal/lang"
	"github.com/phobologic/mcheck/internal/lexer"
	"github.com/phobologic/mcheck/internal/peg"
	"github.com/phobologic/mcheck/internal/token"
)

// Error kinds. Both are fatal for the file they occur in.
var (
	ErrLexical = errors.New("lexical error")
	ErrSyntax  = errors.New("syntax error")
)

// Error is a file-fatal front-end failure.
type Error struct {
	Path   string
	Line   int
	Column int
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v: %v", e.Path, e.Line, e.Column, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// Source lexes and parses text. On failure the returned error is a *Error
// and the token slice holds whatever the lexer produced.
func Source(path, text string) (*ast.Tree, []token.Token, error) {
	toks, err := lexer.Lex(text)
	if err != nil {
		perr := &Error{Path: path, Kind: ErrLexical, Err: err}
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			perr.Line, perr.Column = lexErr.Line, lexErr.Column
		}
		return nil, toks, perr
	}

	tree, err := grammar.Get().Parse(toks)
	if err != nil {
		perr := &Error{Path: path, Kind: ErrSyntax, Err: err}
		var synErr *peg.ParseError
		if errors.As(err, &synErr) {
			perr.Line, perr.Column = synErr.Line, synErr.Column
		}
		return nil, toks, perr
	}
	return tree, toks, nil
}

// Outline counts the definitions of a file.
type Outline struct {
	Functions int
	Methods   int
	Classes   int
	// Names lists "name:line" for every definition, sorted.
	Names []string
}

// TreeOutline builds the outline of a parsed file.
func TreeOutline(tree *ast.Tree) Outline {
	var o Outline
	root := tree.Root()
	for _, def := range root.Descendants(ast.Funcdef, ast.Classdef) {
		if def.Is(ast.Classdef) {
			o.Classes++
			o.Names = append(o.Names, fmt.Sprintf("%s:%d", def.FirstChild(ast.Classname).TokenText(), def.FirstChild(ast.Classname).Line()))
			continue
		}
		o.Functions++
		if IsMethod(def) {
			o.Methods++
		}
		name := def.FirstChild(ast.Funcname)
		o.Names = append(o.Names, fmt.Sprintf("%s:%d", name.TokenText(), name.Line()))
	}
	slices.Sort(o.Names)
	return o
}

// IsMethod reports whether a function definition sits directly in the body
// of a class.
func IsMethod(funcdef ast.Node) bool {
	// FUNCDEF -> COMPOUND_STMT -> STATEMENT -> SUITE -> CLASSDEF
	suite := funcdef.Parent().Parent().Parent()
	return suite.Is(ast.Suite) && suite.Parent().Is(ast.Classdef)
}

// ReferenceOutline parses source with the tree-sitter grammar of l and
// builds the same outline from its concrete syntax tree.
func ReferenceOutline(ctx context.Context, l *lang.Language, source []byte) (Outline, error) {
	parser := l.NewParser()
	defer parser.Close()
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Outline{}, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	var o Outline
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			o.Functions++
			if l.FindMethodClass != nil && l.FindMethodClass(n, source) != "" {
				o.Methods++
			}
			o.Names = append(o.Names, definitionName(n, source))
		case "class_definition":
			o.Classes++
			o.Names = append(o.Names, definitionName(n, source))
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(tree.RootNode())
	slices.Sort(o.Names)
	return o, nil
}

func definitionName(n *sitter.Node, source []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return fmt.Sprintf("?:%d", n.StartPoint().Row+1)
	}
	return fmt.Sprintf("%s:%d", lang.NodeText(name, source), name.StartPoint().Row+1)
}
