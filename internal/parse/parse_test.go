package parse

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/lang"
)

const sample = `import os

class Greeter(object):
    @staticmethod
    def hello(name):
        def inner():
            return name
        return inner

def top(a, b=1):
    return a + b
`

func TestSource(t *testing.T) {
	t.Parallel()
	tree, toks, err := Source("sample.m", sample)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if tree.Root().Type() != ast.FileInput {
		t.Errorf("root = %s, want FILE_INPUT", tree.Root().Type())
	}
	if len(toks) != len(tree.Tokens()) {
		t.Errorf("tree holds %d tokens, lexer produced %d", len(tree.Tokens()), len(toks))
	}
}

func TestSourceErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		kind error
		line int
	}{
		{"bad dedent", "if x:\n    y\n  z\n", ErrLexical, 3},
		{"unknown char", "x = $\n", ErrLexical, 1},
		{"missing colon", "x = 1\nwhile x\n    x -= 1\n", ErrSyntax, 2},
		{"unexpected indent", "x = 1\n    y = 2\n", ErrSyntax, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Source("bad.m", tt.src)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want kind %v", err, tt.kind)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d", perr.Line, tt.line)
			}
			if perr.Path != "bad.m" {
				t.Errorf("path = %q, want bad.m", perr.Path)
			}
		})
	}
}

func TestTreeOutline(t *testing.T) {
	t.Parallel()
	tree, _, err := Source("sample.m", sample)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	got := TreeOutline(tree)
	want := Outline{
		Functions: 3,
		Methods:   1,
		Classes:   1,
		Names:     []string{"Greeter:3", "hello:5", "inner:6", "top:10"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TreeOutline mismatch (-want +got):\n%s", diff)
	}
}

func TestReferenceOutlineAgrees(t *testing.T) {
	t.Parallel()
	tree, _, err := Source("sample.m", sample)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	ref, err := ReferenceOutline(context.Background(), lang.Languages["matlab"], []byte(sample))
	if err != nil {
		t.Fatalf("ReferenceOutline: %v", err)
	}
	if diff := cmp.Diff(ref, TreeOutline(tree)); diff != "" {
		t.Errorf("outline differs from reference (-reference +ours):\n%s", diff)
	}
}
