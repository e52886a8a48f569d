package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/discover"
	"github.com/phobologic/mcheck/internal/lang"
	"github.com/phobologic/mcheck/internal/lexer"
	"github.com/phobologic/mcheck/internal/parse"
	"github.com/phobologic/mcheck/internal/scanner"
	"github.com/phobologic/mcheck/internal/token"
)

// errMismatch is returned by crosscheck when outlines differ.
var errMismatch = errors.New("outline mismatch")

func newRulesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeRules(stdout, check.Definitions())
			return nil
		},
	}
}

func writeRules(w io.Writer, defs []*check.Definition) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Priority", "Default", "Name", "Parameters"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, d := range defs {
		var params []string
		for _, p := range d.Params {
			params = append(params, fmt.Sprintf("%s=%q (%s)", p.Key, p.Default, p.Type))
		}
		active := "no"
		if d.Default {
			active = "yes"
		}
		table.Append([]string{d.Key, d.Priority.String(), active, d.Name, strings.Join(params, " ")})
	}
	table.Render()
}

func newTokensCmd(stdout io.Writer) *cobra.Command {
	var (
		all     bool
		charset string
	)
	cmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a file",
		Long: `Print the tokens of a file, one per line, as LINE:COLUMN KIND TEXT.
Layout tokens (NEWLINE, INDENT, DEDENT, EOF) are hidden unless --all is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := scanner.Decode(charset, data)
			if err != nil {
				return err
			}
			return writeTokens(stdout, text, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include layout tokens")
	cmd.Flags().StringVar(&charset, "charset", "", "source charset (default utf-8)")
	return cmd
}

// writeTokens prints the tokens of text. Tokens read before a lexical error
// are printed before the error is returned.
func writeTokens(w io.Writer, text string, all bool) error {
	toks, lexErr := lexer.Lex(text)
	if !all {
		toks = lexer.Significant(toks)
	}
	for _, t := range toks {
		if err := writeToken(w, t); err != nil {
			return err
		}
	}
	return lexErr
}

func writeToken(w io.Writer, t token.Token) error {
	_, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\n", t.Line, t.Column, t.Kind, strconv.Quote(t.Text))
	return err
}

func newCrosscheckCmd(stdout, stderr io.Writer) *cobra.Command {
	var charset string
	cmd := &cobra.Command{
		Use:   "crosscheck [path]",
		Short: "Compare parsed definitions against the reference grammar",
		Long: `Parse every source file under path with mcheck's grammar and with the
tree-sitter reference grammar of its dialect, and report files whose
function and class definitions differ.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return crosscheck(cmd.Context(), path, charset, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&charset, "charset", "", "source charset (default utf-8)")
	return cmd
}

func crosscheck(ctx context.Context, path, charset string, stdout, stderr io.Writer) error {
	root, files, err := discover.Resolve(path, discover.Options{})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	mismatches := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		diff, err := crosscheckFile(ctx, filepath.Join(root, f.Path), f.Language, charset)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", f.Path, err)
			continue
		}
		if diff != "" {
			mismatches++
			_, _ = fmt.Fprintf(stdout, "%s: %s\n", f.Path, diff)
		}
	}

	_, _ = fmt.Fprintf(stdout, "%d files checked, %d mismatches\n", len(files), mismatches)
	if mismatches > 0 {
		return errMismatch
	}
	return nil
}

// crosscheckFile returns a description of how the two outlines of a file
// differ, or "" when they agree.
func crosscheckFile(ctx context.Context, path, dialect, charset string) (string, error) {
	l, ok := lang.Languages[dialect]
	if !ok {
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := scanner.Decode(charset, data)
	if err != nil {
		return "", err
	}
	tree, _, err := parse.Source(path, text)
	if err != nil {
		return "", err
	}
	got := parse.TreeOutline(tree)
	want, err := parse.ReferenceOutline(ctx, l, []byte(text))
	if err != nil {
		return "", err
	}
	return outlineDiff(got, want), nil
}

func outlineDiff(got, want parse.Outline) string {
	var diffs []string
	if got.Functions != want.Functions {
		diffs = append(diffs, fmt.Sprintf("functions %d, reference %d", got.Functions, want.Functions))
	}
	if got.Methods != want.Methods {
		diffs = append(diffs, fmt.Sprintf("methods %d, reference %d", got.Methods, want.Methods))
	}
	if got.Classes != want.Classes {
		diffs = append(diffs, fmt.Sprintf("classes %d, reference %d", got.Classes, want.Classes))
	}
	if len(diffs) == 0 && !slices.Equal(got.Names, want.Names) {
		diffs = append(diffs, fmt.Sprintf("definitions %v, reference %v", got.Names, want.Names))
	}
	return strings.Join(diffs, "; ")
}
