// Package check defines how rules observe a file and report violations.
//
// A check is an instance of a rule for one file. It takes part in the
// analysis through the capability interfaces it implements: NodeVisitor
// (with NodeLeaver), TokenVisitor, FileVisitor and FileLeaver. The scanner
// creates fresh instances for every file, so checks may keep per-file state
// in their own fields.
package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

// Check is a rule instance.
type Check any

// NodeVisitor is called on entry to every node whose type it subscribes to.
// Subscriptions must not depend on instance state.
type NodeVisitor interface {
	Subscriptions() []ast.Type
	VisitNode(ctx *Context, n ast.Node)
}

// NodeLeaver is called when the walk leaves a subscribed node, after its
// whole subtree has been visited.
type NodeLeaver interface {
	LeaveNode(ctx *Context, n ast.Node)
}

// TokenVisitor is called once per token in source order.
type TokenVisitor interface {
	VisitToken(ctx *Context, tok token.Token)
}

// FileVisitor is called before anything else in a file.
type FileVisitor interface {
	VisitFile(ctx *Context)
}

// FileLeaver is called after everything else in a file.
type FileLeaver interface {
	LeaveFile(ctx *Context)
}

// IsCheck reports whether c implements at least one capability.
func IsCheck(c Check) bool {
	switch c.(type) {
	case NodeVisitor, TokenVisitor, FileVisitor, FileLeaver:
		return true
	}
	return false
}

// File is the read-only view of the file under analysis.
type File struct {
	Path  string
	Text  string
	Lines []string
	Tree  *ast.Tree
}

// NewFile splits text into lines and wraps the parsed tree.
func NewFile(path, text string, tree *ast.Tree) *File {
	return &File{Path: path, Text: text, Lines: SplitLines(text), Tree: tree}
}

// SplitLines splits text on \n, \r\n and \r, without terminators.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Context is handed to every callback. It identifies the rule and the file
// and collects reported violations.
type Context struct {
	file   *File
	rule   string
	report func(Violation)
}

// NewContext returns a context reporting for rule through report.
func NewContext(file *File, rule string, report func(Violation)) *Context {
	return &Context{file: file, rule: rule, report: report}
}

// File returns the file under analysis.
func (c *Context) File() *File { return c.file }

// RuleKey returns the key of the rule the callbacks run for.
func (c *Context) RuleKey() string { return c.rule }

// ReportLine records a violation on line. The message may hold {0}-style
// placeholders filled from args.
func (c *Context) ReportLine(line int, message string, args ...any) {
	if line < 1 {
		line = 1
	}
	c.report(Violation{RuleKey: c.rule, Path: c.file.Path, Line: line, Message: message, Args: args})
}

// ReportNode records a violation on the first line of n.
func (c *Context) ReportNode(n ast.Node, message string, args ...any) {
	c.ReportLine(n.Line(), message, args...)
}

// Violation is a rule breach. Line is 1-based.
type Violation struct {
	RuleKey string
	Path    string
	Line    int
	Message string
	Args    []any
}

// Text renders the message with its arguments.
func (v Violation) Text() string { return Format(v.Message, v.Args...) }

func (v Violation) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s", v.Path, v.Line, v.RuleKey, v.Text())
}

// Format replaces {N} placeholders with the N-th argument. Placeholders
// without a matching argument are left as they are.
func Format(template string, args ...any) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] == '{' {
			if end := strings.IndexByte(template[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(template[i+1 : i+end]); err == nil && n >= 0 && n < len(args) {
					fmt.Fprint(&sb, args[n])
					i += end
					continue
				}
			}
		}
		sb.WriteByte(template[i])
	}
	return sb.String()
}

// CheckError reports a check that failed while analyzing a file. The file's
// other checks are unaffected.
type CheckError struct {
	RuleKey string
	Path    string
	Err     error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("rule %s failed on %s: %v", e.RuleKey, e.Path, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }
