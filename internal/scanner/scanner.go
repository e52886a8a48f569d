// Package scanner drives the checks of a rule set, plus the metric
// visitors, over parsed files.
//
// Each file gets fresh visitor instances, one pre-order walk of its syntax
// tree and one pass over its tokens. A check that panics is disabled for the
// rest of that file and its violations for the file are dropped; the other
// checks are unaffected.
package scanner

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/logging"
	"github.com/phobologic/mcheck/internal/parse"
	"github.com/phobologic/mcheck/internal/sourcecode"
)

// Config holds the analysis settings that are not rule parameters.
type Config struct {
	// Charset names the encoding of source files. Empty means UTF-8.
	Charset string
	// IgnoreHeaderComments leaves comments before the first token out of
	// the comment_lines metric.
	IgnoreHeaderComments bool
	// NoSonar drops violations on lines carrying a NOSONAR comment.
	NoSonar bool
}

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path string
	// Metrics is nil when Err is set.
	Metrics     *sourcecode.Node
	Violations  []check.Violation
	CheckErrors []*check.CheckError
	// Err is a file-fatal read, decode, lexical or syntax error.
	Err error
}

// Scanner runs a rule set. It is safe for concurrent use.
type Scanner struct {
	rules   *check.RuleSet
	config  Config
	decoder *decoder
	logger  *logging.Logger
	plan    *plan
	names   []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New prepares a scanner for rules. The dispatch plan is built here, once.
func New(rules *check.RuleSet, config Config, opts ...Option) (*Scanner, error) {
	dec, err := newDecoder(config.Charset)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		rules:   rules,
		config:  config,
		decoder: dec,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	prototypes, names := s.visitors(newScope("", false))
	s.plan = newPlan(prototypes)
	s.names = names
	return s, nil
}

// visitors returns fresh metric visitors bound to sc followed by fresh
// rule checks, and the rule key or metric name of each.
func (s *Scanner) visitors(sc *scope) ([]check.Check, []string) {
	metrics := metricVisitors(sc)
	out := make([]check.Check, 0, len(metrics)+s.rules.Len())
	names := make([]string, 0, cap(out))
	for _, m := range metrics {
		out = append(out, m.visitor)
		names = append(names, m.name)
	}
	for i, c := range s.rules.Instantiate() {
		out = append(out, c)
		names = append(names, s.rules.Rules()[i].Key)
	}
	return out, names
}

// Scan decodes data with the configured charset and scans it.
func (s *Scanner) Scan(ctx context.Context, path string, data []byte) *FileResult {
	text, err := s.decoder.decode(data)
	if err != nil {
		s.logger.Warn("cannot decode file", "path", path, "charset", s.decoder.name, "error", err)
		return &FileResult{Path: path, Err: fmt.Errorf("decoding %s: %w", path, err)}
	}
	return s.ScanSource(ctx, path, text)
}

// ScanSource lexes, parses and scans text.
func (s *Scanner) ScanSource(ctx context.Context, path, text string) *FileResult {
	ctx, span := startFileSpan(ctx, path)
	defer span.End()
	start := time.Now()

	tree, _, err := parse.Source(path, text)
	if err != nil {
		s.logger.Warn("skipping file", "path", path, "error", err)
		setFileSpanResult(span, 0, err)
		recordFileMetrics(ctx, time.Since(start), 0, 0, false)
		return &FileResult{Path: path, Err: err}
	}

	res := s.walk(path, text, tree)
	for _, cerr := range res.CheckErrors {
		s.logger.Error("check failed", "rule", cerr.RuleKey, "path", path, "error", cerr.Err)
	}
	setFileSpanResult(span, len(res.Violations), nil)
	recordFileMetrics(ctx, time.Since(start), len(res.Violations), len(res.CheckErrors), true)
	return res
}

// run is the state of one file's traversal.
type run struct {
	plan      *plan
	visitors  []check.Check
	contexts  []*check.Context
	failed    []bool
	emitted   []emission
	errs      []*check.CheckError
	path      string
	sc        *scope
	noSonarOn bool
}

type emission struct {
	visitor int
	v       check.Violation
}

func (s *Scanner) walk(path, text string, tree *ast.Tree) *FileResult {
	sc := newScope(path, s.config.IgnoreHeaderComments)
	visitors, names := s.visitors(sc)
	r := &run{
		plan:      s.plan,
		visitors:  visitors,
		contexts:  make([]*check.Context, len(visitors)),
		failed:    make([]bool, len(visitors)),
		path:      path,
		sc:        sc,
		noSonarOn: s.config.NoSonar,
	}
	file := check.NewFile(path, text, tree)
	for i := range visitors {
		r.contexts[i] = check.NewContext(file, names[i], func(v check.Violation) {
			r.emitted = append(r.emitted, emission{visitor: i, v: v})
		})
	}

	for _, i := range r.plan.fileVisitors {
		r.call(i, func(c check.Check, ctx *check.Context) { c.(check.FileVisitor).VisitFile(ctx) })
	}
	r.visitNode(tree.Root())
	for _, tok := range tree.Tokens() {
		for _, i := range r.plan.tokens {
			r.call(i, func(c check.Check, ctx *check.Context) { c.(check.TokenVisitor).VisitToken(ctx, tok) })
		}
	}
	for _, i := range slices.Backward(r.plan.fileLeavers) {
		r.call(i, func(c check.Check, ctx *check.Context) { c.(check.FileLeaver).LeaveFile(ctx) })
	}

	return &FileResult{
		Path:        path,
		Metrics:     sc.file,
		Violations:  r.violations(),
		CheckErrors: r.errs,
	}
}

func (r *run) visitNode(n ast.Node) {
	subscribed := r.plan.subscribed(n.Type())
	for _, i := range subscribed {
		r.call(i, func(c check.Check, ctx *check.Context) { c.(check.NodeVisitor).VisitNode(ctx, n) })
	}
	for _, child := range n.Children() {
		r.visitNode(child)
	}
	for _, i := range slices.Backward(subscribed) {
		if _, ok := r.visitors[i].(check.NodeLeaver); !ok {
			continue
		}
		r.call(i, func(c check.Check, ctx *check.Context) { c.(check.NodeLeaver).LeaveNode(ctx, n) })
	}
}

// call runs fn for visitor i unless it already failed on this file. A panic
// disables the visitor and is recorded as a CheckError.
func (r *run) call(i int, fn func(check.Check, *check.Context)) {
	if r.failed[i] {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.failed[i] = true
			r.errs = append(r.errs, &check.CheckError{
				RuleKey: r.contexts[i].RuleKey(),
				Path:    r.path,
				Err:     fmt.Errorf("panic: %v", p),
			})
		}
	}()
	fn(r.visitors[i], r.contexts[i])
}

func (r *run) violations() []check.Violation {
	var out []check.Violation
	for _, e := range r.emitted {
		if r.failed[e.visitor] {
			continue
		}
		if r.noSonarOn && r.sc.noSonar[e.v.Line] {
			continue
		}
		out = append(out, e.v)
	}
	return out
}
