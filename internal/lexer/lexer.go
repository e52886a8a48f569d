// Package lexer turns source text into tokens, tracking indentation and
// attaching comments and whitespace to the token that follows them.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/mcheck/internal/token"
)

// Error is a lexical error at a source position.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// ErrorList collects recoverable lexical errors in source order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

const bom = "\ufeff"

type lexer struct {
	src  string
	pos  int
	line int
	col  int

	depth         int
	atLineStart   bool
	lineHasTokens bool

	indent  *indenter
	pending []token.Trivia
	tokens  []token.Token
	errs    ErrorList
	fatal   *Error
}

// Lex tokenizes src. The returned slice always ends with an EOF token
// unless tokenization was aborted. Unknown characters yield UNKNOWN tokens
// and an ErrorList; broken indentation aborts with a single *Error and the
// tokens read so far.
func Lex(src string) ([]token.Token, error) {
	l := &lexer{
		src:         src,
		line:        1,
		atLineStart: true,
		indent:      newIndenter(),
		tokens:      make([]token.Token, 0, len(src)/4+1),
	}
	if strings.HasPrefix(src, bom) {
		l.trivia(token.Whitespace, len(bom))
	}
	for l.pos < len(l.src) && l.fatal == nil {
		l.step()
	}
	if l.fatal != nil {
		return l.tokens, l.fatal
	}
	l.finish()
	if len(l.errs) > 0 {
		return l.tokens, l.errs
	}
	return l.tokens, nil
}

// Significant filters out the layout tokens the parser needs but a reader
// does not see: NEWLINE, INDENT, DEDENT and EOF.
func Significant(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		switch t.Kind {
		case token.Newline, token.Indent, token.Dedent, token.EOF:
			continue
		}
		out = append(out, t)
	}
	return out
}

func (l *lexer) step() {
	for _, ch := range channels {
		if ch(l) {
			return
		}
	}
}

func (l *lexer) finish() {
	if l.lineHasTokens {
		l.synthetic(token.Newline)
	}
	for n := l.indent.close(); n > 0; n-- {
		l.synthetic(token.Dedent)
	}
	l.synthetic(token.EOF)
}

func (l *lexer) rest() string { return l.src[l.pos:] }

// advance consumes n bytes and returns them, keeping line and column current.
func (l *lexer) advance(n int) string {
	text := l.src[l.pos : l.pos+n]
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			l.line++
			l.col = 0
		case '\n':
			l.line++
			l.col = 0
		default:
			l.col++
		}
	}
	l.pos += n
	return text
}

func (l *lexer) trivia(kind token.TriviaKind, n int) {
	tr := token.Trivia{Kind: kind, Line: l.line, Column: l.col, Offset: l.pos}
	tr.Text = l.advance(n)
	l.pending = append(l.pending, tr)
}

func (l *lexer) emit(kind token.Kind, n int) {
	t := token.Token{Kind: kind, Line: l.line, Column: l.col, Offset: l.pos, Trivia: l.pending}
	t.Text = l.advance(n)
	l.pending = nil
	l.tokens = append(l.tokens, t)
	if kind != token.Newline {
		l.lineHasTokens = true
	}
}

func (l *lexer) synthetic(kind token.Kind) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind, Line: l.line, Column: l.col, Offset: l.pos, Trivia: l.pending,
	})
	l.pending = nil
}

func (l *lexer) errorf(format string, args ...any) {
	l.errs = append(l.errs, &Error{Line: l.line, Column: l.col, Msg: fmt.Sprintf(format, args...)})
}

// channel is one recognizer. It either consumes input and returns true or
// leaves the lexer untouched and returns false.
type channel func(l *lexer) bool

// channels are tried in order at every position; the first match wins.
var channels = []channel{
	newlineChannel,
	indentationChannel,
	continuationChannel,
	whitespaceChannel,
	commentChannel,
	stringChannel,
	numberChannel,
	nameChannel,
	punctuatorChannel,
	unknownChannel,
}

func newlineLen(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case s != "" && (s[0] == '\n' || s[0] == '\r'):
		return 1
	}
	return 0
}

func newlineChannel(l *lexer) bool {
	n := newlineLen(l.rest())
	if n == 0 {
		return false
	}
	if l.depth == 0 && l.lineHasTokens {
		l.emit(token.Newline, n)
		l.lineHasTokens = false
	} else {
		l.trivia(token.Whitespace, n)
	}
	if l.depth == 0 {
		l.atLineStart = true
	}
	return true
}

func indentationChannel(l *lexer) bool {
	if !l.atLineStart {
		return false
	}
	l.atLineStart = false
	rest := l.rest()
	n := 0
	for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t' || rest[n] == '\f') {
		n++
	}
	ws := rest[:n]
	if n > 0 {
		l.trivia(token.Whitespace, n)
	}
	after := rest[n:]
	if after == "" || after[0] == '\n' || after[0] == '\r' || after[0] == '#' {
		// Blank and comment-only lines leave the stack alone.
		return true
	}

	delta, msg := l.indent.line(measure(ws))
	if msg != "" {
		l.fatal = &Error{Line: l.line, Column: l.col, Msg: msg}
		return true
	}
	for ; delta > 0; delta-- {
		l.synthetic(token.Indent)
	}
	for ; delta < 0; delta++ {
		l.synthetic(token.Dedent)
	}
	return true
}

func continuationChannel(l *lexer) bool {
	rest := l.rest()
	if rest == "" || rest[0] != '\\' {
		return false
	}
	n := newlineLen(rest[1:])
	if n == 0 {
		return false
	}
	l.trivia(token.Whitespace, 1+n)
	return true
}

func whitespaceChannel(l *lexer) bool {
	rest := l.rest()
	n := 0
	for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t' || rest[n] == '\f' || rest[n] == '\v') {
		n++
	}
	if n == 0 {
		return false
	}
	l.trivia(token.Whitespace, n)
	return true
}

func commentChannel(l *lexer) bool {
	rest := l.rest()
	if rest == "" || rest[0] != '#' {
		return false
	}
	n := strings.IndexAny(rest, "\r\n")
	if n < 0 {
		n = len(rest)
	}
	l.trivia(token.Comment, n)
	return true
}

func nameChannel(l *lexer) bool {
	rest := l.rest()
	r, size := utf8.DecodeRuneInString(rest)
	if r != '_' && !unicode.IsLetter(r) {
		return false
	}
	n := size
	for n < len(rest) {
		r, size = utf8.DecodeRuneInString(rest[n:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		n += size
	}
	kind := token.Name
	if kw, ok := token.Keywords[rest[:n]]; ok {
		kind = kw
	}
	l.emit(kind, n)
	return true
}

func punctuatorChannel(l *lexer) bool {
	rest := l.rest()
	for _, p := range token.Punctuators {
		if !strings.HasPrefix(rest, p.Text) {
			continue
		}
		switch p.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			l.depth++
		case token.RParen, token.RBracket, token.RBrace:
			if l.depth > 0 {
				l.depth--
			}
		}
		l.emit(p.Kind, len(p.Text))
		return true
	}
	return false
}

func unknownChannel(l *lexer) bool {
	r, size := utf8.DecodeRuneInString(l.rest())
	l.errorf("unexpected character %q", r)
	l.emit(token.Unknown, size)
	return true
}
