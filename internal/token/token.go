// Package token defines the lexical vocabulary of the dialect.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint16

// Special and literal kinds.
const (
	EOF Kind = iota
	Unknown
	Newline
	Indent
	Dedent
	Name
	Number
	String
)

// Keyword kinds.
const (
	KwFalse Kind = iota + String + 1
	KwNone
	KwTrue
	KwAnd
	KwAs
	KwAssert
	KwBreak
	KwClass
	KwContinue
	KwDef
	KwDel
	KwElif
	KwElse
	KwExcept
	KwFinally
	KwFor
	KwFrom
	KwGlobal
	KwIf
	KwImport
	KwIn
	KwIs
	KwLambda
	KwNonlocal
	KwNot
	KwOr
	KwPass
	KwRaise
	KwReturn
	KwTry
	KwWhile
	KwWith
	KwYield
)

// Punctuator kinds.
const (
	LParen Kind = iota + KwYield + 1
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Dot
	Semicolon
	At
	Assign
	Arrow
	Ellipsis
	Backtick
	Plus
	Minus
	Star
	Power
	Slash
	FloorDiv
	Percent
	LShift
	RShift
	Amp
	Pipe
	Caret
	Tilde
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	LtGt
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	FloorDivAssign
	PercentAssign
	AmpAssign
	PipeAssign
	CaretAssign
	LShiftAssign
	RShiftAssign
	PowerAssign

	// NumKinds is the number of token kinds.
	NumKinds
)

var kindNames = [NumKinds]string{
	EOF:     "EOF",
	Unknown: "UNKNOWN",
	Newline: "NEWLINE",
	Indent:  "INDENT",
	Dedent:  "DEDENT",
	Name:    "IDENTIFIER",
	Number:  "NUMBER",
	String:  "STRING",
}

// Keywords maps reserved words to their kinds. Matching is case-sensitive.
var Keywords = map[string]Kind{
	"False":    KwFalse,
	"None":     KwNone,
	"True":     KwTrue,
	"and":      KwAnd,
	"as":       KwAs,
	"assert":   KwAssert,
	"break":    KwBreak,
	"class":    KwClass,
	"continue": KwContinue,
	"def":      KwDef,
	"del":      KwDel,
	"elif":     KwElif,
	"else":     KwElse,
	"except":   KwExcept,
	"finally":  KwFinally,
	"for":      KwFor,
	"from":     KwFrom,
	"global":   KwGlobal,
	"if":       KwIf,
	"import":   KwImport,
	"in":       KwIn,
	"is":       KwIs,
	"lambda":   KwLambda,
	"nonlocal": KwNonlocal,
	"not":      KwNot,
	"or":       KwOr,
	"pass":     KwPass,
	"raise":    KwRaise,
	"return":   KwReturn,
	"try":      KwTry,
	"while":    KwWhile,
	"with":     KwWith,
	"yield":    KwYield,
}

// Punctuators lists every operator and delimiter, longest first so that a
// linear scan yields the longest match.
var Punctuators = []struct {
	Text string
	Kind Kind
}{
	{"**=", PowerAssign},
	{"//=", FloorDivAssign},
	{">>=", RShiftAssign},
	{"<<=", LShiftAssign},
	{"...", Ellipsis},
	{"->", Arrow},
	{"**", Power},
	{"//", FloorDiv},
	{"<<", LShift},
	{">>", RShift},
	{"<=", Le},
	{">=", Ge},
	{"==", Eq},
	{"!=", Ne},
	{"<>", LtGt},
	{"+=", PlusAssign},
	{"-=", MinusAssign},
	{"*=", StarAssign},
	{"/=", SlashAssign},
	{"%=", PercentAssign},
	{"&=", AmpAssign},
	{"|=", PipeAssign},
	{"^=", CaretAssign},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{"{", LBrace},
	{"}", RBrace},
	{",", Comma},
	{":", Colon},
	{".", Dot},
	{";", Semicolon},
	{"@", At},
	{"=", Assign},
	{"`", Backtick},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"%", Percent},
	{"&", Amp},
	{"|", Pipe},
	{"^", Caret},
	{"~", Tilde},
	{"<", Lt},
	{">", Gt},
}

func init() {
	for text, k := range Keywords {
		kindNames[k] = text
	}
	for _, p := range Punctuators {
		kindNames[p.Kind] = p.Text
	}
}

func (k Kind) String() string {
	if k < NumKinds && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KwFalse && k <= KwYield }

// IsPunctuator reports whether k is an operator or delimiter.
func (k Kind) IsPunctuator() bool { return k >= LParen && k < NumKinds }

// IsSynthetic reports whether tokens of kind k may be produced without
// consuming source text.
func (k Kind) IsSynthetic() bool {
	return k == Indent || k == Dedent || k == EOF
}

// TriviaKind distinguishes comments from plain whitespace.
type TriviaKind uint8

const (
	Whitespace TriviaKind = iota
	Comment
)

func (k TriviaKind) String() string {
	if k == Comment {
		return "COMMENT"
	}
	return "WHITESPACE"
}

// Trivia is source text that carries no syntax. It is attached to the token
// that follows it.
type Trivia struct {
	Kind   TriviaKind
	Text   string
	Line   int
	Column int
	Offset int
}

// Token is one lexeme. Line is 1-based, Column is 0-based in bytes and
// Offset is the byte offset of Text in the source.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
	Offset int
	Trivia []Trivia
}

// EndLine returns the line on which the token's text ends.
func (t Token) EndLine() int {
	line := t.Line
	for i := 0; i < len(t.Text); i++ {
		if t.Text[i] == '\n' || (t.Text[i] == '\r' && (i+1 == len(t.Text) || t.Text[i+1] != '\n')) {
			line++
		}
	}
	// A token ending with a line break finishes on the line it breaks.
	if t.Kind == Newline && line > t.Line {
		return t.Line
	}
	return line
}

// Comments returns the comment trivia preceding the token.
func (t Token) Comments() []Trivia {
	var out []Trivia
	for _, tr := range t.Trivia {
		if tr.Kind == Comment {
			out = append(out, tr)
		}
	}
	return out
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Kind, t.Text)
}
