package lexer

import (
	"regexp"
	"strings"

	"github.com/phobologic/mcheck/internal/token"
)

const exponent = `(?:[eE][+-]?[0-9_]+)`

// numberPatterns are tried in order, most specific first: floats and
// imaginaries, then prefixed integers, then plain decimals.
var numberPatterns = []*regexp.Regexp{
	anchored(`[0-9]+\.[0-9]*` + exponent + `?[jJ]?`),
	anchored(`\.[0-9]+` + exponent + `?[jJ]?`),
	anchored(`[0-9]+` + exponent + `[jJ]?`),
	anchored(`[0-9]+[jJ]`),
	anchored(`0[oO]?[0-7]+[lL]?`),
	anchored(`0[xX][0-9a-fA-F]+[lL]?`),
	anchored(`0[bB][01]+[lL]?`),
	anchored(`[1-9][0-9]*[lL]?`),
	anchored(`0+[lL]?`),
}

func anchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pattern + `)`)
}

func numberChannel(l *lexer) bool {
	rest := l.rest()
	if rest == "" || (rest[0] != '.' && (rest[0] < '0' || rest[0] > '9')) {
		return false
	}
	for _, re := range numberPatterns {
		if loc := re.FindStringIndex(rest); loc != nil && loc[1] > 0 {
			l.emit(token.Number, loc[1])
			return true
		}
	}
	return false
}

var stringPrefixes = []string{"ur", "br", "rb", "fr", "rf", "u", "r", "b", "f"}

// prefixLen returns the length of a string prefix at the start of s that is
// directly followed by a quote, or 0.
func prefixLen(s string) int {
	for _, p := range stringPrefixes {
		if len(s) > len(p) && strings.EqualFold(s[:len(p)], p) && isQuote(s[len(p)]) {
			return len(p)
		}
	}
	return 0
}

func isQuote(c byte) bool { return c == '\'' || c == '"' }

func stringChannel(l *lexer) bool {
	rest := l.rest()
	p := prefixLen(rest)
	if p >= len(rest) || !isQuote(rest[p]) {
		return false
	}
	q := rest[p]
	if n := longString(rest, p, q); n > 0 {
		l.emit(token.String, n)
		return true
	}
	if n := shortString(rest, p, q); n > 0 {
		l.emit(token.String, n)
		return true
	}
	return false
}

// longString matches a triple-quoted literal starting at s[p], returning
// its total length or 0 when absent or unterminated.
func longString(s string, p int, q byte) int {
	delim := strings.Repeat(string(q), 3)
	if !strings.HasPrefix(s[p:], delim) {
		return 0
	}
	for i := p + 3; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], delim) {
			return i + 3
		}
	}
	return 0
}

// shortString matches a single-line literal. A backslash escapes the next
// character, including a line break.
func shortString(s string, p int, q byte) int {
	for i := p + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if strings.HasPrefix(s[i+1:], "\r\n") {
				i++
			}
			i++
		case '\n', '\r':
			return 0
		case q:
			return i + 1
		}
	}
	return 0
}
