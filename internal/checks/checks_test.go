package checks

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/scanner"
)

// finding is the part of a violation the tests compare.
type finding struct {
	Line int
	Text string
}

func scan(t *testing.T, key string, params map[string]string, src string) []finding {
	t.Helper()
	def, err := check.Lookup(key)
	require.NoError(t, err)
	rule, err := def.Configure(params)
	require.NoError(t, err)
	s, err := scanner.New(check.NewRuleSet(rule), scanner.Config{})
	require.NoError(t, err)

	res := s.ScanSource(context.Background(), "test.m", src)
	require.NoError(t, res.Err)
	require.Empty(t, res.CheckErrors)

	var out []finding
	for _, v := range res.Violations {
		assert.Equal(t, key, v.RuleKey)
		out = append(out, finding{Line: v.Line, Text: v.Text()})
	}
	return out
}

func lines(fs []finding) []int {
	var out []int
	for _, f := range fs {
		out = append(out, f.Line)
	}
	return out
}

func TestRegistered(t *testing.T) {
	want := map[string]bool{
		"S1066":                               true,
		"S108":                                true,
		"LongIntegerWithLowercaseSuffixUsage": true,
		"S139":                                true,
		"S1721":                               true,
		"LineLength":                          false,
		"OneStatementPerLine":                 true,
		"S107":                                true,
		"CommentRegularExpression":            false,
		"PreIncrementDecrement":               true,
	}
	for key, active := range want {
		def, err := check.Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, active, def.Default, key)
		assert.NotEmpty(t, def.Name, key)
	}
}

func TestCollapsibleIf(t *testing.T) {
	t.Parallel()
	src := `if a:
    if b:
        pass
if c:
    if d:
        pass
    else:
        pass
if e:
    pass
else:
    if f:
        pass
if g:
    x = 1
    if h:
        pass
if i:
    pass
elif j:
    if k:
        pass
`
	got := scan(t, "S1066", nil, src)
	assert.Equal(t, []int{2, 21}, lines(got))
	assert.Equal(t, "Merge this if statement with the enclosing one.", got[0].Text)
}

func TestEmptyNestedBlock(t *testing.T) {
	t.Parallel()
	src := `def f():
    pass
class C:
    pass
try:
    x = 1
except ValueError:
    pass
if a:
    pass
while b:
    pass  # intentionally empty
for i in c: pass
if d:
    x = 1
if e:
    pass; pass
`
	got := scan(t, "S108", nil, src)
	assert.Equal(t, []int{10, 13, 17}, lines(got))
	assert.Equal(t, "Either remove or fill this block of code.", got[0].Text)
}

func TestLongIntegerWithLowercaseSuffix(t *testing.T) {
	t.Parallel()
	got := scan(t, "LongIntegerWithLowercaseSuffixUsage", nil, "a = 10l\nb = 10L\nc = 0x1fl\nd = 1.5\n")
	assert.Equal(t, []int{1, 3}, lines(got))
	assert.Equal(t, `Replace suffix in long integers from lower case "l" to upper case "L".`, got[0].Text)
}

func TestTrailingComment(t *testing.T) {
	t.Parallel()
	src := `x = 1  # ok
y = 2  # not ok here
# full line comment
z = 3 #x
`
	got := scan(t, "S139", nil, src)
	assert.Equal(t, []finding{{Line: 2, Text: "Move this trailing comment on the previous empty line."}}, got)

	strict := scan(t, "S139", map[string]string{"legalTrailingCommentPattern": ""}, src)
	assert.Equal(t, []int{1, 2, 4}, lines(strict))

	words := scan(t, "S139", map[string]string{"legalTrailingCommentPattern": `#\s*\w+(\s\w+)*`}, src)
	assert.Empty(t, words)
}

func TestUselessParenthesisAfterKeyword(t *testing.T) {
	t.Parallel()
	src := `if (a):
    pass
elif (b):
    pass
while (a):
    pass
value = (a)
assert (a)
del (x)
for (i) in (c):
    pass
if not (a == b):
    pass
try:
    pass
except (ValueError):
    pass
if (a,
    b):
    pass
def g():
    raise (E)
    yield (a)
    return (a)
if a:
    pass
`
	got := scan(t, "S1721", nil, src)
	want := []finding{
		{1, `Remove the parentheses after this "if" keyword`},
		{3, `Remove the parentheses after this "elif" keyword`},
		{5, `Remove the parentheses after this "while" keyword`},
		{8, `Remove the parentheses after this "assert" keyword`},
		{9, `Remove the parentheses after this "del" keyword`},
		{10, `Remove the parentheses after this "for" keyword`},
		{10, `Remove the parentheses after this "in" keyword`},
		{12, `Remove the parentheses after this "not" keyword`},
		{16, `Remove the parentheses after this "except" keyword`},
		{22, `Remove the parentheses after this "raise" keyword`},
		{23, `Remove the parentheses after this "yield" keyword`},
		{24, `Remove the parentheses after this "return" keyword`},
	}
	assert.Equal(t, want, got)
}

func TestLineLength(t *testing.T) {
	t.Parallel()
	long := "a = '" + strings.Repeat("x", 80) + "'\n"
	got := scan(t, "LineLength", nil, long+"b = 1\n")
	assert.Equal(t, []finding{{1, "The line contains 86 characters which is greater than 80 authorized."}}, got)

	src := "if a:\n\tb = 1\nc = \"日本語\"\nd = 1\n"
	got = scan(t, "LineLength", map[string]string{"maximumLineLength": "10"}, src)
	assert.Equal(t, []finding{
		{2, "The line contains 13 characters which is greater than 10 authorized."},
		{3, "The line contains 12 characters which is greater than 10 authorized."},
	}, got)
}

func TestRenderedWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 9, renderedWidth("\tx"))
	assert.Equal(t, 9, renderedWidth("ab\tc"))
	assert.Equal(t, 4, renderedWidth("日本"))
	assert.Equal(t, 0, renderedWidth(""))
}

func TestOneStatementPerLine(t *testing.T) {
	t.Parallel()
	got := scan(t, "OneStatementPerLine", nil, "a = 1; b = 2\nc = 1; d = 2; e = 3\nf = 1\n")
	assert.Equal(t, []finding{
		{1, "At most one statement is allowed per line, but 2 statements were found on this line."},
		{2, "At most one statement is allowed per line, but 3 statements were found on this line."},
	}, got)

	got = scan(t, "OneStatementPerLine", nil, "if x: y = 1\nif z:\n    w = 2\n")
	assert.Equal(t, []int{1}, lines(got))
}

func TestTooManyParameters(t *testing.T) {
	t.Parallel()
	src := `f = lambda a, b, c, d, e, f, g, h: 0
def ok(a, b, c, d, e, f, g):
    pass
def too_many(a, b, c, d, e, f, g, *args):
    pass
class C:
    def method(self, a, b, c, d, e, f, g):
        pass
def kwonly(a, b, c, d, e, f, g, *, h):
    pass
`
	got := scan(t, "S107", nil, src)
	want := []finding{
		{1, "Lambda has 8 parameters, which is greater than the 7 authorized."},
		{4, `Function "too_many" has 8 parameters, which is greater than the 7 authorized.`},
		{7, `Method "method" has 8 parameters, which is greater than the 7 authorized.`},
		{9, `Function "kwonly" has 8 parameters, which is greater than the 7 authorized.`},
	}
	assert.Equal(t, want, got)

	assert.Empty(t, scan(t, "S107", map[string]string{"max": "8"}, src))
}

func TestCommentRegularExpression(t *testing.T) {
	t.Parallel()
	src := "# TODO fix\nx = 1  # todo later\n# nothing\n"
	assert.Empty(t, scan(t, "CommentRegularExpression", nil, src))

	got := scan(t, "CommentRegularExpression", map[string]string{
		"regularExpression": "(?i).*TODO.*",
		"message":           "Avoid TODO",
	}, src)
	assert.Equal(t, []finding{{1, "Avoid TODO"}, {2, "Avoid TODO"}}, got)

	// The whole comment must match.
	assert.Empty(t, scan(t, "CommentRegularExpression", map[string]string{"regularExpression": "TODO"}, src))
}

func TestPreIncrementDecrement(t *testing.T) {
	t.Parallel()
	src := "x = ++y\nz = --y\nw = -y\nv = +-y\nu = -(-y)\n"
	got := scan(t, "PreIncrementDecrement", nil, src)
	assert.Equal(t, []finding{
		{1, "This statement doesn't produce the expected result, replace use of non-existent pre-increment operator"},
		{2, "This statement doesn't produce the expected result, replace use of non-existent pre-decrement operator"},
	}, got)
}

func TestChecksAreIndependent(t *testing.T) {
	t.Parallel()
	src := "a = 10l; b = ++c\nif x:\n    if y:\n        pass\n"
	var all []*check.Configured
	alone := map[string][]finding{}
	for _, def := range check.Definitions() {
		if !def.Default {
			continue
		}
		c, err := def.Configure(nil)
		require.NoError(t, err)
		all = append(all, c)
		alone[def.Key] = scan(t, def.Key, nil, src)
	}

	s, err := scanner.New(check.NewRuleSet(all...), scanner.Config{})
	require.NoError(t, err)
	res := s.ScanSource(context.Background(), "test.m", src)
	require.NoError(t, res.Err)

	together := map[string][]finding{}
	for _, v := range res.Violations {
		together[v.RuleKey] = append(together[v.RuleKey], finding{Line: v.Line, Text: v.Text()})
	}
	for key, want := range alone {
		assert.Equal(t, want, together[key], key)
	}
}
