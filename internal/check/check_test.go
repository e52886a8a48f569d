package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/token"
)

type tokenCounter struct{ n int }

func (c *tokenCounter) VisitToken(*Context, token.Token) { c.n++ }

type nodeCounter struct{}

func (nodeCounter) Subscriptions() []ast.Type          { return []ast.Type{ast.Funcdef} }
func (nodeCounter) VisitNode(*Context, ast.Node)       {}
func (nodeCounter) LeaveNode(ctx *Context, n ast.Node) {}

func testDefinition(key string) *Definition {
	return &Definition{
		Rule: Rule{
			Key:      key,
			Name:     "Test rule",
			Priority: Major,
			Params: []Param{
				{Key: "max", Type: Int, Default: "7"},
				{Key: "strict", Type: Bool, Default: "false"},
				{Key: "pattern", Type: Regexp, Default: `^#\s*\S+$`},
				{Key: "message", Type: String, Default: "hello"},
			},
		},
		New: func(Values) Check { return &tokenCounter{} },
	}
}

func TestIsCheck(t *testing.T) {
	t.Parallel()
	assert.True(t, IsCheck(&tokenCounter{}))
	assert.True(t, IsCheck(nodeCounter{}))
	assert.False(t, IsCheck(struct{}{}))
	assert.False(t, IsCheck(nil))
}

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		template string
		args     []any
		want     string
	}{
		{"no placeholders", nil, "no placeholders"},
		{"{0} has {1} parameters", []any{"f", 8}, "f has 8 parameters"},
		{"missing {2}", []any{"a"}, "missing {2}"},
		{"braces {x} stay", []any{1}, "braces {x} stay"},
		{"{0}{0}", []any{"ab"}, "abab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.template, tt.args...), tt.template)
	}
}

func TestContextReport(t *testing.T) {
	t.Parallel()
	var got []Violation
	ctx := NewContext(NewFile("a.m", "x = 1\n", nil), "R1", func(v Violation) { got = append(got, v) })

	ctx.ReportLine(0, "clamped")
	ctx.ReportLine(3, "on {0}", "three")

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "on three", got[1].Text())
	assert.Equal(t, "a.m:3: [R1] on three", got[1].String())
	assert.Equal(t, "R1", ctx.RuleKey())
}

func TestSplitLines(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "c", ""}, SplitLines("a\r\nb\rc\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestConfigureDefaults(t *testing.T) {
	t.Parallel()
	c, err := testDefinition("T1").Configure(nil)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Values.Int("max"))
	assert.False(t, c.Values.Bool("strict"))
	assert.Equal(t, "hello", c.Values.String("message"))
	require.NotNil(t, c.Values.Regexp("pattern"))
	assert.True(t, c.Values.Regexp("pattern").MatchString("# ok"))
}

func TestConfigureOverrides(t *testing.T) {
	t.Parallel()
	c, err := testDefinition("T1").Configure(map[string]string{"max": " 3 ", "strict": "true", "pattern": ""})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Values.Int("max"))
	assert.True(t, c.Values.Bool("strict"))
	assert.Nil(t, c.Values.Regexp("pattern"))
	assert.Equal(t, map[string]string{"max": " 3 ", "strict": "true", "pattern": "", "message": "hello"}, c.Values.Raw())
}

func TestConfigureErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		overrides map[string]string
		param     string
		want      error
	}{
		{"unknown", map[string]string{"nope": "1"}, "nope", ErrUnknownParam},
		{"not an int", map[string]string{"max": "seven"}, "max", ErrInvalidParam},
		{"not a bool", map[string]string{"strict": "maybe"}, "strict", ErrInvalidParam},
		{"bad regexp", map[string]string{"pattern": "("}, "pattern", ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := testDefinition("T1").Configure(tt.overrides)
			require.ErrorIs(t, err, tt.want)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, "T1", cerr.RuleKey)
			assert.Equal(t, tt.param, cerr.Param)
		})
	}
}

func TestConfigureRejectsNonCheck(t *testing.T) {
	t.Parallel()
	d := testDefinition("T1")
	d.New = func(Values) Check { return struct{}{} }
	_, err := d.Configure(nil)
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	d := testDefinition("zz-registry-test")
	Register(d)

	got, err := Lookup("zz-registry-test")
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = Lookup("zz-missing")
	assert.ErrorIs(t, err, ErrUnknownRule)

	assert.Panics(t, func() { Register(d) })

	defs := Definitions()
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Key, defs[i].Key)
	}
}

func TestRuleSetInstantiatesFreshChecks(t *testing.T) {
	t.Parallel()
	c, err := testDefinition("T1").Configure(nil)
	require.NoError(t, err)
	set := NewRuleSet(c)
	a, b := set.Instantiate(), set.Instantiate()
	require.Len(t, a, 1)
	assert.NotSame(t, a[0], b[0])
	assert.Equal(t, 1, set.Len())
}

func TestPriority(t *testing.T) {
	t.Parallel()
	p, err := ParsePriority("MAJOR")
	require.NoError(t, err)
	assert.Equal(t, Major, p)
	assert.Equal(t, "info", Info.String())
	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}
