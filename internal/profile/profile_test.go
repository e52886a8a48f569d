package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/mcheck/internal/check"
)

const yamlProfile = `charset: latin1
ignore_header_comments: true
nosonar: false
rules:
  - key: LineLength
    params:
      maximumLineLength: "100"
  - key: S1066
`

const tomlProfile = `charset = "latin1"
ignore_header_comments = true
nosonar = false

[[rules]]
key = "LineLength"

[rules.params]
maximumLineLength = "100"

[[rules]]
key = "S1066"
`

func TestDefault(t *testing.T) {
	t.Parallel()
	p := Default()
	assert.True(t, p.NoSonar)
	var keys []string
	for _, r := range p.Rules {
		keys = append(keys, r.Key)
	}
	assert.Contains(t, keys, "S1066")
	assert.Contains(t, keys, "S107")
	assert.NotContains(t, keys, "LineLength")
	assert.NotContains(t, keys, "CommentRegularExpression")

	set, err := p.RuleSet()
	require.NoError(t, err)
	assert.Equal(t, len(p.Rules), set.Len())
}

func TestParseFormats(t *testing.T) {
	t.Parallel()
	for format, src := range map[Format]string{YAML: yamlProfile, TOML: tomlProfile} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			p, err := Parse([]byte(src), format)
			require.NoError(t, err)
			assert.Equal(t, "latin1", p.Charset)
			assert.True(t, p.IgnoreHeaderComments)
			assert.False(t, p.NoSonar)
			require.Len(t, p.Rules, 2)
			assert.Equal(t, Rule{Key: "LineLength", Params: map[string]string{"maximumLineLength": "100"}}, p.Rules[0])
			assert.Equal(t, "S1066", p.Rules[1].Key)

			set, err := p.RuleSet()
			require.NoError(t, err)
			require.Equal(t, 2, set.Len())
			assert.Equal(t, 100, set.Rules()[0].Values.Int("maximumLineLength"))

			cfg := p.ScannerConfig()
			assert.Equal(t, "latin1", cfg.Charset)
			assert.True(t, cfg.IgnoreHeaderComments)
		})
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	t.Parallel()
	srcs := map[Format]string{
		YAML: "rules:\n  - key: S108\n",
		TOML: "[[rules]]\nkey = \"S108\"\n",
	}
	for format, src := range srcs {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			p, err := Parse([]byte(src), format)
			require.NoError(t, err)
			assert.True(t, p.NoSonar)
			assert.Equal(t, "utf-8", p.Charset)
			assert.False(t, p.IgnoreHeaderComments)
			require.Len(t, p.Rules, 1)
			assert.Equal(t, "S108", p.Rules[0].Key)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("rules: []\nverbose: true\n"), YAML)
	assert.Error(t, err)
	_, err = Parse([]byte("verbose = true\n"), TOML)
	assert.Error(t, err)
	_, err = Parse([]byte(""), "ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRuleSetErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		profile Profile
		want    error
	}{
		{"unknown rule", Profile{Rules: []Rule{{Key: "S9999"}}}, check.ErrUnknownRule},
		{"bad int", Profile{Rules: []Rule{{Key: "S107", Params: map[string]string{"max": "many"}}}}, check.ErrInvalidParam},
		{"bad regexp", Profile{Rules: []Rule{{Key: "S139", Params: map[string]string{"legalTrailingCommentPattern": "^#\\s*+x"}}}}, check.ErrInvalidParam},
		{"unknown param", Profile{Rules: []Rule{{Key: "S1066", Params: map[string]string{"max": "1"}}}}, check.ErrUnknownParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.profile.RuleSet()
			require.ErrorIs(t, err, tt.want)
			var cerr *check.ConfigError
			assert.True(t, errors.As(err, &cerr))
		})
	}

	dup := Profile{Rules: []Rule{{Key: "S108"}, {Key: "S108"}}}
	_, err := dup.RuleSet()
	assert.ErrorContains(t, err, "listed twice")
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, format := range []Format{YAML, TOML} {
		data, err := Default().Encode(format)
		require.NoError(t, err)
		path := filepath.Join(dir, "profile."+string(format))
		require.NoError(t, os.WriteFile(path, data, 0o644))

		p, err := Load(path)
		require.NoError(t, err, string(data))
		assert.Equal(t, len(Default().Rules), len(p.Rules))
		assert.True(t, p.NoSonar)
	}

	_, err := Load(filepath.Join(dir, "profile.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
