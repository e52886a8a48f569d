// Package profile loads the set of active rules and their parameter
// overrides from YAML or TOML files.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/mcheck/internal/check"
	_ "github.com/phobologic/mcheck/internal/checks" // registers the built-in rules
	"github.com/phobologic/mcheck/internal/scanner"
)

// ErrUnsupportedFormat is returned for profile files that are neither YAML
// nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported profile format")

// Rule activates one rule, optionally overriding its parameters.
type Rule struct {
	Key    string            `yaml:"key" toml:"key"`
	Params map[string]string `yaml:"params,omitempty" toml:"params,omitempty"`
}

// Profile is the analysis configuration read from a profile file.
type Profile struct {
	Charset              string `yaml:"charset,omitempty" toml:"charset,omitempty"`
	IgnoreHeaderComments bool   `yaml:"ignore_header_comments" toml:"ignore_header_comments"`
	NoSonar              bool   `yaml:"nosonar" toml:"nosonar"`
	Rules                []Rule `yaml:"rules" toml:"rules"`
}

// defaults returns a profile carrying the built-in settings and no rules.
func defaults() *Profile {
	return &Profile{Charset: "utf-8", NoSonar: true}
}

// Default returns the built-in profile: every rule marked as default
// active, with default parameters.
func Default() *Profile {
	p := defaults()
	for _, d := range check.Definitions() {
		if d.Default {
			p.Rules = append(p.Rules, Rule{Key: d.Key})
		}
	}
	return p
}

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Format is a profile file syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Load reads a profile file.
func Load(path string) (*Profile, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile. Unknown fields are errors in both formats.
// Settings the profile leaves out keep their built-in values; rules are
// only those listed.
func Parse(data []byte, format Format) (*Profile, error) {
	p := defaults()
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case TOML:
		if err := tomlSettings.NewDecoder(bytes.NewReader(data)).Decode(p); err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	return p, nil
}

// Encode renders p in the given format.
func (p *Profile) Encode(format Format) ([]byte, error) {
	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case TOML:
		return tomlSettings.Marshal(p)
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// RuleSet validates every rule of p and returns them in profile order. The
// first unknown rule, duplicate rule or invalid parameter is returned as a
// *check.ConfigError.
func (p *Profile) RuleSet() (*check.RuleSet, error) {
	seen := make(map[string]bool, len(p.Rules))
	var rules []*check.Configured
	for _, r := range p.Rules {
		if seen[r.Key] {
			return nil, &check.ConfigError{RuleKey: r.Key, Err: errors.New("listed twice")}
		}
		seen[r.Key] = true
		def, err := check.Lookup(r.Key)
		if err != nil {
			return nil, err
		}
		c, err := def.Configure(r.Params)
		if err != nil {
			return nil, err
		}
		rules = append(rules, c)
	}
	return check.NewRuleSet(rules...), nil
}

// ScannerConfig returns the non-rule settings of p.
func (p *Profile) ScannerConfig() scanner.Config {
	return scanner.Config{
		Charset:              p.Charset,
		IgnoreHeaderComments: p.IgnoreHeaderComments,
		NoSonar:              p.NoSonar,
	}
}
