package check

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Configuration errors.
var (
	ErrUnknownRule  = errors.New("unknown rule")
	ErrUnknownParam = errors.New("unknown parameter")
	ErrInvalidParam = errors.New("invalid parameter value")
)

// ConfigError is a rule configuration problem detected before analysis.
type ConfigError struct {
	RuleKey string
	Param   string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("rule %s: %v", e.RuleKey, e.Err)
	}
	return fmt.Sprintf("rule %s, parameter %s: %v", e.RuleKey, e.Param, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Priority is the severity assigned to a rule.
type Priority int

const (
	Info Priority = iota
	Minor
	Major
	Critical
	Blocker
)

var priorityNames = []string{"info", "minor", "major", "critical", "blocker"}

func (p Priority) String() string {
	if p >= 0 && int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if strings.EqualFold(s, name) {
			return Priority(i), nil
		}
	}
	return Info, fmt.Errorf("unknown priority %q", s)
}

// ParamType is the type a parameter value must parse as.
type ParamType int

const (
	String ParamType = iota
	Int
	Bool
	Regexp
)

func (t ParamType) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Regexp:
		return "regexp"
	}
	return "string"
}

// Param declares a rule parameter.
type Param struct {
	Key         string
	Type        ParamType
	Default     string
	Description string
}

// Rule is the metadata of a check.
type Rule struct {
	Key         string
	Name        string
	Description string
	Priority    Priority
	// Default marks rules active in the default profile.
	Default bool
	Params  []Param
}

// Definition binds rule metadata to a constructor.
type Definition struct {
	Rule
	New func(v Values) Check
}

// Values holds parsed parameter values of a configured rule.
type Values struct {
	raw     map[string]string
	ints    map[string]int
	bools   map[string]bool
	regexps map[string]*regexp.Regexp
}

// String returns the raw value of key.
func (v Values) String(key string) string { return v.raw[key] }

// Int returns the value of an Int parameter.
func (v Values) Int(key string) int { return v.ints[key] }

// Bool returns the value of a Bool parameter.
func (v Values) Bool(key string) bool { return v.bools[key] }

// Regexp returns the compiled value of a Regexp parameter, or nil when the
// value is empty.
func (v Values) Regexp(key string) *regexp.Regexp { return v.regexps[key] }

// Raw returns a copy of every raw value.
func (v Values) Raw() map[string]string { return maps.Clone(v.raw) }

// Configure validates overrides against the rule's parameters and returns
// the rule ready for instantiation. Missing values take their defaults.
func (d *Definition) Configure(overrides map[string]string) (*Configured, error) {
	v := Values{
		raw:     make(map[string]string, len(d.Params)),
		ints:    make(map[string]int),
		bools:   make(map[string]bool),
		regexps: make(map[string]*regexp.Regexp),
	}
	declared := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		declared[p.Key] = true
	}
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		if !declared[key] {
			return nil, &ConfigError{RuleKey: d.Key, Param: key, Err: ErrUnknownParam}
		}
	}

	for _, p := range d.Params {
		raw, ok := overrides[p.Key]
		if !ok {
			raw = p.Default
		}
		v.raw[p.Key] = raw
		switch p.Type {
		case Int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, &ConfigError{RuleKey: d.Key, Param: p.Key, Err: fmt.Errorf("%w: %q is not an integer", ErrInvalidParam, raw)}
			}
			v.ints[p.Key] = n
		case Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return nil, &ConfigError{RuleKey: d.Key, Param: p.Key, Err: fmt.Errorf("%w: %q is not a boolean", ErrInvalidParam, raw)}
			}
			v.bools[p.Key] = b
		case Regexp:
			if raw == "" {
				continue
			}
			re, err := regexp.Compile(raw)
			if err != nil {
				return nil, &ConfigError{RuleKey: d.Key, Param: p.Key, Err: fmt.Errorf("%w: %v", ErrInvalidParam, err)}
			}
			v.regexps[p.Key] = re
		}
	}

	if d.New == nil || !IsCheck(d.New(v)) {
		return nil, &ConfigError{RuleKey: d.Key, Err: errors.New("constructor does not produce a check")}
	}
	return &Configured{Definition: d, Values: v}, nil
}

// Configured is a rule with validated parameter values.
type Configured struct {
	*Definition
	Values Values
}

// NewCheck returns a fresh instance.
func (c *Configured) NewCheck() Check { return c.Definition.New(c.Values) }

var (
	registryMu sync.RWMutex
	registry   = map[string]*Definition{}
)

// Register adds a rule to the registry. It panics on duplicate keys.
func Register(d *Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[d.Key]; dup {
		panic(fmt.Sprintf("check: rule %s registered twice", d.Key))
	}
	registry[d.Key] = d
}

// Lookup returns the registered rule with the given key.
func Lookup(key string) (*Definition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[key]
	if !ok {
		return nil, &ConfigError{RuleKey: key, Err: ErrUnknownRule}
	}
	return d, nil
}

// Definitions returns every registered rule sorted by key.
func Definitions() []*Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := slices.Collect(maps.Values(registry))
	slices.SortFunc(out, func(a, b *Definition) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// RuleSet is the ordered list of rules active for an analysis.
type RuleSet struct {
	rules []*Configured
}

// NewRuleSet returns a rule set in the given order.
func NewRuleSet(rules ...*Configured) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns the configured rules.
func (s *RuleSet) Rules() []*Configured { return s.rules }

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Instantiate returns one fresh check per rule, in rule order.
func (s *RuleSet) Instantiate() []Check {
	out := make([]Check, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.NewCheck()
	}
	return out
}
