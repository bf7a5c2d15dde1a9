package entrypoints

import (
	"regexp"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/types"
)

// Rule decides whether a key or a leaf value is skipped
type Rule interface {
	Match(s string) bool
	String() string
}

// Literal matches by string equality. Used for subpath keys.
type Literal string

// Match implements Rule
func (l Literal) Match(s string) bool { return string(l) == s }

func (l Literal) String() string { return string(l) }

// Pattern matches when its regular expression finds a match anywhere in the
// string. Used for source paths.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr into a Pattern rule
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, errors.ErrConfigValid, "invalid skip pattern %q", expr)
	}
	return Pattern{re: re}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression
func MustPattern(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// Match implements Rule
func (p Pattern) Match(s string) bool { return p.re != nil && p.re.MatchString(s) }

func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

var (
	declarationRule = MustPattern(`\.d(\.\w+)?\.[mc]?ts$`)
	stylesheetRule  = MustPattern(`\.css$`)
	javascriptRule  = MustPattern(`\.[mc]?js$`)
)

// DefaultValueRules returns the value rules that always apply: declaration
// files and stylesheets, plus plain JavaScript unless allowJS is set.
func DefaultValueRules(allowJS bool) []Rule {
	rules := []Rule{declarationRule, stylesheetRule}
	if !allowJS {
		rules = append(rules, javascriptRule)
	}
	return rules
}

// SkipOptions holds the user supplied skip rules. The default value rules
// are always added on top of SkipValue.
type SkipOptions struct {
	SkipKey   []Rule
	SkipValue []Rule
	AllowJS   bool
}

// LiteralRules builds key rules from configuration strings
func LiteralRules(keys []string) []Rule {
	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, Literal(k))
	}
	return rules
}

// PatternRules compiles value rules from configuration strings
func PatternRules(exprs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(exprs))
	for _, expr := range exprs {
		p, err := NewPattern(expr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, p)
	}
	return rules, nil
}

// SkipsKey reports whether a top level subpath key is skipped
func (o SkipOptions) SkipsKey(key string) bool {
	return matchAny(o.SkipKey, key)
}

// SkipsValue reports whether a source path is skipped
func (o SkipOptions) SkipsValue(value string) bool {
	return matchAny(o.SkipValue, value) || matchAny(DefaultValueRules(o.AllowJS), value)
}

func matchAny(rules []Rule, s string) bool {
	for _, r := range rules {
		if r.Match(s) {
			return true
		}
	}
	return false
}

// Filter returns a filtered deep copy of tree. Top level keys matched by a
// key rule and string leaves matched by a value rule are dropped at any
// depth; objects and arrays left empty are dropped too. Filtering a filtered
// tree returns an equal tree.
func Filter(tree *types.Object, opts SkipOptions) *types.Object {
	out := types.NewObject()
	tree.Range(func(key string, value any) bool {
		if opts.SkipsKey(key) {
			return true
		}
		if v, keep := filterValue(value, opts); keep {
			out.Set(key, v)
		}
		return true
	})
	return out
}

func filterValue(value any, opts SkipOptions) (any, bool) {
	switch v := value.(type) {
	case string:
		if opts.SkipsValue(v) {
			return nil, false
		}
		return v, true
	case *types.Object:
		out := types.NewObject()
		v.Range(func(key string, inner any) bool {
			if fv, keep := filterValue(inner, opts); keep {
				out.Set(key, fv)
			}
			return true
		})
		return out, out.Len() > 0
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if fv, keep := filterValue(item, opts); keep {
				out = append(out, fv)
			}
		}
		return out, len(out) > 0
	default:
		return v, true
	}
}
