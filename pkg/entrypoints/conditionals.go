package entrypoints

import (
	"path"
	"sort"
)

// Context is what a conditional resolver sees for one leaf
type Context struct {
	// Src is the source path as declared
	Src string
	// Dist is the rewritten output path
	Dist string
	// Path is the export subpath the leaf belongs to
	Path string
	// Conditionals lists the condition keys enclosing the leaf, outermost
	// first. Empty for a plain string declaration.
	Conditionals []string
}

type resolutionKind int

const (
	omit resolutionKind = iota
	useSource
	useValue
)

// Resolution is the outcome of a conditional resolver
type Resolution struct {
	kind  resolutionKind
	value string
}

var (
	// Omit leaves the condition out of the record
	Omit = Resolution{kind: omit}
	// UseSource sets the condition to the source path
	UseSource = Resolution{kind: useSource}
)

// Value sets the condition to s
func Value(s string) Resolution {
	return Resolution{kind: useValue, value: s}
}

// Resolver computes the value of an injected condition. Implementations
// must be deterministic and free of side effects.
type Resolver interface {
	Resolve(ctx Context) Resolution
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx Context) Resolution

// Resolve implements Resolver
func (f ResolverFunc) Resolve(ctx Context) Resolution { return f(ctx) }

// Constant is a resolver that either always copies the source path or
// always omits the condition.
type Constant bool

// Resolve implements Resolver
func (c Constant) Resolve(Context) Resolution {
	if c {
		return UseSource
	}
	return Omit
}

// Conditional is a named condition injected into every rewritten leaf
type Conditional struct {
	Name     string
	Resolver Resolver
}

// inject runs the conditionals for ctx and returns the resulting entries in
// declaration order.
func inject(conditionals []Conditional, ctx Context) []conditionEntry {
	var entries []conditionEntry
	for _, c := range conditionals {
		if c.Resolver == nil {
			continue
		}
		res := c.Resolver.Resolve(ctx)
		switch res.kind {
		case useSource:
			entries = append(entries, conditionEntry{name: c.Name, value: ctx.Src, fromSource: true})
		case useValue:
			entries = append(entries, conditionEntry{name: c.Name, value: res.value})
		}
	}
	return entries
}

type conditionEntry struct {
	name       string
	value      string
	fromSource bool
}

// CrossModuleConditionals returns the conditional that publishes the
// opposite module format next to the default one. For a "module" package
// the default .js output is ESM and a "require" entry pointing at .cjs is
// added; otherwise the default is CommonJS and an "import" entry pointing
// at .mjs is added. Sources that already pin a format (.mts, .cts, .mjs,
// .cjs) and leaves already under a condition get nothing.
func CrossModuleConditionals(pkgType string) []Conditional {
	name, ext := "import", ".mjs"
	if pkgType == "module" {
		name, ext = "require", ".cjs"
	}

	return []Conditional{{
		Name: name,
		Resolver: ResolverFunc(func(ctx Context) Resolution {
			if len(ctx.Conditionals) > 0 {
				return Omit
			}
			switch path.Ext(ctx.Src) {
			case ".mts", ".cts", ".mjs", ".cjs":
				return Omit
			}
			return Value(trimExt(ctx.Dist) + ext)
		}),
	}}
}

// BooleanConditionals converts configuration switches into Constant
// conditionals, ordered by name.
func BooleanConditionals(switches map[string]bool) []Conditional {
	names := make([]string, 0, len(switches))
	for name := range switches {
		names = append(names, name)
	}
	sort.Strings(names)

	conditionals := make([]Conditional, 0, len(names))
	for _, name := range names {
		conditionals = append(conditionals, Conditional{Name: name, Resolver: Constant(switches[name])})
	}
	return conditionals
}
