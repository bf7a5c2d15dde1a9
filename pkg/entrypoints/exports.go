package entrypoints

import (
	"path"
	"strings"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// DefaultOutdir is used when Options.Outdir is empty
const DefaultOutdir = "dist"

// Options configures Synthesize
type Options struct {
	Cwd    string
	Outdir string
	Skip   SkipOptions

	// WithSource adds the source path to every rewritten leaf
	WithSource bool
	// SourceTag namespaces the source field of synthesized records as
	// "<tag>/__source__". Author declared conditions always use "source".
	SourceTag string
	// WithSuffix duplicates extensionless subpaths under "<subpath>.js"
	WithSuffix bool
	// Conditionals are injected, in order, into every rewritten leaf
	Conditionals []Conditional
}

// SourceField is the record key holding the source path
func (o Options) SourceField() string {
	if o.SourceTag != "" {
		return o.SourceTag + "/__source__"
	}
	return "source"
}

func (o Options) outdir() string {
	if o.Outdir == "" {
		return DefaultOutdir
	}
	return o.Outdir
}

// Output is one source file compiled to one output file
type Output struct {
	Subpath   string
	Condition string
	Source    string
	Dist      string
}

// Result is the outcome of Synthesize
type Result struct {
	// Dir is the inferred common source directory
	Dir string
	// Entries is the canonical mapping, unfiltered
	Entries *types.Object
	// Exports is the synthesized exports tree
	Exports *types.Object
	// Outputs lists every output path referenced by Exports, in order
	Outputs []Output
}

// EntrypointsToExports returns only the exports tree of Synthesize
func EntrypointsToExports(ep Entrypoints, opts Options) (*types.Object, error) {
	res, err := Synthesize(ep, opts)
	if err != nil {
		return nil, err
	}
	return res.Exports, nil
}

// Synthesize resolves ep and rewrites it into an exports tree whose leaves
// point at outputs under opts.Outdir. Key order is preserved.
func Synthesize(ep Entrypoints, opts Options) (*Result, error) {
	logger := logging.GetLogger("entrypoints.exports")

	dir, entries, err := Resolve(ep, ResolveOptions{Cwd: opts.Cwd, Skip: opts.Skip})
	if err != nil {
		return nil, err
	}

	s := &synthesizer{opts: opts, dir: dir, outdir: opts.outdir()}
	exports := types.NewObject()

	for _, key := range entries.Keys() {
		if opts.Skip.SkipsKey(key) {
			logger.Trace().Str("key", key).Msg("Skipping export key")
			continue
		}

		value, _ := entries.Get(key)
		node, keep, err := s.entry(key, value)
		if err != nil {
			return nil, err
		}
		if !keep {
			logger.Trace().Str("key", key).Msg("Skipping export value")
			continue
		}

		exports.Set(key, node)
		if opts.WithSuffix && key != "." && !hasJSLikeExt(key) {
			exports.Set(key+".js", types.CloneValue(node))
		}
	}

	logger.Debug().
		Str("dir", dir).
		Int("exports", exports.Len()).
		Int("outputs", len(s.outputs)).
		Msg("Synthesized exports")

	return &Result{Dir: dir, Entries: entries, Exports: exports, Outputs: s.outputs}, nil
}

type synthesizer struct {
	opts    Options
	dir     string
	outdir  string
	outputs []Output
}

func (s *synthesizer) entry(key string, value any) (any, bool, error) {
	switch v := value.(type) {
	case string:
		if s.opts.Skip.SkipsValue(v) {
			return nil, false, nil
		}
		return s.stringLeaf(key, v), true, nil
	case *types.Object:
		node, err := s.conditionalLeaf(key, v)
		if err != nil {
			return nil, false, err
		}
		return node, true, nil
	case []any:
		return nil, false, errors.New(errors.ErrUnsupportedShape,
			"array values are only supported as the top level entry point declaration").
			WithDetail("key", key)
	default:
		return v, true, nil
	}
}

// stringLeaf handles a subpath declared as a single source path
func (s *synthesizer) stringLeaf(key, src string) any {
	dist := s.rewrite(src)
	ctx := Context{Src: src, Dist: dist, Path: key}
	injected := inject(s.opts.Conditionals, ctx)

	var node any = dist
	if s.opts.WithSource || len(s.opts.Conditionals) > 0 {
		node = s.record(s.opts.SourceField(), src, dist, injected)
	}

	condition := "default"
	switch path.Ext(dist) {
	case ".cjs":
		condition = "require"
		node = types.NewObject(types.Pair{Key: "require", Value: node})
	case ".mjs":
		condition = "import"
		node = types.NewObject(types.Pair{Key: "import", Value: node})
	}

	s.addOutput(key, condition, src, dist)
	s.addInjectedOutputs(key, src, injected)
	return node
}

// conditionalLeaf handles a subpath whose conditions the author declared
func (s *synthesizer) conditionalLeaf(key string, obj *types.Object) (*types.Object, error) {
	out := types.NewObject()
	for _, condition := range obj.Keys() {
		value, _ := obj.Get(condition)

		switch v := value.(type) {
		case string:
			if s.opts.Skip.SkipsValue(v) {
				out.Set(condition, v)
				continue
			}

			dist := s.rewrite(v)
			ctx := Context{Src: v, Dist: dist, Path: key, Conditionals: []string{condition}}
			injected := inject(s.opts.Conditionals, ctx)

			var node any = dist
			switch {
			case len(injected) > 0:
				node = s.record(s.opts.SourceField(), v, dist, injected)
			case s.opts.WithSource:
				// author declared branches always use the plain key
				node = s.record("source", v, dist, nil)
			}
			out.Set(condition, node)

			s.addOutput(key, condition, v, dist)
			s.addInjectedOutputs(key, v, injected)

		case *types.Object, []any:
			return nil, errors.Newf(errors.ErrUnsupportedShape,
				"nested conditional values are not supported, %q under %q must be a path", condition, key).
				WithDetail("key", key).
				WithDetail("condition", condition)

		default:
			out.Set(condition, v)
		}
	}
	return out, nil
}

func (s *synthesizer) record(sourceField, src, dist string, injected []conditionEntry) *types.Object {
	rec := types.NewObject()
	if s.opts.WithSource {
		rec.Set(sourceField, src)
	}
	for _, e := range injected {
		rec.Set(e.name, e.value)
	}
	rec.Set("default", dist)
	return rec
}

func (s *synthesizer) addOutput(key, condition, src, dist string) {
	if dist == src {
		return
	}
	s.outputs = append(s.outputs, Output{Subpath: key, Condition: condition, Source: src, Dist: dist})
}

func (s *synthesizer) addInjectedOutputs(key, src string, injected []conditionEntry) {
	for _, e := range injected {
		if e.fromSource {
			continue
		}
		s.addOutput(key, e.name, src, e.value)
	}
}

// rewrite maps a source path to its output path: the common directory
// prefix is replaced by outdir and the source extension by its JavaScript
// counterpart. Relative paths are compared after resolving against Cwd.
// Paths outside the common directory are returned unchanged.
func (s *synthesizer) rewrite(src string) string {
	rel, ok := relativeTo(src, s.dir, s.opts.Cwd)
	if !ok {
		return src
	}
	return OutputPath(s.outdir, rel)
}

// OutputPath joins rel onto outdir as written and swaps a source extension
// for the matching output extension.
func OutputPath(outdir, rel string) string {
	joined := path.Join(toSlash(outdir), rel)
	if strings.HasPrefix(outdir, "./") {
		joined = "./" + joined
	}
	return trimExt(joined) + OutputExt(path.Ext(joined))
}

// OutputExt maps a source extension to the extension of its build output,
// keeping the module format infix. Unknown extensions are returned as is.
func OutputExt(ext string) string {
	switch ext {
	case ".ts", ".tsx", ".js", ".jsx":
		return ".js"
	case ".mts", ".mjs":
		return ".mjs"
	case ".cts", ".cjs":
		return ".cjs"
	default:
		return ext
	}
}

func hasJSLikeExt(key string) bool {
	switch path.Ext(key) {
	case ".js", ".mjs", ".cjs", ".jsx", ".json":
		return true
	}
	return false
}
