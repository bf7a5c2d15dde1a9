// Package pkger assembles the convention based publish fields of a package
// (main, module, types, CDN fields and exports) straight from the files in
// its source directory.
package pkger

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jiek/pkg/entrypoints"
	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/types"
)

// Options configures Pkger. Zero values fall back to DefaultOptions.
type Options struct {
	// Cwd is the package directory
	Cwd    string
	Source string
	Inputs []string
	Outdir string

	NoIndex   bool
	NoBrowser bool
	NoCDN     bool
	OnlyESM   bool

	UMDSuffix string
	ESMSuffix string
	MinSuffix string
	// DTSExt is the extension following ".d" in declaration outputs
	DTSExt string
}

// DefaultOptions returns the conventional layout: sources in src, index.ts
// plus every top level .ts file, outputs in dist.
func DefaultOptions() Options {
	return Options{
		Source:    "src",
		Inputs:    []string{"index.ts", "*.ts"},
		Outdir:    "dist",
		UMDSuffix: ".umd",
		ESMSuffix: ".esm",
		MinSuffix: ".min",
		DTSExt:    ".ts",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Source == "" {
		o.Source = d.Source
	}
	if len(o.Inputs) == 0 {
		o.Inputs = d.Inputs
	}
	if o.Outdir == "" {
		o.Outdir = d.Outdir
	}
	if o.UMDSuffix == "" {
		o.UMDSuffix = d.UMDSuffix
	}
	if o.ESMSuffix == "" {
		o.ESMSuffix = d.ESMSuffix
	}
	if o.MinSuffix == "" {
		o.MinSuffix = d.MinSuffix
	}
	if o.DTSExt == "" {
		o.DTSExt = d.DTSExt
	}
	return o
}

// Fields are the manifest fields produced by Pkger
type Fields struct {
	Types    string
	Main     string
	Module   string
	Unpkg    string
	Jsdelivr string
	Browser  string

	TypesVersions *types.Object
	Exports       *types.Object

	// Inputs is the resolved subpath -> source file mapping
	Inputs *types.Object
	// Outputs lists every build output the fields point at
	Outputs []entrypoints.Output
}

// Object renders the fields in manifest order, leaving out empty ones
func (f *Fields) Object() *types.Object {
	out := types.NewObject()
	for _, p := range []types.Pair{
		{Key: "types", Value: f.Types},
		{Key: "main", Value: f.Main},
		{Key: "module", Value: f.Module},
		{Key: "unpkg", Value: f.Unpkg},
		{Key: "jsdelivr", Value: f.Jsdelivr},
		{Key: "browser", Value: f.Browser},
	} {
		if p.Value != "" {
			out.Set(p.Key, p.Value)
		}
	}
	if f.TypesVersions != nil {
		out.Set("typesVersions", f.TypesVersions)
	}
	if f.Exports != nil {
		out.Set("exports", f.Exports)
	}
	return out
}

// Pkger resolves the input globs under <Cwd>/<Source> and derives the
// publish fields. The "." input also drives the top level fields.
func Pkger(fsys types.FS, opts Options) (*Fields, error) {
	logger := logging.GetLogger("pkger")

	if strings.HasSuffix(opts.Outdir, "/") || strings.HasSuffix(opts.Outdir, string(os.PathSeparator)) {
		return nil, errors.Newf(errors.ErrConfigValid,
			"outdir %q must not end with a path separator", opts.Outdir).
			WithDetail("outdir", opts.Outdir)
	}
	if opts.OnlyESM {
		return nil, errors.New(errors.ErrUnsupportedFeature, "onlyESM is not implemented")
	}
	opts = opts.withDefaults()

	sourceDir := filepath.Join(opts.Cwd, opts.Source)
	inputs, err := entrypoints.ResolveInputs(fsys, opts.Inputs, entrypoints.InputOptions{
		Cwd:     sourceDir,
		NoIndex: opts.NoIndex,
	})
	if err != nil {
		return nil, err
	}

	outdir := opts.Outdir
	if !strings.HasPrefix(outdir, "./") && !path.IsAbs(outdir) {
		outdir = "./" + outdir
	}
	l := layout{opts: opts, outdir: outdir}

	fields := &Fields{
		Exports:       types.NewObject(),
		TypesVersions: l.typesVersions(),
		Inputs:        inputs,
	}

	for _, key := range inputs.Keys() {
		file, _ := inputs.GetString(key)
		name := l.name(key, file)
		src := path.Join(filepath.ToSlash(opts.Source), file)

		if key == "." {
			fields.Types = l.dts(name)
			fields.Main = l.umd(name, false)
			fields.Module = l.esm(name, false)
			if !opts.NoCDN {
				fields.Unpkg = l.umd(name, true)
				fields.Jsdelivr = fields.Unpkg
				fields.Outputs = append(fields.Outputs, entrypoints.Output{Subpath: key, Condition: "unpkg", Source: src, Dist: fields.Unpkg})
			}
			if !opts.NoBrowser {
				fields.Browser = l.esm(name, true)
				fields.Outputs = append(fields.Outputs, entrypoints.Output{Subpath: key, Condition: "browser", Source: src, Dist: fields.Browser})
			}
		}

		fields.Exports.Set(key, types.NewObject(
			types.Pair{Key: "types", Value: l.dts(name)},
			types.Pair{Key: "import", Value: l.esm(name, false)},
			types.Pair{Key: "require", Value: l.umd(name, false)},
			types.Pair{Key: "default", Value: l.esm(name, false)},
		))
		fields.Outputs = append(fields.Outputs,
			entrypoints.Output{Subpath: key, Condition: "import", Source: src, Dist: l.esm(name, false)},
			entrypoints.Output{Subpath: key, Condition: "require", Source: src, Dist: l.umd(name, false)},
		)
	}
	fields.Exports.Set("package.json", "package.json")

	logger.Debug().
		Str("source", sourceDir).
		Int("inputs", inputs.Len()).
		Msg("Assembled package fields")
	return fields, nil
}

type layout struct {
	opts   Options
	outdir string
}

// name is the output base name of an input: "index" for ".", the subpath
// otherwise.
func (l layout) name(key, file string) string {
	if key == "." {
		return strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	return strings.TrimPrefix(key, "./")
}

func (l layout) file(name, suffix string) string {
	return path.Join(l.outdir, name) + suffix
}

func (l layout) relative(p string) string {
	if strings.HasPrefix(l.outdir, "./") {
		return "./" + p
	}
	return p
}

func (l layout) umd(name string, min bool) string {
	return l.relative(l.file(name, l.suffix(l.opts.UMDSuffix, min)))
}

func (l layout) esm(name string, min bool) string {
	return l.relative(l.file(name, l.suffix(l.opts.ESMSuffix, min)))
}

func (l layout) suffix(format string, min bool) string {
	if min {
		return format + l.opts.MinSuffix + ".js"
	}
	return format + ".js"
}

func (l layout) dts(name string) string {
	return l.relative(l.file(name, ".d"+l.opts.DTSExt))
}

func (l layout) typesVersions() *types.Object {
	return types.NewObject(types.Pair{
		Key: "<5.0",
		Value: types.NewObject(types.Pair{
			Key: "*",
			Value: []any{
				"*",
				l.relative(path.Join(l.outdir, "*")),
				l.relative(path.Join(l.outdir, "*", "index.d"+l.opts.DTSExt)),
			},
		}),
	})
}
